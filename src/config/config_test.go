package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tymek/src/render"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(2), cfg.Display.MinImageCount)
	assert.Equal(t, 8, cfg.Display.MaxImageCount)
	assert.Zero(t, cfg.Display.Timeout)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  title: demo
  width: 1280
  height: 720
gpu:
  validation: true
  extensions: [VK_EXT_debug_utils]
display:
  max_image_count: 4
  timeout: 250ms
  clear_color: [0.2, 0.3, 0.4, 1]
`))
	require.NoError(t, err)
	assert.Equal(t, Window{Title: "demo", Width: 1280, Height: 720}, cfg.Window)
	assert.True(t, cfg.GPU.Validation)
	assert.Equal(t, "tymek", cfg.GPU.AppName)
	assert.Equal(t, []string{"VK_EXT_debug_utils"}, cfg.GPU.Extensions)
	assert.Equal(t, uint32(2), cfg.Display.MinImageCount)
	assert.Equal(t, 4, cfg.Display.MaxImageCount)
	assert.Equal(t, 250*time.Millisecond, cfg.Display.Timeout)
	assert.Equal(t, [4]float32{0.2, 0.3, 0.4, 1}, cfg.Display.ClearColor)
}

func TestParseInvalid(t *testing.T) {
	for idx, tc := range []struct {
		doc  string
		code render.Code
	}{
		{"window: [", render.CodeCreateInfoMissing},
		{"window: {title: ''}", render.CodeCreateInfoMissingValue},
		{"window: {width: 0}", render.CodeCreateInfoMissingValue},
		{"gpu: {app_name: ''}", render.CodeCreateInfoMissingValue},
		{"display: {min_image_count: 1}", render.CodeCreateInfoMissingValue},
		{"display: {min_image_count: 5, max_image_count: 4}", render.CodeCreateInfoMissingValue},
		{"display: {max_image_count: 17}", render.CodeCreateInfoMissingValue},
		{"display: {timeout: -1s}", render.CodeCreateInfoMissingValue},
	} {
		t.Run(fmt.Sprintf("%d/%s", idx, tc.doc), func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			require.Equal(t, tc.code, render.CodeOf(err))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tymek.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: {title: loaded}\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "loaded", cfg.Window.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Equal(t, render.CodeCreateInfoMissing, render.CodeOf(err))
}

func TestDisplayOptions(t *testing.T) {
	d := Default().Display
	opts := d.Options()
	assert.Equal(t, uint32(2), opts.MinImageCount)
	assert.Equal(t, 8, opts.MaxImageCount)
	assert.Zero(t, opts.Timeout)
	assert.Equal(t, d.ClearColor, opts.ClearColor)

	d.Timeout = time.Second
	assert.Equal(t, uint64(time.Second), d.Options().Timeout)
}
