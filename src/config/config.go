// Package config loads the application configuration from YAML.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"tymek/src/render"
)

// MaxImageCount is the largest max_image_count accepted.
const MaxImageCount = 16

type Config struct {
	Window  Window  `yaml:"window"`
	GPU     GPU     `yaml:"gpu"`
	Display Display `yaml:"display"`
}

type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type GPU struct {
	AppName    string   `yaml:"app_name"`
	Validation bool     `yaml:"validation"`
	Extensions []string `yaml:"extensions"`
}

type Display struct {
	MinImageCount uint32 `yaml:"min_image_count"`
	MaxImageCount int    `yaml:"max_image_count"`
	// Timeout bounds acquire and fence waits. Zero waits forever.
	Timeout    time.Duration `yaml:"timeout"`
	ClearColor [4]float32    `yaml:"clear_color"`
}

func Default() Config {
	return Config{
		Window: Window{
			Title:  "tymek",
			Width:  800,
			Height: 600,
		},
		GPU: GPU{
			AppName: "tymek",
		},
		Display: Display{
			MinImageCount: render.DefaultMinImageCount,
			MaxImageCount: render.DefaultMaxImageCount,
			ClearColor:    [4]float32{0, 0, 0, 1},
		},
	}
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, render.Fail(render.CodeCreateInfoMissing, "parse config", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, render.Fail(render.CodeCreateInfoMissing, "load config",
			errors.Wrapf(err, "read %s", path))
	}
	return Parse(data)
}

func (c Config) Validate() error {
	switch {
	case c.Window.Title == "":
		return invalid("window title is required")
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return invalid("window size %dx%d has no area", c.Window.Width, c.Window.Height)
	case c.GPU.AppName == "":
		return invalid("gpu app_name is required")
	case c.Display.MinImageCount < render.DefaultMinImageCount:
		return invalid("min_image_count %d is below %d", c.Display.MinImageCount, render.DefaultMinImageCount)
	case c.Display.MaxImageCount < int(c.Display.MinImageCount):
		return invalid("max_image_count %d is below min_image_count %d", c.Display.MaxImageCount, c.Display.MinImageCount)
	case c.Display.MaxImageCount > MaxImageCount:
		return invalid("max_image_count %d is above %d", c.Display.MaxImageCount, MaxImageCount)
	case c.Display.Timeout < 0:
		return invalid("negative timeout %s", c.Display.Timeout)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return render.Fail(render.CodeCreateInfoMissingValue, "validate config", errors.Errorf(format, args...))
}

// Options converts the display section. A zero timeout is unbounded.
func (d Display) Options() render.Options {
	opts := render.Options{
		MinImageCount: d.MinImageCount,
		MaxImageCount: d.MaxImageCount,
		ClearColor:    d.ClearColor,
	}
	if d.Timeout > 0 {
		opts.Timeout = uint64(d.Timeout.Nanoseconds())
	}
	return opts
}
