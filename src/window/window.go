// Package window provides the render.Window capability on GLFW.
//
// GLFW must be driven from the main thread; callers lock it with
// runtime.LockOSThread before calling New.
package window

import (
	"log"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"

	"tymek/src/render"
)

// Config describes the window to open.
type Config struct {
	Title  string
	Width  int
	Height int
	Logger *log.Logger
}

func (c Config) validate() error {
	if c.Title == "" {
		return render.Fail(render.CodeCreateInfoMissingValue, "new window",
			errors.New("title is required"))
	}
	if c.Width <= 0 || c.Height <= 0 {
		return render.Fail(render.CodeCreateInfoMissingValue, "new window",
			errors.Errorf("invalid size %dx%d", c.Width, c.Height))
	}
	return nil
}

// Window is a resizable GLFW window without a client API, presented to
// through Vulkan.
type Window struct {
	win     *glfw.Window
	log     *log.Logger
	resized bool
}

// New initializes GLFW and opens a window.
func New(cfg Config) (*Window, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if err := glfw.Init(); err != nil {
		return nil, render.Fail(render.CodeGLFWFailure, "init glfw", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, render.Fail(render.CodeGLFWFailure, "init glfw",
			errors.New("vulkan is not supported"))
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, render.Fail(render.CodeGLFWFailure, "create window", err)
	}
	w := &Window{win: win, log: cfg.Logger}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized = true
	})
	w.log.Printf("window: opened %q %dx%d", cfg.Title, cfg.Width, cfg.Height)
	return w, nil
}

func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

func (w *Window) IsMinimized() bool {
	return w.win.GetAttrib(glfw.Iconified) == glfw.True
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// TakeResized reports whether the framebuffer was resized since the last
// call.
func (w *Window) TakeResized() bool {
	r := w.resized
	w.resized = false
	return r
}

// CreateWindowSurface creates a Vulkan surface for instance.
func (w *Window) CreateWindowSurface(instance vulkan.Instance) (uintptr, error) {
	surface, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, errors.Wrap(err, "create window surface")
	}
	return surface, nil
}

// RequiredInstanceExtensions lists the instance extensions surfaces of this
// window need.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

// ProcAddr is the loader entry point GLFW found.
func (w *Window) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// Destroy closes the window and terminates GLFW.
func (w *Window) Destroy() {
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
	}
	glfw.Terminate()
}
