package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xlab/closer"

	"tymek/src/config"
	"tymek/src/gpu"
	"tymek/src/render"
	"tymek/src/window"
)

func init() {
	// GLFW and the frame loop must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	logger := log.New(os.Stderr, "tymek: ", log.LstdFlags)
	if err := run(*configPath, logger); err != nil {
		logger.Printf("exit: %v", err)
		os.Exit(int(render.CodeOf(err)))
	}
}

type app struct {
	log      *log.Logger
	win      *window.Window
	ctx      *gpu.Context
	display  *render.Display
	stopping atomic.Bool
	done     chan struct{}
	once     sync.Once
}

func run(path string, logger *log.Logger) error {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}

	a := &app{log: logger, done: make(chan struct{})}
	defer a.teardown()
	// An interrupt stops the loop, which tears down on the main thread.
	closer.Bind(func() {
		a.stopping.Store(true)
		select {
		case <-a.done:
		case <-time.After(2 * time.Second):
			logger.Printf("teardown did not finish in time")
		}
	})

	var err error
	a.win, err = window.New(window.Config{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if err = gpu.Load(a.win.ProcAddr()); err != nil {
		return err
	}
	a.ctx, err = gpu.New(gpu.Config{
		AppName:    cfg.GPU.AppName,
		Validation: cfg.GPU.Validation,
		Extensions: append(a.win.RequiredInstanceExtensions(), cfg.GPU.Extensions...),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	opts := cfg.Display.Options()
	opts.Recorder = gpu.NewClearRecorder(a.ctx)
	opts.Logger = logger
	a.display, err = render.New(a.ctx, a.win, opts)
	if err != nil {
		return err
	}
	logger.Printf("display ready: %+v", a.display.Dimensions())
	return a.loop()
}

func (a *app) loop() error {
	for !a.win.ShouldClose() && !a.stopping.Load() {
		a.win.PollEvents()
		if a.win.TakeResized() {
			a.display.Invalidate()
		}
		if _, err := a.display.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// teardown releases everything in reverse order of creation. It runs once.
func (a *app) teardown() {
	a.once.Do(func() {
		if a.display != nil {
			a.display.Destroy()
		}
		if a.ctx != nil {
			a.ctx.Destroy()
		}
		if a.win != nil {
			a.win.Destroy()
		}
		close(a.done)
	})
}
