package render

import (
	"log"
	"math"
)

const (
	// DefaultMinImageCount is the requested minimum number of swapchain
	// images, two for FIFO.
	DefaultMinImageCount = 2
	// DefaultMaxImageCount bounds the number of images a swapchain may
	// report before construction fails.
	DefaultMaxImageCount = 8
)

// Unbounded is the timeout used when Options.Timeout is zero.
const Unbounded uint64 = math.MaxUint64

// Options configures a Display. The zero value is usable.
type Options struct {
	// MinImageCount is the requested minimum image count. Zero selects
	// DefaultMinImageCount.
	MinImageCount uint32
	// MaxImageCount is the largest acceptable image count. Zero selects
	// DefaultMaxImageCount.
	MaxImageCount int
	// Timeout in nanoseconds for acquire and fence waits. Zero waits
	// forever. A wait that times out faults the Display.
	Timeout uint64
	// ClearColor is handed to the Recorder with every render target.
	ClearColor [4]float32
	// Recorder draws each frame. Nil records an empty command buffer.
	Recorder Recorder
	// OnPrepare runs after every successful rebuild.
	OnPrepare func(dim SwapchainDimensions) error
	// OnCleanup runs before every teardown of a generation.
	OnCleanup func() error
	// OnTransition observes every frame loop state change.
	OnTransition func(from, to State)
	Logger       *log.Logger
}

func (o Options) withDefaults() Options {
	if o.MinImageCount == 0 {
		o.MinImageCount = DefaultMinImageCount
	}
	if o.MaxImageCount == 0 {
		o.MaxImageCount = DefaultMaxImageCount
	}
	if o.Timeout == 0 {
		o.Timeout = Unbounded
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}
