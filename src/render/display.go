package render

import (
	"log"

	"github.com/pkg/errors"
)

// Display owns a window surface, its swapchain and the per-frame resources
// derived from it, and drives the acquire, record, submit and present cycle.
//
// A Display is not safe for concurrent use; all calls must come from the
// thread that drives the frame loop.
type Display struct {
	ctx  Context
	win  Window
	opts Options
	log  *log.Logger

	surface    Surface
	format     SurfaceFormat
	swapchain  Swapchain
	renderPass RenderPass
	extent     Extent
	frames     *framePool

	// Window size the current generation was built for.
	winWidth, winHeight int

	// semIndex cycles modulo len(frames.sems) once per presented frame.
	// The frame index is whatever the presentation engine returns from
	// acquire and is never derived from semIndex.
	semIndex int

	state State
	stale bool
	built bool
	err   error
}

// New creates the surface for win, selects its format and builds the first
// swapchain generation. On failure everything created so far is released and
// the error carries the result code.
func New(ctx Context, win Window, opts Options) (*Display, error) {
	if ctx == nil || win == nil {
		return nil, Fail(CodeCreateInfoMissingValue, "new display",
			errors.New("context and window are required"))
	}
	opts = opts.withDefaults()
	if opts.MinImageCount < DefaultMinImageCount || opts.MaxImageCount < int(opts.MinImageCount) {
		return nil, Fail(CodeCreateInfoMissingValue, "new display",
			errors.Errorf("invalid image count bounds [%d, %d]", opts.MinImageCount, opts.MaxImageCount))
	}
	d := &Display{
		ctx:   ctx,
		win:   win,
		opts:  opts,
		log:   opts.Logger,
		state: StateIdle,
	}
	if err := d.init(); err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

func (d *Display) init() error {
	surface, ret := d.ctx.CreateSurface(d.win)
	if err := check(ret, CodeGLFWFailure, "create surface"); err != nil {
		return d.fail(err)
	}
	d.surface = surface
	format, err := SelectFormat(d.ctx, surface)
	if err != nil {
		return d.fail(err)
	}
	d.format = format
	return d.Rebuild()
}

// Destroy waits for the device to go idle and then releases every resource
// owned by the Display. It is safe on a faulted Display.
func (d *Display) Destroy() {
	if ret := d.ctx.WaitIdle(); IsError(ret) {
		d.log.Printf("render: destroy: %v", NewError(ret))
	}
	if d.built && d.opts.OnCleanup != nil {
		if err := d.opts.OnCleanup(); err != nil {
			d.log.Printf("render: destroy: cleanup hook: %v", err)
		}
	}
	d.built = false
	d.frames.destroy()
	d.frames = nil
	if d.renderPass != 0 {
		d.ctx.DestroyRenderPass(d.renderPass)
		d.renderPass = 0
	}
	if d.swapchain != 0 {
		d.ctx.DestroySwapchain(d.swapchain)
		d.swapchain = 0
	}
	if d.surface != 0 {
		d.ctx.DestroySurface(d.surface)
		d.surface = 0
	}
}

// fail records the first failure and faults the Display.
func (d *Display) fail(err error) error {
	if d.err == nil {
		d.err = err
		d.log.Printf("render: display faulted: %v", err)
	}
	if d.state != StateFaulted {
		d.transition(StateFaulted)
	}
	return d.err
}

// Err returns the sticky failure, or nil while the Display is functional.
func (d *Display) Err() error {
	return d.err
}

// Code returns the result code of the sticky failure.
func (d *Display) Code() Code {
	return CodeOf(d.err)
}

// State returns the state the last tick ended in.
func (d *Display) State() State {
	return d.state
}

// Invalidate marks the swapchain stale; the next tick rebuilds it.
func (d *Display) Invalidate() {
	if !d.stale {
		d.log.Printf("render: swapchain marked stale")
	}
	d.stale = true
}

// Stale reports whether the swapchain must be rebuilt before presenting.
func (d *Display) Stale() bool {
	return d.stale
}

func (d *Display) Format() SurfaceFormat {
	return d.format
}

func (d *Display) Extent() Extent {
	return d.extent
}

// Frames returns the frames of the current generation. The slice and its
// handles are invalidated by the next rebuild.
func (d *Display) Frames() []Frame {
	if d.frames == nil {
		return nil
	}
	return d.frames.frames
}

// Semaphores returns the semaphore ring of the current generation. It always
// has one entry more than Frames.
func (d *Display) Semaphores() []FrameSemaphores {
	if d.frames == nil {
		return nil
	}
	return d.frames.sems
}

// SemaphoreIndex is the ring position the next tick acquires with.
func (d *Display) SemaphoreIndex() int {
	return d.semIndex
}

func (d *Display) Dimensions() SwapchainDimensions {
	return SwapchainDimensions{
		Width:      d.extent.Width,
		Height:     d.extent.Height,
		Format:     d.format.Format,
		ImageCount: len(d.Frames()),
		RenderPass: d.renderPass,
	}
}
