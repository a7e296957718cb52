package render

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// State is a step of the frame loop.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateWaitingForFence
	StateRecording
	StateSubmitting
	StatePresenting
	// StateFaulted is terminal. The Display no longer renders.
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateWaitingForFence:
		return "waiting for fence"
	case StateRecording:
		return "recording"
	case StateSubmitting:
		return "submitting"
	case StatePresenting:
		return "presenting"
	case StateFaulted:
		return "faulted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is how a tick ended.
type Outcome int

const (
	// OutcomePresented means the frame was submitted and queued for
	// presentation.
	OutcomePresented Outcome = iota
	// OutcomeSkipped means presentation did not happen, either because the
	// window has no area or because the swapchain went stale mid-tick.
	OutcomeSkipped
	// OutcomeOutOfDate means the swapchain was out of date. Nothing was
	// submitted and the next tick rebuilds.
	OutcomeOutOfDate
	// OutcomeFaulted means the Display faulted; see Err.
	OutcomeFaulted
)

func (o Outcome) String() string {
	switch o {
	case OutcomePresented:
		return "presented"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeOutOfDate:
		return "out of date"
	case OutcomeFaulted:
		return "faulted"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Tick runs one acquire, wait, record, submit and present cycle. It never
// stops midway: it returns once the frame was presented, skipped or the
// Display faulted. Staleness is recovered by rebuilding and is never
// reported as an error.
func (d *Display) Tick() (Outcome, error) {
	if d.err != nil {
		return OutcomeFaulted, d.err
	}
	w, h := d.win.FramebufferSize()
	if d.win.IsMinimized() || w <= 0 || h <= 0 {
		return OutcomeSkipped, nil
	}
	if d.built && (w != d.winWidth || h != d.winHeight) {
		d.Invalidate()
	}
	if d.stale || !d.built {
		if err := d.Rebuild(); err != nil {
			return OutcomeFaulted, err
		}
	}

	d.transition(StateAcquiring)
	sems := d.frames.sems[d.semIndex]
	index, ret := d.ctx.AcquireNextImage(d.swapchain, sems.ImageAvailable, d.opts.Timeout)
	switch ret {
	case vulkan.Success:
	case vulkan.Suboptimal:
		d.log.Printf("render: acquire: %v", ErrSuboptimal)
		d.Invalidate()
	case vulkan.ErrorOutOfDate:
		d.log.Printf("render: acquire: %v", ErrOutOfDate)
		d.Invalidate()
		d.transition(StateIdle)
		return OutcomeOutOfDate, nil
	case vulkan.Timeout, vulkan.NotReady:
		return d.fault(check(ret, CodeSyncFailure, "acquire next image"))
	default:
		return d.fault(check(ret, CodeAcquireFailure, "acquire next image"))
	}
	if int(index) >= len(d.frames.frames) {
		return d.fault(Fail(CodeAcquireFailure, "acquire next image",
			errors.Errorf("image index %d out of range", index)))
	}
	frame := &d.frames.frames[index]

	d.transition(StateWaitingForFence)
	if err := d.waitFrame(frame); err != nil {
		return d.fault(err)
	}

	d.transition(StateRecording)
	if err := d.record(frame, index); err != nil {
		return d.fault(err)
	}

	d.transition(StateSubmitting)
	ret = d.ctx.Submit(SubmitInfo{
		CommandBuffer: frame.Commands,
		Wait:          sems.ImageAvailable,
		WaitStage:     vulkan.PipelineStageColorAttachmentOutputBit,
		Signal:        sems.RenderFinished,
		Fence:         frame.Fence,
	})
	if err := check(ret, CodeSubmitFailure, "submit"); err != nil {
		return d.fault(err)
	}

	if d.stale || d.win.IsMinimized() {
		d.stale = true
		d.transition(StateIdle)
		return OutcomeSkipped, nil
	}

	d.transition(StatePresenting)
	ret = d.ctx.Present(d.swapchain, index, sems.RenderFinished)
	switch ret {
	case vulkan.Success:
		d.advance()
	case vulkan.Suboptimal:
		d.log.Printf("render: present: %v", ErrSuboptimal)
		d.advance()
		d.Invalidate()
	case vulkan.ErrorOutOfDate:
		d.log.Printf("render: present: %v", ErrOutOfDate)
		d.Invalidate()
		d.transition(StateIdle)
		return OutcomeOutOfDate, nil
	default:
		return d.fault(check(ret, CodePresentFailure, "present"))
	}
	d.transition(StateIdle)
	return OutcomePresented, nil
}

// Run polls window events and ticks until the window asks to close or the
// Display faults.
func (d *Display) Run() error {
	for !d.win.ShouldClose() {
		d.win.PollEvents()
		if _, err := d.Tick(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Display) advance() {
	d.semIndex = (d.semIndex + 1) % len(d.frames.sems)
}

func (d *Display) waitFrame(f *Frame) error {
	switch ret := d.ctx.WaitFence(f.Fence, d.opts.Timeout); ret {
	case vulkan.Success:
	case vulkan.Timeout:
		return Fail(CodeSyncFailure, "wait fence", errors.New("timed out"))
	default:
		return check(ret, CodeSyncFailure, "wait fence")
	}
	return check(d.ctx.ResetFence(f.Fence), CodeSyncFailure, "reset fence")
}

func (d *Display) record(f *Frame, index uint32) error {
	if err := check(d.ctx.ResetCommandPool(f.Pool), CodeRecordFailure, "reset command pool"); err != nil {
		return err
	}
	if err := check(d.ctx.BeginCommandBuffer(f.Commands), CodeRecordFailure, "begin command buffer"); err != nil {
		return err
	}
	if d.opts.Recorder != nil {
		if err := d.invokeRecorder(f, index); err != nil {
			return err
		}
	}
	return check(d.ctx.EndCommandBuffer(f.Commands), CodeRecordFailure, "end command buffer")
}

func (d *Display) invokeRecorder(f *Frame, index uint32) (err error) {
	defer CheckError(&err)
	target := RenderTarget{
		Index:       index,
		RenderPass:  d.renderPass,
		Framebuffer: f.Framebuffer,
		View:        f.View,
		Image:       f.Image,
		Extent:      d.extent,
		ClearColor:  d.opts.ClearColor,
	}
	if err := d.opts.Recorder.Record(f.Commands, target); err != nil {
		return Fail(CodeRecordFailure, "record", err)
	}
	return nil
}

func (d *Display) fault(err error) (Outcome, error) {
	return OutcomeFaulted, d.fail(err)
}

func (d *Display) transition(s State) {
	from := d.state
	d.state = s
	if d.opts.OnTransition != nil {
		d.opts.OnTransition(from, s)
	}
}
