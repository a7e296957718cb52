package render

import (
	"github.com/vulkan-go/vulkan"
)

// Frame holds the resources bound to one swapchain image. It is reused every
// time the presentation engine hands back the same image index.
type Frame struct {
	Image       Image
	View        ImageView
	Framebuffer Framebuffer
	Pool        CommandPool
	Commands    CommandBuffer
	// Fence is signaled when the last submission that used this frame has
	// completed. It is created signaled.
	Fence Fence
}

// FrameSemaphores orders acquire, render and present on the GPU.
type FrameSemaphores struct {
	ImageAvailable Semaphore
	RenderFinished Semaphore
}

// framePool owns the per-image frames of one swapchain generation and the
// ring of semaphore pairs, which has one more entry than there are frames.
type framePool struct {
	ctx    Context
	frames []Frame
	sems   []FrameSemaphores
}

func newFramePool(ctx Context, images []Image) *framePool {
	p := &framePool{
		ctx:    ctx,
		frames: make([]Frame, len(images)),
		sems:   make([]FrameSemaphores, len(images)+1),
	}
	for i := range images {
		p.frames[i].Image = images[i]
	}
	return p
}

func (p *framePool) createViews(format SurfaceFormat) error {
	for i := range p.frames {
		f := &p.frames[i]
		v, ret := p.ctx.CreateImageView(f.Image, format.Format)
		if err := check(ret, CodeCreateImageViewFailure, "create image view"); err != nil {
			return err
		}
		f.View = v
	}
	return nil
}

func (p *framePool) createFramebuffers(rp RenderPass, extent Extent) error {
	for i := range p.frames {
		f := &p.frames[i]
		fb, ret := p.ctx.CreateFramebuffer(rp, f.View, extent)
		if err := check(ret, CodeCreateFramebufferFailure, "create framebuffer"); err != nil {
			return err
		}
		f.Framebuffer = fb
	}
	return nil
}

func (p *framePool) createCommands() error {
	for i := range p.frames {
		f := &p.frames[i]
		pool, ret := p.ctx.CreateCommandPool()
		if err := check(ret, CodeCreateCommandPoolFailure, "create command pool"); err != nil {
			return err
		}
		f.Pool = pool
		cb, ret := p.ctx.AllocateCommandBuffer(pool)
		if err := check(ret, CodeCreateCommandBufferFailure, "allocate command buffer"); err != nil {
			return err
		}
		f.Commands = cb
	}
	return nil
}

func (p *framePool) createFences() error {
	for i := range p.frames {
		fence, ret := p.ctx.CreateFence(true)
		if err := check(ret, CodeCreateFenceFailure, "create fence"); err != nil {
			return err
		}
		p.frames[i].Fence = fence
	}
	return nil
}

func (p *framePool) createSemaphores() error {
	for i := range p.sems {
		ret := p.sems[i].create(p.ctx)
		if err := check(ret, CodeCreateSemaphoreFailure, "create semaphore"); err != nil {
			return err
		}
	}
	return nil
}

func (s *FrameSemaphores) create(ctx Context) (ret vulkan.Result) {
	if s.ImageAvailable, ret = ctx.CreateSemaphore(); IsError(ret) {
		return ret
	}
	s.RenderFinished, ret = ctx.CreateSemaphore()
	return ret
}

// destroy releases every resource the pool created, in reverse order of
// creation. Null handles are skipped so a partially built pool can be
// released.
func (p *framePool) destroy() {
	if p == nil {
		return
	}
	for i := range p.sems {
		s := &p.sems[i]
		if s.RenderFinished != 0 {
			p.ctx.DestroySemaphore(s.RenderFinished)
		}
		if s.ImageAvailable != 0 {
			p.ctx.DestroySemaphore(s.ImageAvailable)
		}
		*s = FrameSemaphores{}
	}
	for i := len(p.frames) - 1; i >= 0; i-- {
		f := &p.frames[i]
		if f.Fence != 0 {
			p.ctx.DestroyFence(f.Fence)
		}
		if f.Commands != 0 {
			p.ctx.FreeCommandBuffer(f.Pool, f.Commands)
		}
		if f.Pool != 0 {
			p.ctx.DestroyCommandPool(f.Pool)
		}
		if f.Framebuffer != 0 {
			p.ctx.DestroyFramebuffer(f.Framebuffer)
		}
		if f.View != 0 {
			p.ctx.DestroyImageView(f.View)
		}
		*f = Frame{}
	}
	p.frames = nil
	p.sems = nil
}
