package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// Rebuild replaces the swapchain and every resource derived from it. It is
// safe to call at any time, including with no previous generation. Handles
// obtained from Frames or FrameSemaphores before the call are invalid after
// it.
//
// A failure is sticky: the Display stops rendering and can only be
// destroyed.
func (d *Display) Rebuild() error {
	if d.err != nil {
		return d.err
	}
	steps := []func() error{
		d.waitIdle,
		d.teardown,
		d.createSwapchain,
		d.createRenderPass,
		func() error { return d.frames.createViews(d.format) },
		func() error { return d.frames.createFramebuffers(d.renderPass, d.extent) },
		func() error { return d.frames.createCommands() },
		func() error { return d.frames.createFences() },
		func() error { return d.frames.createSemaphores() },
		d.prepare,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return d.fail(err)
		}
	}
	d.stale = false
	d.semIndex = 0
	d.log.Printf("render: swapchain rebuilt: %d images, %dx%d, format %d, color space %d",
		len(d.frames.frames), d.extent.Width, d.extent.Height, d.format.Format, d.format.ColorSpace)
	return nil
}

func (d *Display) waitIdle() error {
	return check(d.ctx.WaitIdle(), CodeSyncFailure, "wait idle")
}

// teardown releases the previous generation's frames, semaphores and render
// pass. The swapchain itself is kept as the recycling hint for the next one.
func (d *Display) teardown() error {
	if d.built && d.opts.OnCleanup != nil {
		if err := d.opts.OnCleanup(); err != nil {
			return Fail(CodeFailure, "cleanup hook", err)
		}
	}
	d.built = false
	d.frames.destroy()
	if d.renderPass != 0 {
		d.ctx.DestroyRenderPass(d.renderPass)
		d.renderPass = 0
	}
	return nil
}

func (d *Display) createSwapchain() error {
	caps, ret := d.ctx.SurfaceCapabilities(d.surface)
	if err := check(ret, CodeCreateSwapchainFailure, "surface capabilities"); err != nil {
		return err
	}
	w, h := d.win.FramebufferSize()
	extent := swapExtent(caps, w, h)
	if !extent.Area() {
		return Fail(CodeCreateSwapchainFailure, "swap extent",
			errors.Errorf("zero-area extent %dx%d", extent.Width, extent.Height))
	}
	old := d.swapchain
	sc, ret := d.ctx.CreateSwapchain(SwapchainCreateInfo{
		Surface:        d.surface,
		MinImageCount:  imageCount(d.opts.MinImageCount, caps),
		Format:         d.format,
		Extent:         extent,
		Usage:          vulkan.ImageUsageColorAttachmentBit,
		SharingMode:    vulkan.SharingModeExclusive,
		PreTransform:   preTransform(caps),
		CompositeAlpha: vulkan.CompositeAlphaOpaqueBit,
		PresentMode:    PresentMode,
		OldSwapchain:   old,
	})
	if err := check(ret, CodeCreateSwapchainFailure, "create swapchain"); err != nil {
		return err
	}
	d.swapchain = sc
	if old != 0 {
		d.ctx.DestroySwapchain(old)
	}
	d.extent = extent
	d.winWidth, d.winHeight = w, h

	images, ret := d.ctx.SwapchainImages(sc)
	if err := check(ret, CodeCreateSwapchainFailure, "swapchain images"); err != nil {
		return err
	}
	if len(images) < DefaultMinImageCount || len(images) > d.opts.MaxImageCount {
		return Fail(CodeCreateSwapchainFailure, "swapchain images",
			errors.Errorf("image count %d outside [%d, %d]", len(images), DefaultMinImageCount, d.opts.MaxImageCount))
	}
	d.frames = newFramePool(d.ctx, images)
	return nil
}

func (d *Display) createRenderPass() error {
	rp, ret := d.ctx.CreateRenderPass(d.format.Format)
	if err := check(ret, CodeCreateRenderPassFailure, "create render pass"); err != nil {
		return err
	}
	d.renderPass = rp
	return nil
}

func (d *Display) prepare() error {
	d.built = true
	if d.opts.OnPrepare == nil {
		return nil
	}
	if err := d.opts.OnPrepare(d.Dimensions()); err != nil {
		return Fail(CodeFailure, "prepare hook", err)
	}
	return nil
}
