package gpu

import (
	"github.com/vulkan-go/vulkan"

	"tymek/src/render"
)

// CreateRenderPass builds the single color attachment pass every frame
// renders into: cleared on load, stored, and left ready for presentation.
func (c *Context) CreateRenderPass(format vulkan.Format) (render.RenderPass, vulkan.Result) {
	info := vulkan.RenderPassCreateInfo{
		SType:           vulkan.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments: []vulkan.AttachmentDescription{{
			Format:         format,
			Samples:        vulkan.SampleCount1Bit,
			LoadOp:         vulkan.AttachmentLoadOpClear,
			StoreOp:        vulkan.AttachmentStoreOpStore,
			StencilLoadOp:  vulkan.AttachmentLoadOpDontCare,
			StencilStoreOp: vulkan.AttachmentStoreOpDontCare,
			InitialLayout:  vulkan.ImageLayoutUndefined,
			FinalLayout:    vulkan.ImageLayoutPresentSrc,
		}},
		SubpassCount: 1,
		PSubpasses: []vulkan.SubpassDescription{{
			PipelineBindPoint:    vulkan.PipelineBindPointGraphics,
			ColorAttachmentCount: 1,
			PColorAttachments: []vulkan.AttachmentReference{{
				Attachment: 0,
				Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
			}},
		}},
		DependencyCount: 1,
		PDependencies: []vulkan.SubpassDependency{{
			SrcSubpass:    vulkan.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
			DstStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
			DstAccessMask: vulkan.AccessFlags(vulkan.AccessColorAttachmentWriteBit),
		}},
	}
	var rp vulkan.RenderPass
	if ret := vulkan.CreateRenderPass(c.device, &info, nil, &rp); render.IsError(ret) {
		return 0, ret
	}
	return render.RenderPass(c.renderPasses.put(rp)), vulkan.Success
}

func (c *Context) DestroyRenderPass(rp render.RenderPass) {
	if v, ok := c.renderPasses.take(uint64(rp)); ok {
		vulkan.DestroyRenderPass(c.device, v, nil)
	}
}

func (c *Context) CreateImageView(img render.Image, format vulkan.Format) (render.ImageView, vulkan.Result) {
	image, ok := c.images.get(uint64(img))
	if !ok {
		return 0, vulkan.ErrorInitializationFailed
	}
	info := vulkan.ImageViewCreateInfo{
		SType:    vulkan.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vulkan.ImageViewType2d,
		Format:   format,
		Components: vulkan.ComponentMapping{
			R: vulkan.ComponentSwizzleIdentity,
			G: vulkan.ComponentSwizzleIdentity,
			B: vulkan.ComponentSwizzleIdentity,
			A: vulkan.ComponentSwizzleIdentity,
		},
		SubresourceRange: vulkan.ImageSubresourceRange{
			AspectMask: vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vulkan.ImageView
	if ret := vulkan.CreateImageView(c.device, &info, nil, &view); render.IsError(ret) {
		return 0, ret
	}
	return render.ImageView(c.views.put(view)), vulkan.Success
}

func (c *Context) DestroyImageView(v render.ImageView) {
	if view, ok := c.views.take(uint64(v)); ok {
		vulkan.DestroyImageView(c.device, view, nil)
	}
}

func (c *Context) CreateFramebuffer(rp render.RenderPass, v render.ImageView, e render.Extent) (render.Framebuffer, vulkan.Result) {
	pass, ok := c.renderPasses.get(uint64(rp))
	if !ok {
		return 0, vulkan.ErrorInitializationFailed
	}
	view, ok := c.views.get(uint64(v))
	if !ok {
		return 0, vulkan.ErrorInitializationFailed
	}
	info := vulkan.FramebufferCreateInfo{
		SType:           vulkan.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass,
		AttachmentCount: 1,
		PAttachments:    []vulkan.ImageView{view},
		Width:           e.Width,
		Height:          e.Height,
		Layers:          1,
	}
	var fb vulkan.Framebuffer
	if ret := vulkan.CreateFramebuffer(c.device, &info, nil, &fb); render.IsError(ret) {
		return 0, ret
	}
	return render.Framebuffer(c.framebuffers.put(fb)), vulkan.Success
}

func (c *Context) DestroyFramebuffer(fb render.Framebuffer) {
	if v, ok := c.framebuffers.take(uint64(fb)); ok {
		vulkan.DestroyFramebuffer(c.device, v, nil)
	}
}

// CreateCommandPool creates a pool on the graphics queue family. Pools are
// reset as a whole once per frame.
func (c *Context) CreateCommandPool() (render.CommandPool, vulkan.Result) {
	info := vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		Flags:            vulkan.CommandPoolCreateFlags(vulkan.CommandPoolCreateTransientBit),
		QueueFamilyIndex: c.family,
	}
	var pool vulkan.CommandPool
	if ret := vulkan.CreateCommandPool(c.device, &info, nil, &pool); render.IsError(ret) {
		return 0, ret
	}
	return render.CommandPool(c.pools.put(pool)), vulkan.Success
}

func (c *Context) ResetCommandPool(p render.CommandPool) vulkan.Result {
	pool, ok := c.pools.get(uint64(p))
	if !ok {
		return vulkan.ErrorInitializationFailed
	}
	return vulkan.ResetCommandPool(c.device, pool, 0)
}

func (c *Context) DestroyCommandPool(p render.CommandPool) {
	if pool, ok := c.pools.take(uint64(p)); ok {
		vulkan.DestroyCommandPool(c.device, pool, nil)
	}
}

func (c *Context) AllocateCommandBuffer(p render.CommandPool) (render.CommandBuffer, vulkan.Result) {
	pool, ok := c.pools.get(uint64(p))
	if !ok {
		return 0, vulkan.ErrorInitializationFailed
	}
	buffers := make([]vulkan.CommandBuffer, 1)
	ret := vulkan.AllocateCommandBuffers(c.device, &vulkan.CommandBufferAllocateInfo{
		SType:              vulkan.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vulkan.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffers)
	if render.IsError(ret) {
		return 0, ret
	}
	return render.CommandBuffer(c.commands.put(buffers[0])), vulkan.Success
}

func (c *Context) FreeCommandBuffer(p render.CommandPool, cb render.CommandBuffer) {
	buf, ok := c.commands.take(uint64(cb))
	if !ok {
		return
	}
	if pool, ok := c.pools.get(uint64(p)); ok {
		vulkan.FreeCommandBuffers(c.device, pool, 1, []vulkan.CommandBuffer{buf})
	}
}

func (c *Context) BeginCommandBuffer(cb render.CommandBuffer) vulkan.Result {
	buf, ok := c.commands.get(uint64(cb))
	if !ok {
		return vulkan.ErrorInitializationFailed
	}
	return vulkan.BeginCommandBuffer(buf, &vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
		Flags: vulkan.CommandBufferUsageFlags(vulkan.CommandBufferUsageOneTimeSubmitBit),
	})
}

func (c *Context) EndCommandBuffer(cb render.CommandBuffer) vulkan.Result {
	buf, ok := c.commands.get(uint64(cb))
	if !ok {
		return vulkan.ErrorInitializationFailed
	}
	return vulkan.EndCommandBuffer(buf)
}

func (c *Context) CreateFence(signaled bool) (render.Fence, vulkan.Result) {
	info := vulkan.FenceCreateInfo{SType: vulkan.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vulkan.FenceCreateFlags(vulkan.FenceCreateSignaledBit)
	}
	var fence vulkan.Fence
	if ret := vulkan.CreateFence(c.device, &info, nil, &fence); render.IsError(ret) {
		return 0, ret
	}
	return render.Fence(c.fences.put(fence)), vulkan.Success
}

func (c *Context) WaitFence(f render.Fence, timeout uint64) vulkan.Result {
	fence, ok := c.fences.get(uint64(f))
	if !ok {
		return vulkan.ErrorInitializationFailed
	}
	return vulkan.WaitForFences(c.device, 1, []vulkan.Fence{fence}, vulkan.True, timeout)
}

func (c *Context) ResetFence(f render.Fence) vulkan.Result {
	fence, ok := c.fences.get(uint64(f))
	if !ok {
		return vulkan.ErrorInitializationFailed
	}
	return vulkan.ResetFences(c.device, 1, []vulkan.Fence{fence})
}

func (c *Context) DestroyFence(f render.Fence) {
	if fence, ok := c.fences.take(uint64(f)); ok {
		vulkan.DestroyFence(c.device, fence, nil)
	}
}

func (c *Context) CreateSemaphore() (render.Semaphore, vulkan.Result) {
	var sem vulkan.Semaphore
	ret := vulkan.CreateSemaphore(c.device, &vulkan.SemaphoreCreateInfo{
		SType: vulkan.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)
	if render.IsError(ret) {
		return 0, ret
	}
	return render.Semaphore(c.semaphores.put(sem)), vulkan.Success
}

func (c *Context) DestroySemaphore(s render.Semaphore) {
	if sem, ok := c.semaphores.take(uint64(s)); ok {
		vulkan.DestroySemaphore(c.device, sem, nil)
	}
}

// Submit queues one command buffer on the graphics queue.
func (c *Context) Submit(info render.SubmitInfo) vulkan.Result {
	buf, ok := c.commands.get(uint64(info.CommandBuffer))
	if !ok {
		return vulkan.ErrorInitializationFailed
	}
	wait, okWait := c.semaphores.get(uint64(info.Wait))
	signal, okSignal := c.semaphores.get(uint64(info.Signal))
	fence, okFence := c.fences.get(uint64(info.Fence))
	if !okWait || !okSignal || !okFence {
		return vulkan.ErrorInitializationFailed
	}
	return vulkan.QueueSubmit(c.queue, 1, []vulkan.SubmitInfo{{
		SType:                vulkan.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vulkan.Semaphore{wait},
		PWaitDstStageMask:    []vulkan.PipelineStageFlags{vulkan.PipelineStageFlags(info.WaitStage)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vulkan.CommandBuffer{buf},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vulkan.Semaphore{signal},
	}}, fence)
}
