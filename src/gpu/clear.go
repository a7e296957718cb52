package gpu

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"

	"tymek/src/render"
)

// ClearRecorder records a render pass that only clears the target to its
// clear color.
type ClearRecorder struct {
	ctx *Context
}

var _ render.Recorder = (*ClearRecorder)(nil)

func NewClearRecorder(ctx *Context) *ClearRecorder {
	return &ClearRecorder{ctx: ctx}
}

func (r *ClearRecorder) Record(cmd render.CommandBuffer, target render.RenderTarget) error {
	buf, ok := r.ctx.commands.get(uint64(cmd))
	if !ok {
		return errors.Wrapf(errUnknownHandle, "command buffer %d", cmd)
	}
	pass, ok := r.ctx.renderPasses.get(uint64(target.RenderPass))
	if !ok {
		return errors.Wrapf(errUnknownHandle, "render pass %d", target.RenderPass)
	}
	fb, ok := r.ctx.framebuffers.get(uint64(target.Framebuffer))
	if !ok {
		return errors.Wrapf(errUnknownHandle, "framebuffer %d", target.Framebuffer)
	}
	clear := target.ClearColor
	vulkan.CmdBeginRenderPass(buf, &vulkan.RenderPassBeginInfo{
		SType:       vulkan.StructureTypeRenderPassBeginInfo,
		RenderPass:  pass,
		Framebuffer: fb,
		RenderArea: vulkan.Rect2D{
			Offset: vulkan.Offset2D{X: 0, Y: 0},
			Extent: vulkan.Extent2D{Width: target.Extent.Width, Height: target.Extent.Height},
		},
		ClearValueCount: 1,
		PClearValues:    []vulkan.ClearValue{vulkan.NewClearValue(clear[:])},
	}, vulkan.SubpassContentsInline)
	vulkan.CmdEndRenderPass(buf)
	return nil
}
