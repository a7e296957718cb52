package render

import (
	"math"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// DefaultSurfaceFormat is used when the surface leaves the format up to the
// application.
var DefaultSurfaceFormat = SurfaceFormat{
	Format:     vulkan.FormatB8g8r8a8Unorm,
	ColorSpace: vulkan.ColorSpaceSrgbNonlinear,
}

// preferredFormats is scanned in order; the first format the surface
// supports in the sRGB non-linear color space wins.
var preferredFormats = []vulkan.Format{
	vulkan.FormatB8g8r8a8Unorm,
	vulkan.FormatR8g8b8a8Unorm,
	vulkan.FormatB8g8r8Unorm,
	vulkan.FormatR8g8b8Unorm,
}

// PresentMode is the only present mode every conformant implementation
// supports.
const PresentMode = vulkan.PresentModeFifo

// SelectFormat picks the surface format for the lifetime of a Display. The
// queue family of ctx must be able to present to s.
func SelectFormat(ctx Context, s Surface) (SurfaceFormat, error) {
	supported, ret := ctx.SurfaceSupport(s)
	if IsError(ret) {
		return SurfaceFormat{}, check(ret, CodeNoAvailableWSISupport, "surface support")
	}
	if !supported {
		return SurfaceFormat{}, Fail(CodeNoAvailableWSISupport, "surface support",
			errors.New("graphics queue family cannot present to surface"))
	}
	formats, ret := ctx.SurfaceFormats(s)
	if IsError(ret) {
		return SurfaceFormat{}, check(ret, CodeEnumerateFailure, "surface formats")
	}
	return chooseFormat(formats)
}

func chooseFormat(formats []SurfaceFormat) (SurfaceFormat, error) {
	switch {
	case len(formats) == 0:
		return SurfaceFormat{}, Fail(CodeEnumerateFailure, "surface formats",
			errors.New("surface reports no formats"))
	case len(formats) == 1 && formats[0].Format == vulkan.FormatUndefined:
		return DefaultSurfaceFormat, nil
	}
	for _, want := range preferredFormats {
		for _, f := range formats {
			if f.Format == want && f.ColorSpace == vulkan.ColorSpaceSrgbNonlinear {
				return f, nil
			}
		}
	}
	return formats[0], nil
}

// imageCount clamps the requested minimum between the surface bounds. A
// maximum of zero is unbounded.
func imageCount(requested uint32, caps SurfaceCapabilities) uint32 {
	n := requested
	if caps.MinImageCount > n {
		n = caps.MinImageCount
	}
	if caps.MaxImageCount != 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

// swapExtent returns the surface's current extent, or the window size
// clamped to the surface limits when the surface lets the swapchain decide.
func swapExtent(caps SurfaceCapabilities, width, height int) Extent {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	e := Extent{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
	e.Width = clamp(e.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width)
	e.Height = clamp(e.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)
	return e
}

func clamp(v, lo, hi uint32) uint32 {
	if hi != 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func preTransform(caps SurfaceCapabilities) vulkan.SurfaceTransformFlagBits {
	if caps.SupportedTransforms&vulkan.SurfaceTransformFlags(vulkan.SurfaceTransformIdentityBit) != 0 {
		return vulkan.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}
