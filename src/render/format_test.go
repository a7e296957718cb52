package render

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulkan-go/vulkan"
)

// extendedSrgbLinear is VK_COLOR_SPACE_EXTENDED_SRGB_LINEAR_EXT.
const extendedSrgbLinear = vulkan.ColorSpace(1000104002)

func sf(format vulkan.Format) SurfaceFormat {
	return SurfaceFormat{Format: format, ColorSpace: vulkan.ColorSpaceSrgbNonlinear}
}

func TestChooseFormat(t *testing.T) {
	other := SurfaceFormat{Format: vulkan.FormatR16g16b16a16Sfloat, ColorSpace: vulkan.ColorSpaceSrgbNonlinear}
	for idx, tc := range []struct {
		formats []SurfaceFormat
		want    SurfaceFormat
	}{
		{[]SurfaceFormat{{Format: vulkan.FormatUndefined}}, DefaultSurfaceFormat},
		{[]SurfaceFormat{sf(vulkan.FormatB8g8r8a8Unorm)}, sf(vulkan.FormatB8g8r8a8Unorm)},
		{[]SurfaceFormat{sf(vulkan.FormatR8g8b8a8Unorm), sf(vulkan.FormatB8g8r8a8Unorm)}, sf(vulkan.FormatB8g8r8a8Unorm)},
		{[]SurfaceFormat{other, sf(vulkan.FormatR8g8b8Unorm), sf(vulkan.FormatB8g8r8Unorm)}, sf(vulkan.FormatB8g8r8Unorm)},
		{[]SurfaceFormat{other, sf(vulkan.FormatR8g8b8a8Unorm)}, sf(vulkan.FormatR8g8b8a8Unorm)},
		{[]SurfaceFormat{other}, other},
		// A preferred format outside sRGB non-linear does not match.
		{
			[]SurfaceFormat{other, {Format: vulkan.FormatB8g8r8a8Unorm, ColorSpace: extendedSrgbLinear}},
			other,
		},
	} {
		t.Run(fmt.Sprintf("%d/%d formats", idx, len(tc.formats)), func(t *testing.T) {
			got, err := chooseFormat(tc.formats)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestChooseFormatEmpty(t *testing.T) {
	_, err := chooseFormat(nil)
	require.Error(t, err)
	require.Equal(t, CodeEnumerateFailure, CodeOf(err))
}

func TestSelectFormat(t *testing.T) {
	t.Run("no wsi support", func(t *testing.T) {
		ctx := newFakeContext()
		ctx.support = false
		_, err := SelectFormat(ctx, 1)
		require.Equal(t, CodeNoAvailableWSISupport, CodeOf(err))
	})
	t.Run("support query fails", func(t *testing.T) {
		ctx := newFakeContext()
		ctx.fail["surface support"] = vulkan.ErrorSurfaceLost
		_, err := SelectFormat(ctx, 1)
		require.Equal(t, CodeNoAvailableWSISupport, CodeOf(err))
	})
	t.Run("enumeration fails", func(t *testing.T) {
		ctx := newFakeContext()
		ctx.fail["surface formats"] = vulkan.ErrorOutOfHostMemory
		_, err := SelectFormat(ctx, 1)
		require.Equal(t, CodeEnumerateFailure, CodeOf(err))
	})
	t.Run("undefined", func(t *testing.T) {
		ctx := newFakeContext()
		ctx.formats = []SurfaceFormat{{Format: vulkan.FormatUndefined}}
		got, err := SelectFormat(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, DefaultSurfaceFormat, got)
	})
}

func TestImageCount(t *testing.T) {
	for idx, tc := range []struct {
		requested, min, max uint32
		want                uint32
	}{
		{2, 1, 0, 2},
		{2, 3, 0, 3},
		{2, 2, 8, 2},
		{4, 2, 3, 3},
		{2, 1, 2, 2},
	} {
		t.Run(fmt.Sprintf("%d/%d in [%d,%d]", idx, tc.requested, tc.min, tc.max), func(t *testing.T) {
			caps := SurfaceCapabilities{MinImageCount: tc.min, MaxImageCount: tc.max}
			require.Equal(t, tc.want, imageCount(tc.requested, caps))
		})
	}
}

func TestSwapExtent(t *testing.T) {
	limits := SurfaceCapabilities{
		CurrentExtent:  Extent{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: Extent{Width: 16, Height: 16},
		MaxImageExtent: Extent{Width: 1024, Height: 768},
	}
	fixed := limits
	fixed.CurrentExtent = Extent{Width: 800, Height: 600}

	for idx, tc := range []struct {
		caps SurfaceCapabilities
		w, h int
		want Extent
	}{
		{fixed, 10, 10, Extent{800, 600}},
		{limits, 640, 480, Extent{640, 480}},
		{limits, 4000, 4000, Extent{1024, 768}},
		{limits, 1, 1, Extent{16, 16}},
		{limits, -5, 20, Extent{16, 20}},
	} {
		t.Run(fmt.Sprintf("%d/%dx%d", idx, tc.w, tc.h), func(t *testing.T) {
			require.Equal(t, tc.want, swapExtent(tc.caps, tc.w, tc.h))
		})
	}
}

func TestPreTransform(t *testing.T) {
	caps := SurfaceCapabilities{
		SupportedTransforms: vulkan.SurfaceTransformFlags(vulkan.SurfaceTransformIdentityBit | vulkan.SurfaceTransformRotate90Bit),
		CurrentTransform:    vulkan.SurfaceTransformRotate90Bit,
	}
	require.Equal(t, vulkan.SurfaceTransformIdentityBit, preTransform(caps))

	caps.SupportedTransforms = vulkan.SurfaceTransformFlags(vulkan.SurfaceTransformRotate90Bit)
	require.Equal(t, vulkan.SurfaceTransformRotate90Bit, preTransform(caps))
}
