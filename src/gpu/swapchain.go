package gpu

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"

	"tymek/src/render"
)

// SurfaceSource is implemented by windows that can create a Vulkan surface
// for an instance.
type SurfaceSource interface {
	CreateWindowSurface(instance vulkan.Instance) (uintptr, error)
}

type swapchainEntry struct {
	handle vulkan.Swapchain
	// images are registry handles owned by the swapchain.
	images []uint64
}

func (c *Context) CreateSurface(win render.Window) (render.Surface, vulkan.Result) {
	src, ok := win.(SurfaceSource)
	if !ok {
		c.log.Printf("gpu: create surface: %T cannot create surfaces", win)
		return 0, vulkan.ErrorExtensionNotPresent
	}
	ptr, err := src.CreateWindowSurface(c.instance)
	if err != nil {
		c.log.Printf("gpu: create surface: %v", errors.Wrap(err, "window"))
		return 0, vulkan.ErrorInitializationFailed
	}
	return render.Surface(c.surfaces.put(vulkan.SurfaceFromPointer(ptr))), vulkan.Success
}

func (c *Context) DestroySurface(s render.Surface) {
	if surface, ok := c.surfaces.take(uint64(s)); ok {
		vulkan.DestroySurface(c.instance, surface, nil)
	}
}

// SurfaceSupport reports whether the graphics queue family can present to
// s.
func (c *Context) SurfaceSupport(s render.Surface) (bool, vulkan.Result) {
	surface, ok := c.surfaces.get(uint64(s))
	if !ok {
		return false, vulkan.ErrorSurfaceLost
	}
	var supported vulkan.Bool32
	ret := vulkan.GetPhysicalDeviceSurfaceSupport(c.gpu, c.family, surface, &supported)
	return supported == vulkan.True, ret
}

func (c *Context) SurfaceFormats(s render.Surface) ([]render.SurfaceFormat, vulkan.Result) {
	surface, ok := c.surfaces.get(uint64(s))
	if !ok {
		return nil, vulkan.ErrorSurfaceLost
	}
	var count uint32
	if ret := vulkan.GetPhysicalDeviceSurfaceFormats(c.gpu, surface, &count, nil); render.IsError(ret) {
		return nil, ret
	}
	formats := make([]vulkan.SurfaceFormat, count)
	if ret := vulkan.GetPhysicalDeviceSurfaceFormats(c.gpu, surface, &count, formats); render.IsError(ret) {
		return nil, ret
	}
	out := make([]render.SurfaceFormat, 0, count)
	for i := range formats[:count] {
		formats[i].Deref()
		out = append(out, render.SurfaceFormat{
			Format:     formats[i].Format,
			ColorSpace: formats[i].ColorSpace,
		})
	}
	return out, vulkan.Success
}

func (c *Context) SurfaceCapabilities(s render.Surface) (render.SurfaceCapabilities, vulkan.Result) {
	surface, ok := c.surfaces.get(uint64(s))
	if !ok {
		return render.SurfaceCapabilities{}, vulkan.ErrorSurfaceLost
	}
	var caps vulkan.SurfaceCapabilities
	if ret := vulkan.GetPhysicalDeviceSurfaceCapabilities(c.gpu, surface, &caps); render.IsError(ret) {
		return render.SurfaceCapabilities{}, ret
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return render.SurfaceCapabilities{
		MinImageCount:       caps.MinImageCount,
		MaxImageCount:       caps.MaxImageCount,
		CurrentExtent:       extent(caps.CurrentExtent),
		MinImageExtent:      extent(caps.MinImageExtent),
		MaxImageExtent:      extent(caps.MaxImageExtent),
		SupportedTransforms: caps.SupportedTransforms,
		CurrentTransform:    caps.CurrentTransform,
	}, vulkan.Success
}

func (c *Context) CreateSwapchain(info render.SwapchainCreateInfo) (render.Swapchain, vulkan.Result) {
	surface, ok := c.surfaces.get(uint64(info.Surface))
	if !ok {
		return 0, vulkan.ErrorSurfaceLost
	}
	var old vulkan.Swapchain
	if e, ok := c.swapchains.get(uint64(info.OldSwapchain)); ok {
		old = e.handle
	}
	create := vulkan.SwapchainCreateInfo{
		SType:            vulkan.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    info.MinImageCount,
		ImageFormat:      info.Format.Format,
		ImageColorSpace:  info.Format.ColorSpace,
		ImageExtent:      vulkan.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vulkan.ImageUsageFlags(info.Usage),
		ImageSharingMode: info.SharingMode,
		PreTransform:     info.PreTransform,
		CompositeAlpha:   info.CompositeAlpha,
		PresentMode:      info.PresentMode,
		Clipped:          vulkan.True,
		OldSwapchain:     old,
	}
	var sc vulkan.Swapchain
	if ret := vulkan.CreateSwapchain(c.device, &create, nil, &sc); render.IsError(ret) {
		return 0, ret
	}
	return render.Swapchain(c.swapchains.put(swapchainEntry{handle: sc})), vulkan.Success
}

// SwapchainImages returns the presentable images of sc. They belong to the
// swapchain and are released with it.
func (c *Context) SwapchainImages(sc render.Swapchain) ([]render.Image, vulkan.Result) {
	e, ok := c.swapchains.get(uint64(sc))
	if !ok {
		return nil, vulkan.ErrorOutOfDate
	}
	var count uint32
	if ret := vulkan.GetSwapchainImages(c.device, e.handle, &count, nil); render.IsError(ret) {
		return nil, ret
	}
	images := make([]vulkan.Image, count)
	if ret := vulkan.GetSwapchainImages(c.device, e.handle, &count, images); render.IsError(ret) {
		return nil, ret
	}
	for _, h := range e.images {
		c.images.take(h)
	}
	e.images = e.images[:0]
	out := make([]render.Image, 0, count)
	for _, img := range images[:count] {
		h := c.images.put(img)
		e.images = append(e.images, h)
		out = append(out, render.Image(h))
	}
	c.swapchains.set(uint64(sc), e)
	return out, vulkan.Success
}

func (c *Context) DestroySwapchain(sc render.Swapchain) {
	e, ok := c.swapchains.take(uint64(sc))
	if !ok {
		return
	}
	for _, h := range e.images {
		c.images.take(h)
	}
	vulkan.DestroySwapchain(c.device, e.handle, nil)
}

func (c *Context) AcquireNextImage(sc render.Swapchain, wait render.Semaphore, timeout uint64) (uint32, vulkan.Result) {
	e, ok := c.swapchains.get(uint64(sc))
	if !ok {
		return 0, vulkan.ErrorOutOfDate
	}
	sem, ok := c.semaphores.get(uint64(wait))
	if !ok {
		return 0, vulkan.ErrorInitializationFailed
	}
	var index uint32
	ret := vulkan.AcquireNextImage(c.device, e.handle, timeout, sem, vulkan.Fence(vulkan.NullHandle), &index)
	return index, ret
}

func (c *Context) Present(sc render.Swapchain, index uint32, wait render.Semaphore) vulkan.Result {
	e, ok := c.swapchains.get(uint64(sc))
	if !ok {
		return vulkan.ErrorOutOfDate
	}
	sem, ok := c.semaphores.get(uint64(wait))
	if !ok {
		return vulkan.ErrorInitializationFailed
	}
	return vulkan.QueuePresent(c.queue, &vulkan.PresentInfo{
		SType:              vulkan.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vulkan.Semaphore{sem},
		SwapchainCount:     1,
		PSwapchains:        []vulkan.Swapchain{e.handle},
		PImageIndices:      []uint32{index},
	})
}

func extent(e vulkan.Extent2D) render.Extent {
	return render.Extent{Width: e.Width, Height: e.Height}
}

var errUnknownHandle = errors.New("unknown handle")
