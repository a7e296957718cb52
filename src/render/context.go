package render

import (
	"github.com/vulkan-go/vulkan"
)

// Opaque handles issued by a Context. The zero value of every handle is the
// null handle.
type (
	Surface       uint64
	Swapchain     uint64
	Image         uint64
	ImageView     uint64
	Framebuffer   uint64
	RenderPass    uint64
	CommandPool   uint64
	CommandBuffer uint64
	Fence         uint64
	Semaphore     uint64
)

// Extent is a size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// Area reports whether both dimensions are non-zero.
func (e Extent) Area() bool {
	return e.Width > 0 && e.Height > 0
}

// SurfaceFormat pairs a pixel format with a color space.
type SurfaceFormat struct {
	Format     vulkan.Format
	ColorSpace vulkan.ColorSpace
}

// SurfaceCapabilities is the subset of the surface capabilities the
// swapchain is built from. A MaxImageCount of zero means unbounded.
type SurfaceCapabilities struct {
	MinImageCount       uint32
	MaxImageCount       uint32
	CurrentExtent       Extent
	MinImageExtent      Extent
	MaxImageExtent      Extent
	SupportedTransforms vulkan.SurfaceTransformFlags
	CurrentTransform    vulkan.SurfaceTransformFlagBits
}

// SwapchainCreateInfo describes a swapchain generation.
type SwapchainCreateInfo struct {
	Surface        Surface
	MinImageCount  uint32
	Format         SurfaceFormat
	Extent         Extent
	Usage          vulkan.ImageUsageFlagBits
	SharingMode    vulkan.SharingMode
	PreTransform   vulkan.SurfaceTransformFlagBits
	CompositeAlpha vulkan.CompositeAlphaFlagBits
	PresentMode    vulkan.PresentMode
	OldSwapchain   Swapchain
}

// SubmitInfo is a single command buffer submission.
type SubmitInfo struct {
	CommandBuffer CommandBuffer
	Wait          Semaphore
	WaitStage     vulkan.PipelineStageFlagBits
	Signal        Semaphore
	Fence         Fence
}

// Context is the graphics context capability: a device with one graphics
// queue. Every operation is issued from a single control thread.
//
// Fallible operations return the raw vulkan.Result so that the caller can
// tell the recoverable presentation results apart from real failures.
type Context interface {
	WaitIdle() vulkan.Result

	CreateSurface(win Window) (Surface, vulkan.Result)
	DestroySurface(s Surface)
	SurfaceSupport(s Surface) (bool, vulkan.Result)
	SurfaceFormats(s Surface) ([]SurfaceFormat, vulkan.Result)
	SurfaceCapabilities(s Surface) (SurfaceCapabilities, vulkan.Result)

	CreateSwapchain(info SwapchainCreateInfo) (Swapchain, vulkan.Result)
	SwapchainImages(sc Swapchain) ([]Image, vulkan.Result)
	DestroySwapchain(sc Swapchain)

	CreateRenderPass(format vulkan.Format) (RenderPass, vulkan.Result)
	DestroyRenderPass(rp RenderPass)
	CreateImageView(img Image, format vulkan.Format) (ImageView, vulkan.Result)
	DestroyImageView(v ImageView)
	CreateFramebuffer(rp RenderPass, v ImageView, extent Extent) (Framebuffer, vulkan.Result)
	DestroyFramebuffer(fb Framebuffer)

	CreateCommandPool() (CommandPool, vulkan.Result)
	ResetCommandPool(p CommandPool) vulkan.Result
	DestroyCommandPool(p CommandPool)
	AllocateCommandBuffer(p CommandPool) (CommandBuffer, vulkan.Result)
	FreeCommandBuffer(p CommandPool, cb CommandBuffer)
	BeginCommandBuffer(cb CommandBuffer) vulkan.Result
	EndCommandBuffer(cb CommandBuffer) vulkan.Result

	CreateFence(signaled bool) (Fence, vulkan.Result)
	WaitFence(f Fence, timeout uint64) vulkan.Result
	ResetFence(f Fence) vulkan.Result
	DestroyFence(f Fence)
	CreateSemaphore() (Semaphore, vulkan.Result)
	DestroySemaphore(s Semaphore)

	AcquireNextImage(sc Swapchain, wait Semaphore, timeout uint64) (uint32, vulkan.Result)
	Submit(info SubmitInfo) vulkan.Result
	Present(sc Swapchain, index uint32, wait Semaphore) vulkan.Result
}

// Window is the window capability consumed by a Display.
type Window interface {
	FramebufferSize() (width, height int)
	ShouldClose() bool
	IsMinimized() bool
	PollEvents()
}

// RenderTarget is what a Recorder draws into for one frame.
type RenderTarget struct {
	Index       uint32
	RenderPass  RenderPass
	Framebuffer Framebuffer
	View        ImageView
	Image       Image
	Extent      Extent
	ClearColor  [4]float32
}

// Recorder emits drawing commands into cmd, which is already in the
// recording state.
type Recorder interface {
	Record(cmd CommandBuffer, target RenderTarget) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(cmd CommandBuffer, target RenderTarget) error

func (f RecorderFunc) Record(cmd CommandBuffer, target RenderTarget) error {
	return f(cmd, target)
}

// SwapchainDimensions describes the size and format of the swapchain.
type SwapchainDimensions struct {
	// Width of the swapchain.
	Width uint32
	// Height of the swapchain.
	Height uint32
	// Format is the pixel format of the swapchain.
	Format vulkan.Format
	// ImageCount is the number of presentable images.
	ImageCount int
	// RenderPass is the render pass of the current generation.
	RenderPass RenderPass
}
