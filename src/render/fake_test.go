package render

import (
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/vulkan-go/vulkan"
)

// fakeContext is a Context that hands out counted handles and records every
// call. Results are injected per call name through fail.
type fakeContext struct {
	next  uint64
	live  map[uint64]string
	calls []string
	bad   []string

	support bool
	formats []SurfaceFormat
	caps    SurfaceCapabilities
	images  int

	fail     map[string]vulkan.Result
	acquire  []vulkan.Result
	present  []vulkan.Result
	signaled map[Fence]bool

	swapchains []SwapchainCreateInfo
	submits    []SubmitInfo
	presents   int
	nextIndex  uint32
	current    Swapchain
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		live:     make(map[uint64]string),
		support:  true,
		formats:  []SurfaceFormat{DefaultSurfaceFormat},
		images:   3,
		fail:     make(map[string]vulkan.Result),
		signaled: make(map[Fence]bool),
		caps: SurfaceCapabilities{
			MinImageCount:       2,
			MaxImageCount:       8,
			CurrentExtent:       Extent{Width: 640, Height: 480},
			MinImageExtent:      Extent{Width: 1, Height: 1},
			MaxImageExtent:      Extent{Width: 4096, Height: 4096},
			SupportedTransforms: vulkan.SurfaceTransformFlags(vulkan.SurfaceTransformIdentityBit),
			CurrentTransform:    vulkan.SurfaceTransformIdentityBit,
		},
	}
}

func (f *fakeContext) call(name string) vulkan.Result {
	f.calls = append(f.calls, name)
	if ret, ok := f.fail[name]; ok {
		return ret
	}
	return vulkan.Success
}

func (f *fakeContext) alloc(kind string) uint64 {
	f.next++
	f.live[f.next] = kind
	return f.next
}

func (f *fakeContext) release(kind string, h uint64) {
	f.calls = append(f.calls, "destroy "+kind)
	if got, ok := f.live[h]; !ok || got != kind {
		f.bad = append(f.bad, fmt.Sprintf("destroy %s %d: live as %q", kind, h, got))
		return
	}
	delete(f.live, h)
}

// leaks lists the kinds of every handle still alive.
func (f *fakeContext) leaks() []string {
	var out []string
	for _, kind := range f.live {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}

func (f *fakeContext) count(kind string) int {
	n := 0
	for _, k := range f.live {
		if k == kind {
			n++
		}
	}
	return n
}

func (f *fakeContext) index(name string) int {
	for i, c := range f.calls {
		if c == name {
			return i
		}
	}
	return -1
}

func (f *fakeContext) WaitIdle() vulkan.Result { return f.call("wait idle") }

func (f *fakeContext) CreateSurface(Window) (Surface, vulkan.Result) {
	if ret := f.call("create surface"); IsError(ret) {
		return 0, ret
	}
	return Surface(f.alloc("surface")), vulkan.Success
}

func (f *fakeContext) DestroySurface(s Surface) { f.release("surface", uint64(s)) }

func (f *fakeContext) SurfaceSupport(Surface) (bool, vulkan.Result) {
	return f.support, f.call("surface support")
}

func (f *fakeContext) SurfaceFormats(Surface) ([]SurfaceFormat, vulkan.Result) {
	return f.formats, f.call("surface formats")
}

func (f *fakeContext) SurfaceCapabilities(Surface) (SurfaceCapabilities, vulkan.Result) {
	return f.caps, f.call("surface capabilities")
}

func (f *fakeContext) CreateSwapchain(info SwapchainCreateInfo) (Swapchain, vulkan.Result) {
	f.swapchains = append(f.swapchains, info)
	if ret := f.call("create swapchain"); IsError(ret) {
		return 0, ret
	}
	f.current = Swapchain(f.alloc("swapchain"))
	f.nextIndex = 0
	return f.current, vulkan.Success
}

func (f *fakeContext) SwapchainImages(Swapchain) ([]Image, vulkan.Result) {
	if ret := f.call("swapchain images"); IsError(ret) {
		return nil, ret
	}
	images := make([]Image, f.images)
	for i := range images {
		f.next++
		images[i] = Image(f.next)
	}
	return images, vulkan.Success
}

func (f *fakeContext) DestroySwapchain(sc Swapchain) { f.release("swapchain", uint64(sc)) }

func (f *fakeContext) CreateRenderPass(vulkan.Format) (RenderPass, vulkan.Result) {
	if ret := f.call("create render pass"); IsError(ret) {
		return 0, ret
	}
	return RenderPass(f.alloc("render pass")), vulkan.Success
}

func (f *fakeContext) DestroyRenderPass(rp RenderPass) { f.release("render pass", uint64(rp)) }

func (f *fakeContext) CreateImageView(Image, vulkan.Format) (ImageView, vulkan.Result) {
	if ret := f.call("create image view"); IsError(ret) {
		return 0, ret
	}
	return ImageView(f.alloc("image view")), vulkan.Success
}

func (f *fakeContext) DestroyImageView(v ImageView) { f.release("image view", uint64(v)) }

func (f *fakeContext) CreateFramebuffer(RenderPass, ImageView, Extent) (Framebuffer, vulkan.Result) {
	if ret := f.call("create framebuffer"); IsError(ret) {
		return 0, ret
	}
	return Framebuffer(f.alloc("framebuffer")), vulkan.Success
}

func (f *fakeContext) DestroyFramebuffer(fb Framebuffer) { f.release("framebuffer", uint64(fb)) }

func (f *fakeContext) CreateCommandPool() (CommandPool, vulkan.Result) {
	if ret := f.call("create command pool"); IsError(ret) {
		return 0, ret
	}
	return CommandPool(f.alloc("command pool")), vulkan.Success
}

func (f *fakeContext) ResetCommandPool(CommandPool) vulkan.Result {
	return f.call("reset command pool")
}

func (f *fakeContext) DestroyCommandPool(p CommandPool) { f.release("command pool", uint64(p)) }

func (f *fakeContext) AllocateCommandBuffer(CommandPool) (CommandBuffer, vulkan.Result) {
	if ret := f.call("allocate command buffer"); IsError(ret) {
		return 0, ret
	}
	return CommandBuffer(f.alloc("command buffer")), vulkan.Success
}

func (f *fakeContext) FreeCommandBuffer(_ CommandPool, cb CommandBuffer) {
	f.release("command buffer", uint64(cb))
}

func (f *fakeContext) BeginCommandBuffer(CommandBuffer) vulkan.Result {
	return f.call("begin command buffer")
}

func (f *fakeContext) EndCommandBuffer(CommandBuffer) vulkan.Result {
	return f.call("end command buffer")
}

func (f *fakeContext) CreateFence(signaled bool) (Fence, vulkan.Result) {
	if ret := f.call("create fence"); IsError(ret) {
		return 0, ret
	}
	fence := Fence(f.alloc("fence"))
	f.signaled[fence] = signaled
	return fence, vulkan.Success
}

// WaitFence times out on an unsignaled fence since nothing else would ever
// signal it.
func (f *fakeContext) WaitFence(fence Fence, _ uint64) vulkan.Result {
	if ret := f.call("wait fence"); IsError(ret) {
		return ret
	}
	if !f.signaled[fence] {
		return vulkan.Timeout
	}
	return vulkan.Success
}

func (f *fakeContext) ResetFence(fence Fence) vulkan.Result {
	if ret := f.call("reset fence"); IsError(ret) {
		return ret
	}
	f.signaled[fence] = false
	return vulkan.Success
}

func (f *fakeContext) DestroyFence(fence Fence) {
	delete(f.signaled, fence)
	f.release("fence", uint64(fence))
}

func (f *fakeContext) CreateSemaphore() (Semaphore, vulkan.Result) {
	if ret := f.call("create semaphore"); IsError(ret) {
		return 0, ret
	}
	return Semaphore(f.alloc("semaphore")), vulkan.Success
}

func (f *fakeContext) DestroySemaphore(s Semaphore) { f.release("semaphore", uint64(s)) }

func (f *fakeContext) AcquireNextImage(sc Swapchain, _ Semaphore, _ uint64) (uint32, vulkan.Result) {
	if ret := f.call("acquire"); IsError(ret) {
		return 0, ret
	}
	if sc != f.current {
		f.bad = append(f.bad, fmt.Sprintf("acquire from retired swapchain %d", sc))
	}
	ret := vulkan.Success
	if len(f.acquire) > 0 {
		ret, f.acquire = f.acquire[0], f.acquire[1:]
	}
	if ret != vulkan.Success && ret != vulkan.Suboptimal {
		return 0, ret
	}
	index := f.nextIndex
	f.nextIndex = (f.nextIndex + 1) % uint32(f.images)
	return index, ret
}

// Submit completes immediately: the fence is signaled on return.
func (f *fakeContext) Submit(info SubmitInfo) vulkan.Result {
	if ret := f.call("submit"); IsError(ret) {
		return ret
	}
	f.submits = append(f.submits, info)
	f.signaled[info.Fence] = true
	return vulkan.Success
}

func (f *fakeContext) Present(Swapchain, uint32, Semaphore) vulkan.Result {
	if ret := f.call("present"); IsError(ret) {
		return ret
	}
	ret := vulkan.Success
	if len(f.present) > 0 {
		ret, f.present = f.present[0], f.present[1:]
	}
	if ret == vulkan.Success || ret == vulkan.Suboptimal {
		f.presents++
	}
	return ret
}

type fakeWindow struct {
	width, height int
	minimized     bool
	// closeAfter makes ShouldClose report true after that many calls.
	closeAfter int
	polls      int
	queries    int
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{width: 640, height: 480}
}

func (w *fakeWindow) FramebufferSize() (int, int) { return w.width, w.height }
func (w *fakeWindow) IsMinimized() bool           { return w.minimized }
func (w *fakeWindow) PollEvents()                 { w.polls++ }

func (w *fakeWindow) ShouldClose() bool {
	w.queries++
	return w.queries > w.closeAfter
}

func quietOptions() Options {
	return Options{Logger: log.New(io.Discard, "", 0)}
}
