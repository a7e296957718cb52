// Package gpu implements the render.Context capability on top of Vulkan.
package gpu

import (
	"log"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"

	"tymek/src/render"
)

// ValidationLayer is enabled when Config.Validation is set.
const ValidationLayer = "VK_LAYER_KHRONOS_validation\x00"

// Config describes the instance and device to bring up.
type Config struct {
	AppName string
	// Validation enables the Khronos validation layer.
	Validation bool
	// Extensions are the instance extensions the window system requires.
	Extensions []string
	Logger     *log.Logger
}

// Context owns a Vulkan instance, one logical device with a single graphics
// queue and every object created on behalf of a Display.
type Context struct {
	log *log.Logger

	instance vulkan.Instance
	gpu      vulkan.PhysicalDevice
	device   vulkan.Device
	queue    vulkan.Queue
	family   uint32
	descPool vulkan.DescriptorPool

	surfaces     *registry[vulkan.Surface]
	swapchains   *registry[swapchainEntry]
	images       *registry[vulkan.Image]
	renderPasses *registry[vulkan.RenderPass]
	views        *registry[vulkan.ImageView]
	framebuffers *registry[vulkan.Framebuffer]
	pools        *registry[vulkan.CommandPool]
	commands     *registry[vulkan.CommandBuffer]
	fences       *registry[vulkan.Fence]
	semaphores   *registry[vulkan.Semaphore]
}

var _ render.Context = (*Context)(nil)

// Load points the Vulkan loader at procAddr, the vkGetInstanceProcAddr of
// the window system, and resolves the global entry points.
func Load(procAddr unsafe.Pointer) error {
	if procAddr == nil {
		return render.Fail(render.CodeCreateInfoMissingValue, "load vulkan",
			errors.New("no vkGetInstanceProcAddr"))
	}
	vulkan.SetGetInstanceProcAddr(procAddr)
	if err := vulkan.Init(); err != nil {
		return render.Fail(render.CodeCreateInstanceFailure, "load vulkan", err)
	}
	return nil
}

// New brings up the instance, picks a physical device and a graphics queue
// family, and creates the logical device and its descriptor pool. Load must
// have succeeded first.
func New(cfg Config) (*Context, error) {
	if cfg.AppName == "" {
		return nil, render.Fail(render.CodeCreateInfoMissingValue, "new context",
			errors.New("application name is required"))
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	c := &Context{
		log:          cfg.Logger,
		surfaces:     newRegistry[vulkan.Surface](),
		swapchains:   newRegistry[swapchainEntry](),
		images:       newRegistry[vulkan.Image](),
		renderPasses: newRegistry[vulkan.RenderPass](),
		views:        newRegistry[vulkan.ImageView](),
		framebuffers: newRegistry[vulkan.Framebuffer](),
		pools:        newRegistry[vulkan.CommandPool](),
		commands:     newRegistry[vulkan.CommandBuffer](),
		fences:       newRegistry[vulkan.Fence](),
		semaphores:   newRegistry[vulkan.Semaphore](),
	}
	steps := []func() error{
		func() error { return c.createInstance(cfg) },
		c.selectPhysicalDevice,
		c.selectQueueFamily,
		c.createDevice,
		c.createDescriptorPool,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.Destroy()
			return nil, err
		}
	}
	return c, nil
}

func (c *Context) createInstance(cfg Config) error {
	extensions := make([]string, 0, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions = append(extensions, cstr(ext))
	}
	var layers []string
	if cfg.Validation {
		layers = append(layers, ValidationLayer)
	}
	info := vulkan.InstanceCreateInfo{
		SType: vulkan.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vulkan.ApplicationInfo{
			SType:              vulkan.StructureTypeApplicationInfo,
			PApplicationName:   cstr(cfg.AppName),
			ApplicationVersion: vulkan.MakeVersion(1, 0, 0),
			PEngineName:        "tymek\x00",
			EngineVersion:      vulkan.MakeVersion(1, 0, 0),
			ApiVersion:         vulkan.MakeVersion(1, 0, 0),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}
	var instance vulkan.Instance
	if err := vulkan.Error(vulkan.CreateInstance(&info, nil, &instance)); err != nil {
		return render.Fail(render.CodeCreateInstanceFailure, "create instance", err)
	}
	c.instance = instance
	if err := vulkan.InitInstance(instance); err != nil {
		return render.Fail(render.CodeCreateInstanceFailure, "init instance", err)
	}
	c.log.Printf("gpu: instance created (%d extensions, validation %t)", len(extensions), cfg.Validation)
	return nil
}

func (c *Context) selectPhysicalDevice() error {
	var count uint32
	if err := vulkan.Error(vulkan.EnumeratePhysicalDevices(c.instance, &count, nil)); err != nil {
		return render.Fail(render.CodeEnumerateFailure, "enumerate physical devices", err)
	}
	devices := make([]vulkan.PhysicalDevice, count)
	if count > 0 {
		if err := vulkan.Error(vulkan.EnumeratePhysicalDevices(c.instance, &count, devices)); err != nil {
			return render.Fail(render.CodeEnumerateFailure, "enumerate physical devices", err)
		}
	}
	types := make([]vulkan.PhysicalDeviceType, len(devices))
	names := make([]string, len(devices))
	for i, pd := range devices {
		var props vulkan.PhysicalDeviceProperties
		vulkan.GetPhysicalDeviceProperties(pd, &props)
		props.Deref()
		types[i] = props.DeviceType
		names[i] = vulkan.ToString(props.DeviceName[:])
	}
	i, err := pickDevice(types)
	if err != nil {
		return err
	}
	c.gpu = devices[i]
	c.log.Printf("gpu: using physical device %d of %d: %s", i, len(devices), names[i])
	return nil
}

// pickDevice returns the index of the first discrete GPU, or zero when there
// is none.
func pickDevice(types []vulkan.PhysicalDeviceType) (int, error) {
	if len(types) == 0 {
		return 0, render.Fail(render.CodeNoAvailablePhysicalDevices, "select physical device",
			errors.New("no physical devices"))
	}
	for i, t := range types {
		if t == vulkan.PhysicalDeviceTypeDiscreteGpu {
			return i, nil
		}
	}
	return 0, nil
}

func (c *Context) selectQueueFamily() error {
	var count uint32
	vulkan.GetPhysicalDeviceQueueFamilyProperties(c.gpu, &count, nil)
	props := make([]vulkan.QueueFamilyProperties, count)
	vulkan.GetPhysicalDeviceQueueFamilyProperties(c.gpu, &count, props)
	flags := make([]vulkan.QueueFlags, len(props))
	for i := range props {
		props[i].Deref()
		flags[i] = props[i].QueueFlags
	}
	family, err := pickQueueFamily(flags)
	if err != nil {
		return err
	}
	c.family = family
	return nil
}

// pickQueueFamily returns the first family with graphics support.
func pickQueueFamily(flags []vulkan.QueueFlags) (uint32, error) {
	for i, f := range flags {
		if f&vulkan.QueueFlags(vulkan.QueueGraphicsBit) != 0 {
			return uint32(i), nil
		}
	}
	return 0, render.Fail(render.CodeNoAvailableGraphicsQueues, "select queue family",
		errors.Errorf("none of %d queue families supports graphics", len(flags)))
}

func (c *Context) createDevice() error {
	extensions := []string{cstr(vulkan.KhrSwapchainExtensionName)}
	info := vulkan.DeviceCreateInfo{
		SType:                vulkan.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vulkan.DeviceQueueCreateInfo{{
			SType:            vulkan.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: c.family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}
	var device vulkan.Device
	if err := vulkan.Error(vulkan.CreateDevice(c.gpu, &info, nil, &device)); err != nil {
		return render.Fail(render.CodeCreateDeviceFailure, "create device", err)
	}
	c.device = device
	var queue vulkan.Queue
	vulkan.GetDeviceQueue(device, c.family, 0, &queue)
	c.queue = queue
	return nil
}

func (c *Context) createDescriptorPool() error {
	info := vulkan.DescriptorPoolCreateInfo{
		SType:         vulkan.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vulkan.DescriptorPoolCreateFlags(vulkan.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       1,
		PoolSizeCount: 1,
		PPoolSizes: []vulkan.DescriptorPoolSize{{
			Type:            vulkan.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
		}},
	}
	var pool vulkan.DescriptorPool
	if err := vulkan.Error(vulkan.CreateDescriptorPool(c.device, &info, nil, &pool)); err != nil {
		return render.Fail(render.CodeCreateDescriptorPoolFailure, "create descriptor pool", err)
	}
	c.descPool = pool
	return nil
}

// QueueFamily is the index of the graphics queue family.
func (c *Context) QueueFamily() uint32 {
	return c.family
}

func (c *Context) WaitIdle() vulkan.Result {
	if c.device == nil {
		return vulkan.Success
	}
	return vulkan.DeviceWaitIdle(c.device)
}

// Destroy waits for the device and releases it together with anything a
// Display left behind. Leftovers are logged.
func (c *Context) Destroy() {
	if c.device != nil {
		if err := vulkan.Error(vulkan.DeviceWaitIdle(c.device)); err != nil {
			c.log.Printf("gpu: destroy: %v", errors.Wrap(err, "wait idle"))
		}
		c.releaseLeaks()
		if c.descPool != nil {
			vulkan.DestroyDescriptorPool(c.device, c.descPool, nil)
			c.descPool = nil
		}
		vulkan.DestroyDevice(c.device, nil)
		c.device = nil
	}
	if c.instance != nil {
		for _, s := range c.surfaces.drain() {
			vulkan.DestroySurface(c.instance, s, nil)
		}
		vulkan.DestroyInstance(c.instance, nil)
		c.instance = nil
	}
}

func (c *Context) releaseLeaks() {
	leaked := map[string]int{
		"semaphore":      c.semaphores.len(),
		"fence":          c.fences.len(),
		"command buffer": c.commands.len(),
		"command pool":   c.pools.len(),
		"framebuffer":    c.framebuffers.len(),
		"image view":     c.views.len(),
		"render pass":    c.renderPasses.len(),
		"swapchain":      c.swapchains.len(),
		"surface":        c.surfaces.len(),
	}
	for kind, n := range leaked {
		if n > 0 {
			c.log.Printf("gpu: destroy: %d %s handle(s) still alive", n, kind)
		}
	}
	for _, s := range c.semaphores.drain() {
		vulkan.DestroySemaphore(c.device, s, nil)
	}
	for _, f := range c.fences.drain() {
		vulkan.DestroyFence(c.device, f, nil)
	}
	// Command buffers go with their pools.
	c.commands.drain()
	for _, p := range c.pools.drain() {
		vulkan.DestroyCommandPool(c.device, p, nil)
	}
	for _, fb := range c.framebuffers.drain() {
		vulkan.DestroyFramebuffer(c.device, fb, nil)
	}
	for _, v := range c.views.drain() {
		vulkan.DestroyImageView(c.device, v, nil)
	}
	for _, rp := range c.renderPasses.drain() {
		vulkan.DestroyRenderPass(c.device, rp, nil)
	}
	for _, sc := range c.swapchains.drain() {
		vulkan.DestroySwapchain(c.device, sc.handle, nil)
	}
	c.images.drain()
}

// cstr null-terminates s for the driver.
func cstr(s string) string {
	if n := len(s); n > 0 && s[n-1] == 0 {
		return s
	}
	return s + "\x00"
}
