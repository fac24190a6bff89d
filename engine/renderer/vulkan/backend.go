package vulkan

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/trigon/engine/core"
	kmath "github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/platform"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// VulkanRenderer is the Vulkan implementation of the renderer backend. One
// instance drives one window surface.
type VulkanRenderer struct {
	platform *platform.Platform
	context  *VulkanContext

	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	debug bool

	descriptors  *VulkanDescriptors
	fillPipeline *VulkanPipeline
	wirePipeline *VulkanPipeline

	draws   map[renderer.DataSetRole]*vulkanGeometry
	pending []*vulkanGeometry
	// Commits recorded into each frame slot, retired when that slot's fence
	// is next observed signaled.
	commitsBySlot [][]*vulkanGeometry

	overlay OverlayRecorder
}

var _ renderer.Backend = (*VulkanRenderer)(nil)

func New(p *platform.Platform, debug bool) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		context: &VulkanContext{
			Device:    &VulkanDevice{},
			Allocator: nil,
		},
		debug: debug,
		draws: make(map[renderer.DataSetRole]*vulkanGeometry),
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("vulkan loader not available: %w", core.ErrUnsupported)
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vulkan: %s", err.Error())
		return err
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Trigon Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.RequiredExtensionNames()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1 // VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	}

	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		core.LogInfo("Required extensions:")
		for i := range requiredExtensions {
			core.LogInfo("  %s", requiredExtensions[i])
		}
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	var requiredValidationLayerNames []string
	if vr.debug {
		core.LogInfo("Validation layers enabled. Enumerating...")
		requiredValidationLayerNames = []string{"VK_LAYER_KHRONOS_validation"}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			err := fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return err
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			err := fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return err
		}

		for _, name := range requiredValidationLayerNames {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				if name == vk.ToString(availableLayers[j].LayerName[:]) {
					found = true
					break
				}
			}
			if !found {
				core.LogWarn("Validation layer %s is missing, disabling validation.", name)
				requiredValidationLayerNames = nil
				break
			}
		}
	}

	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayerNames))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayerNames)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed to create the Vulkan instance: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan instance created.")

	if vr.debug && len(requiredValidationLayerNames) > 0 {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg); res != vk.Success {
			core.LogWarn("failed to create debug callback: %s", VulkanResultString(res))
		} else {
			vr.context.debugMessenger = dbg
			core.LogDebug("Vulkan debugger created.")
		}
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		core.LogError("failed to create platform surface: %s", err.Error())
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		core.LogError("failed to create device: %s", err.Error())
		return err
	}

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height

	mainPass, err := NewMainRenderpass(vr.context)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = mainPass

	overlayPass, err := NewOverlayRenderpass(vr.context)
	if err != nil {
		return err
	}
	vr.context.OverlayRenderpass = overlayPass

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}

	// Frame slots and their descriptor sets.
	vr.descriptors, err = NewDescriptors(vr.context, uint32(vr.context.Swapchain.MaxFramesInFlight))
	if err != nil {
		return err
	}

	slotCount := int(vr.context.Swapchain.MaxFramesInFlight)
	vr.context.FrameSlots = make([]*FrameSlot, slotCount)
	vr.commitsBySlot = make([][]*vulkanGeometry, slotCount)
	for i := 0; i < slotCount; i++ {
		slot, err := NewFrameSlot(vr.context, vr.context.Device.GraphicsCommandPool)
		if err != nil {
			return err
		}
		if err := vr.descriptors.AllocateSlotSet(vr.context, slot); err != nil {
			return err
		}
		vr.context.FrameSlots[i] = slot
	}
	vr.context.CurrentFrame = 0

	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)

	if err := vr.createPipelines(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createPipelines() error {
	layouts := []vk.DescriptorSetLayout{vr.descriptors.SetLayout}

	fillVert, err := NewShaderModule(vr.context, "triangle", "vert", vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer fillVert.Destroy(vr.context)
	fillFrag, err := NewShaderModule(vr.context, "triangle", "frag", vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer fillFrag.Destroy(vr.context)

	vr.fillPipeline, err = NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
		Renderpass: vr.context.MainRenderpass,
		Stride:     renderer.TriangleVertexStride,
		Attributes: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
			{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
			{Location: 2, Binding: 0, Format: vk.FormatR32Uint, Offset: 24},
		},
		DescriptorSetLayouts: layouts,
		Stages: []vk.PipelineShaderStageCreateInfo{
			fillVert.ShaderStageCreateInfo,
			fillFrag.ShaderStageCreateInfo,
		},
		Topology: vk.PrimitiveTopologyTriangleList,
		CullMode: vk.CullModeFrontBit,
	})
	if err != nil {
		return err
	}

	wireVert, err := NewShaderModule(vr.context, "wireframe", "vert", vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer wireVert.Destroy(vr.context)
	wireFrag, err := NewShaderModule(vr.context, "wireframe", "frag", vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer wireFrag.Destroy(vr.context)

	vr.wirePipeline, err = NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
		Renderpass: vr.context.MainRenderpass,
		Stride:     renderer.WireframeVertexStride,
		Attributes: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
			{Location: 1, Binding: 0, Format: vk.FormatR32Uint, Offset: 12},
		},
		DescriptorSetLayouts: layouts,
		Stages: []vk.PipelineShaderStageCreateInfo{
			wireVert.ShaderStageCreateInfo,
			wireFrag.ShaderStageCreateInfo,
		},
		Topology:    vk.PrimitiveTopologyLineList,
		CullMode:    vk.CullModeNone,
		IsWireframe: true,
	})
	return err
}

func (vr *VulkanRenderer) Shutdown() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.
	if vr.fillPipeline != nil {
		vr.fillPipeline.Destroy(vr.context)
	}
	if vr.wirePipeline != nil {
		vr.wirePipeline.Destroy(vr.context)
	}

	for _, g := range vr.draws {
		g.destroy(vr.context)
	}
	vr.draws = nil
	vr.pending = nil
	vr.commitsBySlot = nil

	for _, slot := range vr.context.FrameSlots {
		slot.Destroy(vr.context, vr.context.Device.GraphicsCommandPool)
	}
	vr.context.FrameSlots = nil
	vr.context.ImagesInFlight = nil

	if vr.descriptors != nil {
		vr.descriptors.Destroy(vr.context)
	}

	vr.destroyFramebuffers()

	vr.context.OverlayRenderpass.RenderpassDestroy(vr.context)
	vr.context.MainRenderpass.RenderpassDestroy(vr.context)

	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug && vr.context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
	return nil
}

// Resized records the new drawable extent. The actual swapchain recreation
// is deferred to the next BeginFrame.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++
	core.LogDebug("Vulkan backend resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
}

// LoadGeometry stages a dataset into a host-visible buffer. The device copy
// is recorded at the head of the next frame's command buffer.
func (vr *VulkanRenderer) LoadGeometry(ds *renderer.DataSet) error {
	if _, exists := vr.draws[ds.Role]; exists {
		return fmt.Errorf("geometry for role %s: %w", ds.Role, core.ErrAlreadyLoaded)
	}
	g, err := stageGeometry(vr.context, ds)
	if err != nil {
		return err
	}
	vr.draws[ds.Role] = g
	vr.pending = append(vr.pending, g)
	return nil
}

func (vr *VulkanRenderer) BeginFrame(packet *renderer.Packet) error {
	device := vr.context.Device

	// Recreation was left mid-flight on an earlier tick; finish waiting and
	// sit this one out.
	if vr.context.RecreatingSwapchain {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("device wait idle failed: %s", VulkanResultString(result))
			core.LogError(err.Error())
			return err
		}
		return fmt.Errorf("swapchain is recreating: %w", core.ErrSwapchainBooting)
	}

	// A resize happened since the last tick; rebuild the swapchain first.
	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("device wait idle failed: %s", VulkanResultString(result))
			core.LogError(err.Error())
			return err
		}
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		return fmt.Errorf("swapchain recreated after resize: %w", core.ErrSwapchainBooting)
	}

	slot := vr.context.FrameSlots[vr.context.CurrentFrame]

	// Wait for this slot's previous frame to retire before reusing any of
	// its resources.
	if !slot.InFlight.FenceWait(vr.context, math.MaxUint64) {
		err := fmt.Errorf("in-flight fence wait failure")
		core.LogWarn(err.Error())
		return err
	}

	// The slot's last frame is provably complete: its staged uploads are
	// resident and their staging buffers can go.
	vr.retireCommits(vr.context.CurrentFrame)

	imageIndex, acquire, err := vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, math.MaxUint64, slot.ImageAvailable)
	if err != nil {
		return err
	}
	if acquire == AcquireStale {
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		return fmt.Errorf("stale swapchain on acquire: %w", core.ErrSwapchainBooting)
	}
	vr.context.ImageIndex = imageIndex

	commandBuffer := slot.CommandBuffer
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	// Record pending staged uploads before the render pass so the copies and
	// their barriers precede every draw of this frame.
	for _, g := range vr.pending {
		if err := g.commit(vr.context, commandBuffer); err != nil {
			return err
		}
		vr.commitsBySlot[vr.context.CurrentFrame] = append(vr.commitsBySlot[vr.context.CurrentFrame], g)
	}
	vr.pending = vr.pending[:0]

	// Dynamic state: viewport is flipped so world Y points up on screen.
	viewport := vk.Viewport{
		X:        0.0,
		Y:        float32(vr.context.FramebufferHeight),
		Width:    float32(vr.context.FramebufferWidth),
		Height:   -float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  vr.context.FramebufferWidth,
			Height: vr.context.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	return vr.context.MainRenderpass.RenderpassBegin(
		commandBuffer,
		vr.context.Swapchain.Framebuffers[vr.context.ImageIndex].Handle,
		vr.context.Swapchain.Extent,
		packet.ClearColor)
}

func (vr *VulkanRenderer) DrawScene(packet *renderer.Packet) error {
	slot := vr.context.FrameSlots[vr.context.CurrentFrame]
	commandBuffer := slot.CommandBuffer
	if commandBuffer.State != CommandBufferStateInRenderPass {
		return fmt.Errorf("draw outside the main pass: %w", core.ErrInvalidRecorderState)
	}

	vk.CmdBindDescriptorSets(
		commandBuffer.Handle,
		vk.PipelineBindPointGraphics,
		vr.fillPipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{slot.DescriptorSet},
		0, nil)

	if g, ok := vr.draws[renderer.RolePrimary]; ok && g.dataset.Drawable() {
		vr.fillPipeline.Bind(commandBuffer)
		vr.drawGeometry(commandBuffer, g)
	}

	wantBroadPhase := packet.DrawBroadPhase
	wantBoundingBoxes := packet.DrawBoundingBoxes
	if wantBroadPhase || wantBoundingBoxes {
		vr.wirePipeline.Bind(commandBuffer)
		if g, ok := vr.draws[renderer.RoleBroadPhase]; ok && wantBroadPhase && g.dataset.Drawable() {
			vr.drawGeometry(commandBuffer, g)
		}
		if g, ok := vr.draws[renderer.RoleBoundingBox]; ok && wantBoundingBoxes && g.dataset.Drawable() {
			vr.drawGeometry(commandBuffer, g)
		}
	}

	return nil
}

func (vr *VulkanRenderer) drawGeometry(commandBuffer *VulkanCommandBuffer, g *vulkanGeometry) {
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{g.deviceLocal.Handle}, []vk.DeviceSize{0})
	vk.CmdDraw(commandBuffer.Handle, g.dataset.ElementCount, 1, 0, 0)
}

func (vr *VulkanRenderer) EndFrame(packet *renderer.Packet) error {
	slot := vr.context.FrameSlots[vr.context.CurrentFrame]
	commandBuffer := slot.CommandBuffer

	if err := vr.context.MainRenderpass.RenderpassEnd(commandBuffer); err != nil {
		return err
	}
	if err := commandBuffer.End(); err != nil {
		return err
	}

	// Overlay pass: always recorded, even empty, so the image reaches
	// present layout.
	overlayBuffer := slot.OverlayCommandBuffer
	overlayBuffer.Reset()
	if err := overlayBuffer.Begin(false, false, false); err != nil {
		return err
	}
	if err := vr.context.OverlayRenderpass.RenderpassBegin(
		overlayBuffer,
		vr.context.Swapchain.OverlayFramebuffers[vr.context.ImageIndex].Handle,
		vr.context.Swapchain.Extent,
		kmath.Vec4{}); err != nil {
		return err
	}
	if vr.overlay != nil {
		vr.overlay.RecordOverlay(overlayBuffer.Handle, vr.context.ImageIndex, vr.context.Swapchain.Extent)
	}
	if err := vr.context.OverlayRenderpass.RenderpassEnd(overlayBuffer); err != nil {
		return err
	}
	if err := overlayBuffer.End(); err != nil {
		return err
	}

	// Snapshot this frame's uniforms into the slot's mapped buffer. The
	// fence wait in BeginFrame guarantees the GPU is done reading it.
	uniforms := NewUniformObject(packet)
	vk.Memcopy(slot.UniformBuffer.Mapped, uniforms.Bytes())

	// Another frame may still be rendering into this image; let it finish.
	if vr.context.ImagesInFlight[vr.context.ImageIndex] != nil {
		vr.context.ImagesInFlight[vr.context.ImageIndex].FenceWait(vr.context, math.MaxUint64)
	}
	vr.context.ImagesInFlight[vr.context.ImageIndex] = slot.InFlight

	if err := slot.InFlight.FenceReset(vr.context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 2,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer.Handle, overlayBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.RenderFinished},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{slot.ImageAvailable},
		// The acquired image is only needed once color output begins;
		// earlier stages are free to run.
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
	}

	if result := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, slot.InFlight.Handle); result != vk.Success {
		err := fmt.Errorf("queue submit failed: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return err
	}
	commandBuffer.UpdateSubmitted()
	overlayBuffer.UpdateSubmitted()

	present, err := vr.context.Swapchain.SwapchainPresent(
		vr.context,
		vr.context.Device.PresentQueue,
		slot.RenderFinished,
		vr.context.ImageIndex)
	if err != nil {
		return err
	}
	if present != PresentOK {
		// The image was consumed either way; recreate before the next
		// acquire touches the stale chain.
		core.LogDebug("swapchain %s on present, recreating",
			map[PresentResult]string{PresentSuboptimal: "suboptimal", PresentStale: "stale"}[present])
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
	}

	vr.context.FrameNumber++
	vr.context.CurrentFrame = (vr.context.CurrentFrame + 1) % uint32(len(vr.context.FrameSlots))
	return nil
}

// retireCommits releases the staging halves of commits carried by a frame
// slot whose fence has been observed signaled.
func (vr *VulkanRenderer) retireCommits(slotIndex uint32) {
	commits := vr.commitsBySlot[slotIndex]
	if len(commits) == 0 {
		return
	}
	for _, g := range commits {
		g.retire(vr.context)
	}
	vr.commitsBySlot[slotIndex] = nil
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	swapchain := vr.context.Swapchain
	swapchain.Framebuffers = make([]*VulkanFramebuffer, swapchain.ImageCount)
	swapchain.OverlayFramebuffers = make([]*VulkanFramebuffer, swapchain.ImageCount)

	for i := 0; i < int(swapchain.ImageCount); i++ {
		fb, err := FramebufferCreate(
			vr.context,
			vr.context.MainRenderpass,
			vr.context.FramebufferWidth,
			vr.context.FramebufferHeight,
			[]vk.ImageView{swapchain.Views[i], swapchain.DepthAttachment.View})
		if err != nil {
			return err
		}
		swapchain.Framebuffers[i] = fb

		ofb, err := FramebufferCreate(
			vr.context,
			vr.context.OverlayRenderpass,
			vr.context.FramebufferWidth,
			vr.context.FramebufferHeight,
			[]vk.ImageView{swapchain.Views[i]})
		if err != nil {
			return err
		}
		swapchain.OverlayFramebuffers[i] = ofb
	}
	return nil
}

func (vr *VulkanRenderer) destroyFramebuffers() {
	swapchain := vr.context.Swapchain
	for i := range swapchain.Framebuffers {
		if swapchain.Framebuffers[i] != nil {
			swapchain.Framebuffers[i].Destroy(vr.context)
		}
	}
	for i := range swapchain.OverlayFramebuffers {
		if swapchain.OverlayFramebuffers[i] != nil {
			swapchain.OverlayFramebuffers[i].Destroy(vr.context)
		}
	}
	swapchain.Framebuffers = nil
	swapchain.OverlayFramebuffers = nil
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called while already recreating, booting.")
		return nil
	}

	// A minimized window has a degenerate extent; there is nothing to draw
	// to, so block on platform events until it comes back.
	width, height := vr.platform.Extent()
	for width == 0 || height == 0 {
		vr.platform.WaitEvents()
		width, height = vr.platform.Extent()
	}
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height

	vr.context.RecreatingSwapchain = true
	defer func() { vr.context.RecreatingSwapchain = false }()

	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Everything in flight has drained.
	for i := range vr.context.ImagesInFlight {
		vr.context.ImagesInFlight[i] = nil
	}
	for i := range vr.commitsBySlot {
		vr.retireCommits(uint32(i))
	}

	if err := DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, vr.context.Device.SwapchainSupport); err != nil {
		return err
	}
	if !DeviceDetectDepthFormat(vr.context.Device) {
		err := fmt.Errorf("failed to detect depth format during recreation: %w", core.ErrUnsupported)
		core.LogError(err.Error())
		return err
	}

	vr.destroyFramebuffers()

	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height
	vr.context.ImagesInFlight = make([]*VulkanFence, sc.ImageCount)

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}

	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	core.LogInfo("Swapchain recreated: %dx%d.", vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] %s", pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] %s", pLayerPrefix, pMessage)
	default:
		core.LogDebug("[%s] %s", pLayerPrefix, pMessage)
	}
	return vk.Bool32(vk.False)
}
