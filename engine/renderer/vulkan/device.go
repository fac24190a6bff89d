package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/trigon/engine/core"
)

// QueueMode tags how presentation is wired to the device queues.
type QueueMode uint8

const (
	// QueueModeShared means one family serves both graphics and present.
	QueueModeShared QueueMode = iota
	// QueueModeSplit means graphics and present come from distinct families
	// and the swapchain images are shared concurrently between them.
	QueueModeSplit
)

func (m QueueMode) String() string {
	if m == QueueModeSplit {
		return "split"
	}
	return "shared"
}

type VulkanDevice struct {
	PhysicalDevice   vk.PhysicalDevice
	LogicalDevice    vk.Device
	SwapchainSupport *VulkanSwapchainSupportInfo

	Mode               QueueMode
	GraphicsQueueIndex int32
	PresentQueueIndex  int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
}

type vulkanPhysicalDeviceRequirements struct {
	Graphics             bool
	Present              bool
	DeviceExtensionNames []string
	DiscreteGPU          bool
}

type vulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex int32
	PresentFamilyIndex  int32
}

// DeviceCreate selects a physical device that can render and present to the
// context's surface, then creates the logical device, queues and the graphics
// command pool. A host with no suitable adapter fails with core.ErrUnsupported.
func DeviceCreate(context *VulkanContext) error {
	if err := selectPhysicalDevice(context); err != nil {
		return err
	}

	device := context.Device
	core.LogInfo("Creating logical device...")

	// Do not create additional queues for shared indices.
	if device.GraphicsQueueIndex == device.PresentQueueIndex {
		device.Mode = QueueModeShared
	} else {
		device.Mode = QueueModeSplit
	}

	indices := []uint32{uint32(device.GraphicsQueueIndex)}
	if device.Mode == QueueModeSplit {
		indices = append(indices, uint32(device.PresentQueueIndex))
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: indices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if devicePortabilityRequired(device.PhysicalDevice) {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	if res := vk.CreateDevice(
		device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&device.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("vkCreateDevice failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Logical device created, %s queue mode.", device.Mode)

	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.GraphicsQueueIndex), 0, &device.GraphicsQueue)
	if device.Mode == QueueModeSplit {
		vk.GetDeviceQueue(device.LogicalDevice, uint32(device.PresentQueueIndex), 0, &device.PresentQueue)
	} else {
		device.PresentQueue = device.GraphicsQueue
	}
	core.LogInfo("Queues obtained.")

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(
		device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&device.GraphicsCommandPool); res != vk.Success {
		err := fmt.Errorf("vkCreateCommandPool failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	device := context.Device

	device.GraphicsQueue = nil
	device.PresentQueue = nil

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(device.LogicalDevice, device.GraphicsCommandPool, context.Allocator)

	core.LogInfo("Destroying logical device...")
	if device.LogicalDevice != nil {
		vk.DestroyDevice(device.LogicalDevice, context.Allocator)
		device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	device.PhysicalDevice = nil
	device.SwapchainSupport = nil
	device.GraphicsQueueIndex = -1
	device.PresentQueueIndex = -1
}

// DeviceQuerySwapchainSupport refreshes the surface capability, format and
// present mode snapshot for the given physical device.
func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *VulkanSwapchainSupportInfo) error {
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		err := fmt.Errorf("failed to query surface capabilities: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	supportInfo.Capabilities.Deref()

	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to query surface format count: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if supportInfo.FormatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, supportInfo.FormatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, supportInfo.Formats); res != vk.Success {
			err := fmt.Errorf("failed to query surface formats: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return err
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to query present mode count: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if supportInfo.PresentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, supportInfo.PresentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, supportInfo.PresentModes); res != vk.Success {
			err := fmt.Errorf("failed to query present modes: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

// DeviceDetectDepthFormat picks the first depth format the adapter supports
// as a depth-stencil attachment.
func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureDepthStencilAttachmentBit
	for _, candidate := range candidates {
		properties := vk.FormatProperties{}
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, candidate, &properties)
		properties.Deref()
		if vk.FormatFeatureFlagBits(properties.LinearTilingFeatures)&flags == flags {
			device.DepthFormat = candidate
			return true
		} else if vk.FormatFeatureFlagBits(properties.OptimalTilingFeatures)&flags == flags {
			device.DepthFormat = candidate
			return true
		}
	}
	return false
}

func selectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if physicalDeviceCount == 0 {
		err := fmt.Errorf("no devices which support Vulkan were found: %w", core.ErrUnsupported)
		core.LogError(err.Error())
		return err
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}

	requirements := vulkanPhysicalDeviceRequirements{
		Graphics:             true,
		Present:              true,
		DiscreteGPU:          false,
		DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
	}

	for i := range physicalDevices {
		properties := vk.PhysicalDeviceProperties{}
		vk.GetPhysicalDeviceProperties(physicalDevices[i], &properties)
		properties.Deref()

		features := vk.PhysicalDeviceFeatures{}
		vk.GetPhysicalDeviceFeatures(physicalDevices[i], &features)

		memory := vk.PhysicalDeviceMemoryProperties{}
		vk.GetPhysicalDeviceMemoryProperties(physicalDevices[i], &memory)

		queueInfo := vulkanPhysicalDeviceQueueFamilyInfo{}
		support := &VulkanSwapchainSupportInfo{}
		if !physicalDeviceMeetsRequirements(physicalDevices[i], context.Surface, &requirements, &queueInfo, support) {
			continue
		}

		core.LogInfo("Selected device: '%s'.", vk.ToString(properties.DeviceName[:]))
		switch properties.DeviceType {
		case vk.PhysicalDeviceTypeIntegratedGpu:
			core.LogInfo("GPU type is Integrated.")
		case vk.PhysicalDeviceTypeDiscreteGpu:
			core.LogInfo("GPU type is Discrete.")
		case vk.PhysicalDeviceTypeVirtualGpu:
			core.LogInfo("GPU type is Virtual.")
		case vk.PhysicalDeviceTypeCpu:
			core.LogInfo("GPU type is CPU.")
		default:
			core.LogInfo("GPU type is Unknown.")
		}
		core.LogInfo(
			"Vulkan API version: %d.%d.%d",
			vk.Version.Major(vk.Version(properties.ApiVersion)),
			vk.Version.Minor(vk.Version(properties.ApiVersion)),
			vk.Version.Patch(vk.Version(properties.ApiVersion)),
		)

		context.Device.PhysicalDevice = physicalDevices[i]
		context.Device.GraphicsQueueIndex = queueInfo.GraphicsFamilyIndex
		context.Device.PresentQueueIndex = queueInfo.PresentFamilyIndex
		context.Device.SwapchainSupport = support

		context.Device.Properties = properties
		context.Device.Features = features
		context.Device.Memory = memory
		break
	}

	if context.Device.PhysicalDevice == nil {
		err := fmt.Errorf("no physical device meets the requirements: %w", core.ErrUnsupported)
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Physical device selected.")
	return nil
}

func physicalDeviceMeetsRequirements(
	device vk.PhysicalDevice,
	surface vk.Surface,
	requirements *vulkanPhysicalDeviceRequirements,
	outQueueInfo *vulkanPhysicalDeviceQueueFamilyInfo,
	outSwapchainSupport *VulkanSwapchainSupportInfo,
) bool {
	outQueueInfo.GraphicsFamilyIndex = -1
	outQueueInfo.PresentFamilyIndex = -1

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()

		if outQueueInfo.GraphicsFamilyIndex < 0 &&
			vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit > 0 {
			outQueueInfo.GraphicsFamilyIndex = int32(i)
		}

		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, i, surface, &supportsPresent); res != vk.Success {
			continue
		}
		if supportsPresent == vk.True {
			// Prefer the family that also does graphics; otherwise keep the
			// first one that can present.
			if outQueueInfo.PresentFamilyIndex < 0 || int32(i) == outQueueInfo.GraphicsFamilyIndex {
				outQueueInfo.PresentFamilyIndex = int32(i)
			}
		}
	}

	if requirements.Graphics && outQueueInfo.GraphicsFamilyIndex < 0 {
		return false
	}
	if requirements.Present && outQueueInfo.PresentFamilyIndex < 0 {
		return false
	}

	if !deviceSupportsExtensions(device, requirements.DeviceExtensionNames) {
		return false
	}

	if err := DeviceQuerySwapchainSupport(device, surface, outSwapchainSupport); err != nil {
		return false
	}
	if outSwapchainSupport.FormatCount == 0 || outSwapchainSupport.PresentModeCount == 0 {
		core.LogInfo("Device lacks swapchain support, skipping.")
		return false
	}

	return true
}

func deviceSupportsExtensions(device vk.PhysicalDevice, required []string) bool {
	var availableExtensionCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, nil); res != vk.Success {
		return false
	}
	availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, availableExtensions); res != vk.Success {
		return false
	}

	for _, name := range required {
		found := false
		for i := range availableExtensions {
			availableExtensions[i].Deref()
			if vk.ToString(availableExtensions[i].ExtensionName[:]) == name {
				found = true
				break
			}
		}
		if !found {
			core.LogInfo("Device is missing required extension '%s', skipping.", name)
			return false
		}
	}
	return true
}

func devicePortabilityRequired(device vk.PhysicalDevice) bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	var availableExtensionCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, nil); res != vk.Success {
		return false
	}
	availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, availableExtensions); res != vk.Success {
		return false
	}
	for i := range availableExtensions {
		availableExtensions[i].Deref()
		if vk.ToString(availableExtensions[i].ExtensionName[:]) == "VK_KHR_portability_subset" {
			return true
		}
	}
	return false
}
