package vulkan

import (
	vk "github.com/goki/vulkan"
)

// VulkanContext carries every handle shared across the backend's subsystems.
// A single context is owned by the VulkanRenderer and threaded through all
// creation and teardown paths.
type VulkanContext struct {
	FramebufferWidth  uint32
	FramebufferHeight uint32

	// Generation counters for the drawable extent. When they diverge, a
	// resize happened and the swapchain must be recreated before the next
	// acquire.
	FramebufferSizeGeneration     uint64
	FramebufferSizeLastGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device    *VulkanDevice
	Swapchain *VulkanSwapchain

	MainRenderpass    *VulkanRenderpass
	OverlayRenderpass *VulkanRenderpass

	// One slot per frame in flight; the scheduler cycles CurrentFrame
	// through them.
	FrameSlots   []*FrameSlot
	CurrentFrame uint32

	// Fences of the frames currently rendering into each swapchain image,
	// indexed by image index. Entries are borrowed from FrameSlots, never
	// owned here.
	ImagesInFlight []*VulkanFence
	ImageIndex     uint32

	RecreatingSwapchain bool

	// Monotonic count of frames whose submission was recorded. Used to tag
	// staged-upload commits with the frame that carries them.
	FrameNumber uint64
}

// FindMemoryIndex returns the index of a device memory type matching the
// filter and property flags, or -1 when none qualifies.
func (ctx *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	memoryProperties := vk.PhysicalDeviceMemoryProperties{}
	vk.GetPhysicalDeviceMemoryProperties(ctx.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if typeFilter&(1<<i) != 0 &&
			(memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	return -1
}
