package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/trigon/engine/core"
)

// FrameSlot bundles the per-frame-in-flight resources: the acquire and
// render-complete semaphores, the in-flight fence, the two command
// recordings of a tick and the persistently mapped uniform buffer.
type FrameSlot struct {
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	InFlight       *VulkanFence

	CommandBuffer        *VulkanCommandBuffer
	OverlayCommandBuffer *VulkanCommandBuffer

	UniformBuffer *VulkanBuffer
	DescriptorSet vk.DescriptorSet
}

// NewFrameSlot creates one slot. The fence starts signaled so the slot's
// first tick does not block on a frame that never ran.
func NewFrameSlot(context *VulkanContext, pool vk.CommandPool) (*FrameSlot, error) {
	slot := &FrameSlot{}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &slot.ImageAvailable); res != vk.Success {
		err := fmt.Errorf("failed to create image-available semaphore: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &slot.RenderFinished); res != vk.Success {
		err := fmt.Errorf("failed to create render-finished semaphore: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	fence, err := NewFence(context, true)
	if err != nil {
		return nil, err
	}
	slot.InFlight = fence

	cb, err := NewVulkanCommandBuffer(context, pool, true)
	if err != nil {
		return nil, err
	}
	slot.CommandBuffer = cb

	ocb, err := NewVulkanCommandBuffer(context, pool, true)
	if err != nil {
		return nil, err
	}
	slot.OverlayCommandBuffer = ocb

	ubo, err := NewVulkanBuffer(
		context,
		vk.DeviceSize(UniformObjectSize),
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit),
		true,
	)
	if err != nil {
		return nil, err
	}
	slot.UniformBuffer = ubo

	return slot, nil
}

func (fs *FrameSlot) Destroy(context *VulkanContext, pool vk.CommandPool) {
	if fs.ImageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, fs.ImageAvailable, context.Allocator)
		fs.ImageAvailable = vk.NullSemaphore
	}
	if fs.RenderFinished != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, fs.RenderFinished, context.Allocator)
		fs.RenderFinished = vk.NullSemaphore
	}
	if fs.InFlight != nil {
		fs.InFlight.FenceDestroy(context)
		fs.InFlight = nil
	}
	if fs.CommandBuffer != nil && fs.CommandBuffer.Handle != nil {
		fs.CommandBuffer.Free(context, pool)
		fs.CommandBuffer = nil
	}
	if fs.OverlayCommandBuffer != nil && fs.OverlayCommandBuffer.Handle != nil {
		fs.OverlayCommandBuffer.Free(context, pool)
		fs.OverlayCommandBuffer = nil
	}
	if fs.UniformBuffer != nil {
		fs.UniformBuffer.Destroy(context)
		fs.UniformBuffer = nil
	}
	// The descriptor set is returned with its pool.
	fs.DescriptorSet = vk.NullDescriptorSet
}
