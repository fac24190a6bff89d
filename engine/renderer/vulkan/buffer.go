package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/trigon/engine/core"
)

// VulkanBuffer is a buffer plus its backing allocation. Host-visible buffers
// created with persistentMap keep their mapping for the buffer's lifetime.
type VulkanBuffer struct {
	Handle    vk.Buffer
	Memory    vk.DeviceMemory
	TotalSize vk.DeviceSize
	Mapped    unsafe.Pointer
}

func NewVulkanBuffer(
	context *VulkanContext,
	size vk.DeviceSize,
	usage vk.BufferUsageFlags,
	memoryFlags vk.MemoryPropertyFlags,
	persistentMap bool,
) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		TotalSize: size,
	}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.Handle = handle

	memoryRequirements := vk.MemoryRequirements{}
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if memoryType < 0 {
		err := fmt.Errorf("required memory type not found for buffer")
		core.LogError(err.Error())
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		err := fmt.Errorf("failed to allocate buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	if persistentMap {
		var mapped unsafe.Pointer
		if res := vk.MapMemory(context.Device.LogicalDevice, buffer.Memory, 0, size, 0, &mapped); res != vk.Success {
			err := fmt.Errorf("failed to map buffer memory: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return nil, err
		}
		buffer.Mapped = mapped
	}

	return buffer, nil
}

// LoadData copies host bytes into the buffer, mapping transiently unless the
// buffer is persistently mapped.
func (b *VulkanBuffer) LoadData(context *VulkanContext, data []byte) error {
	if b.Mapped != nil {
		vk.Memcopy(b.Mapped, data)
		return nil
	}

	var mapped unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, vk.DeviceSize(len(data)), 0, &mapped); res != vk.Success {
		err := fmt.Errorf("failed to map buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	return nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	if b.Mapped != nil {
		vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
		b.Mapped = nil
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = vk.NullBuffer
	}
	b.TotalSize = 0
}
