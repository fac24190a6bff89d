package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/trigon/engine/core"
)

// VulkanDescriptors owns the uniform descriptor machinery: one set layout
// shared by both pipelines and one set per frame slot pointing at that
// slot's uniform buffer.
type VulkanDescriptors struct {
	Pool      vk.DescriptorPool
	SetLayout vk.DescriptorSetLayout
}

func NewDescriptors(context *VulkanContext, slotCount uint32) (*VulkanDescriptors, error) {
	d := &VulkanDescriptors{}

	binding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}
	binding.Deref()

	layoutCreateInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	layoutCreateInfo.Deref()

	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutCreateInfo, context.Allocator, &layout); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	d.SetLayout = layout

	poolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: slotCount,
	}
	poolSize.Deref()

	poolCreateInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       slotCount,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{poolSize},
	}
	poolCreateInfo.Deref()

	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolCreateInfo, context.Allocator, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor pool: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	d.Pool = pool

	return d, nil
}

// AllocateSlotSet allocates a descriptor set for a frame slot and binds the
// slot's uniform buffer to it.
func (d *VulkanDescriptors) AllocateSlotSet(context *VulkanContext, slot *FrameSlot) error {
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{d.SetLayout},
	}

	var set vk.DescriptorSet
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &set); res != vk.Success {
		err := fmt.Errorf("failed to allocate descriptor set: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	slot.DescriptorSet = set

	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: slot.UniformBuffer.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(UniformObjectSize),
	}
	bufferInfo.Deref()

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          slot.DescriptorSet,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	write.Deref()

	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	return nil
}

func (d *VulkanDescriptors) Destroy(context *VulkanContext) {
	if d.Pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, d.Pool, context.Allocator)
		d.Pool = vk.NullDescriptorPool
	}
	if d.SetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.SetLayout, context.Allocator)
		d.SetLayout = vk.NullDescriptorSetLayout
	}
}
