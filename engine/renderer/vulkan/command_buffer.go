package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/trigon/engine/core"
)

type VulkanCommandBufferState int

const (
	CommandBufferStateReady VulkanCommandBufferState = iota
	CommandBufferStateRecording
	CommandBufferStateInRenderPass
	CommandBufferStateRecordingEnded
	CommandBufferStateSubmitted
	CommandBufferStateNotAllocated
)

// VulkanCommandBuffer wraps a command buffer handle together with its
// recording state. Begin/End transitions are guarded: calling them out of
// order is a contract violation surfaced as core.ErrInvalidRecorderState.
type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	State  VulkanCommandBufferState
}

func NewVulkanCommandBuffer(context *VulkanContext, pool vk.CommandPool, isPrimary bool) (*VulkanCommandBuffer, error) {
	commandBuffer := &VulkanCommandBuffer{
		State: CommandBufferStateNotAllocated,
	}

	level := vk.CommandBufferLevelPrimary
	if !isPrimary {
		level = vk.CommandBufferLevelSecondary
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}

	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
		err := fmt.Errorf("failed to allocate command buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	commandBuffer.Handle = handles[0]
	commandBuffer.State = CommandBufferStateReady

	return commandBuffer, nil
}

func (v *VulkanCommandBuffer) Free(context *VulkanContext, pool vk.CommandPool) {
	vk.FreeCommandBuffers(context.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{v.Handle})
	v.Handle = nil
	v.State = CommandBufferStateNotAllocated
}

// Begin opens recording. Only a Ready buffer may begin; the pool is created
// with the reset bit so a Reset must precede re-recording.
func (v *VulkanCommandBuffer) Begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	if v.State != CommandBufferStateReady {
		return fmt.Errorf("begin on a command buffer in state %d: %w", v.State, core.ErrInvalidRecorderState)
	}

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if res := vk.BeginCommandBuffer(v.Handle, &beginInfo); res != vk.Success {
		err := fmt.Errorf("failed to begin command buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	v.State = CommandBufferStateRecording
	return nil
}

// End closes recording. A buffer still inside a render pass cannot end.
func (v *VulkanCommandBuffer) End() error {
	if v.State != CommandBufferStateRecording {
		return fmt.Errorf("end on a command buffer in state %d: %w", v.State, core.ErrInvalidRecorderState)
	}
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		err := fmt.Errorf("failed to end command buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	v.State = CommandBufferStateRecordingEnded
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = CommandBufferStateSubmitted
}

// Reset returns the buffer to Ready and clears its recorded contents.
func (v *VulkanCommandBuffer) Reset() {
	vk.ResetCommandBuffer(v.Handle, 0)
	v.State = CommandBufferStateReady
}
