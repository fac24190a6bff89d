package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// vulkanGeometry is the device side of one staged dataset: a host-visible
// staging copy, the device-local vertex buffer, and the frame slot whose
// retirement allows the staging half to be freed.
type vulkanGeometry struct {
	dataset *renderer.DataSet

	staging     *VulkanBuffer
	deviceLocal *VulkanBuffer

	// Frame slot index that carried the commit recording, -1 until then.
	commitSlot int32
}

// stageGeometry allocates the host-visible staging buffer and fills it with
// the dataset bytes. The dataset must be in the Staged state already.
func stageGeometry(context *VulkanContext, ds *renderer.DataSet) (*vulkanGeometry, error) {
	if ds.Status != renderer.DataSetStaged {
		return nil, fmt.Errorf("dataset %s is %d, not staged: %w", ds.Role, ds.Status, core.ErrAlreadyLoaded)
	}

	staging, err := NewVulkanBuffer(
		context,
		vk.DeviceSize(len(ds.Bytes)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit),
		false,
	)
	if err != nil {
		return nil, err
	}
	if err := staging.LoadData(context, ds.Bytes); err != nil {
		staging.Destroy(context)
		return nil, err
	}

	return &vulkanGeometry{
		dataset:    ds,
		staging:    staging,
		commitSlot: -1,
	}, nil
}

// commit records the device-local copy and the barrier that orders the
// transfer write before any vertex attribute read. It runs at most once per
// geometry, outside a render pass, before the frame's draws.
func (g *vulkanGeometry) commit(context *VulkanContext, cb *VulkanCommandBuffer) error {
	if g.dataset.Status != renderer.DataSetStaged {
		return fmt.Errorf("commit of dataset %s in state %d: %w", g.dataset.Role, g.dataset.Status, core.ErrAlreadyLoaded)
	}
	if cb.State != CommandBufferStateRecording {
		return fmt.Errorf("commit outside a recording: %w", core.ErrInvalidRecorderState)
	}

	deviceLocal, err := NewVulkanBuffer(
		context,
		g.staging.TotalSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		false,
	)
	if err != nil {
		return err
	}
	g.deviceLocal = deviceLocal

	copyRegion := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      g.staging.TotalSize,
	}
	vk.CmdCopyBuffer(cb.Handle, g.staging.Handle, g.deviceLocal.Handle, 1, []vk.BufferCopy{copyRegion})

	// The draws later in this same recording read the vertex stream, so the
	// copy must be visible before vertex input runs.
	barrier := vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccessMask:       vk.AccessFlags(vk.AccessVertexAttributeReadBit),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              g.deviceLocal.Handle,
		Offset:              0,
		Size:                vk.DeviceSize(vk.WholeSize),
	}
	barrier.Deref()

	vk.CmdPipelineBarrier(
		cb.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageVertexInputBit),
		0,
		0, nil,
		1, []vk.BufferMemoryBarrier{barrier},
		0, nil)

	g.dataset.Status = renderer.DataSetCommitted
	g.commitSlot = int32(context.CurrentFrame)

	core.LogDebug("dataset %s (%s) committed: %d bytes on frame %d",
		g.dataset.Role, g.dataset.ID, g.staging.TotalSize, context.FrameNumber)
	return nil
}

// retire frees the staging buffer once the committing frame has been
// observed complete and marks the dataset resident.
func (g *vulkanGeometry) retire(context *VulkanContext) {
	if g.staging != nil {
		g.staging.Destroy(context)
		g.staging = nil
	}
	g.dataset.Status = renderer.DataSetResident
	g.commitSlot = -1
	core.LogDebug("dataset %s (%s) resident, staging released", g.dataset.Role, g.dataset.ID)
}

func (g *vulkanGeometry) destroy(context *VulkanContext) {
	if g.staging != nil {
		g.staging.Destroy(context)
		g.staging = nil
	}
	if g.deviceLocal != nil {
		g.deviceLocal.Destroy(context)
		g.deviceLocal = nil
	}
}
