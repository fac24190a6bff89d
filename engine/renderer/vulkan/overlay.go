package vulkan

import (
	vk "github.com/goki/vulkan"
)

// OverlayRecorder lets a collaborator (debug UI, text, readouts) record into
// the overlay pass after the scene is drawn. The pass is already open on the
// supplied command buffer; the recorder must not begin or end passes itself.
type OverlayRecorder interface {
	RecordOverlay(commandBuffer vk.CommandBuffer, imageIndex uint32, extent vk.Extent2D)
}

// SetOverlay installs the overlay recorder. Passing nil leaves the overlay
// pass empty; it still runs so the image reaches its present layout.
func (vr *VulkanRenderer) SetOverlay(recorder OverlayRecorder) {
	vr.overlay = recorder
}
