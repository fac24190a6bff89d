package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/trigon/engine/core"
	kmath "github.com/spaghettifunk/trigon/engine/math"
)

// AcquireResult is the status of an image acquire.
type AcquireResult uint8

const (
	AcquireOK AcquireResult = iota
	// AcquireStale means the swapchain no longer matches the surface. The
	// caller must recreate and abort the tick; no image was acquired.
	AcquireStale
)

// PresentResult is the status of a present: the image was consumed in every
// non-error case, but a non-OK status obliges the caller to recreate before
// the next acquire.
type PresentResult uint8

const (
	PresentOK PresentResult = iota
	PresentSuboptimal
	PresentStale
)

type VulkanSwapchain struct {
	ImageFormat       vk.SurfaceFormat
	MaxFramesInFlight uint8
	Handle            vk.Swapchain
	Extent            vk.Extent2D
	ImageCount        uint32
	Images            []vk.Image
	Views             []vk.ImageView

	DepthAttachment *VulkanImage

	// Framebuffers for the clearing main pass and the loading overlay pass,
	// one of each per swapchain image.
	Framebuffers        []*VulkanFramebuffer
	OverlayFramebuffers []*VulkanFramebuffer
}

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

func SwapchainCreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	return createSwapchain(context, width, height, vk.NullSwapchain)
}

// SwapchainRecreate builds a replacement swapchain, handing the retiring
// handle to the driver so in-flight presents can drain, then destroys the
// old resources once the device is idle.
func (vs *VulkanSwapchain) SwapchainRecreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	replacement, err := createSwapchain(context, width, height, vs.Handle)
	if err != nil {
		return nil, err
	}
	vs.destroySwapchain(context)
	return replacement, nil
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vs.destroySwapchain(context)
}

// SwapchainAcquireNextImageIndex asks for the next presentable image,
// signaling the given semaphore once it is ready. A stale surface is
// reported as a status, not an error.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore) (uint32, AcquireResult, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNS, imageAvailableSemaphore, vk.NullFence, &imageIndex)

	switch result {
	case vk.Success, vk.Suboptimal:
		// A suboptimal acquire still delivered a usable image; present will
		// report the mismatch and trigger the recreation.
		return imageIndex, AcquireOK, nil
	case vk.ErrorOutOfDate:
		return 0, AcquireStale, nil
	default:
		err := fmt.Errorf("failed to acquire swapchain image: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return 0, AcquireOK, err
	}
}

// SwapchainPresent returns the image to the swapchain for presentation. The
// frame index is not advanced here; that is the scheduler's job.
func (vs *VulkanSwapchain) SwapchainPresent(context *VulkanContext, presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) (PresentResult, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	result := vk.QueuePresent(presentQueue, &presentInfo)
	switch result {
	case vk.Success:
		return PresentOK, nil
	case vk.Suboptimal:
		return PresentSuboptimal, nil
	case vk.ErrorOutOfDate:
		return PresentStale, nil
	default:
		err := fmt.Errorf("failed to present swapchain image: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return PresentOK, err
	}
}

func createSwapchain(context *VulkanContext, width, height uint32, oldSwapchain vk.Swapchain) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{
		MaxFramesInFlight: 2,
	}

	swapchainExtent := vk.Extent2D{
		Width:  width,
		Height: height,
	}

	// Choose a swap surface format.
	found := false
	for i := 0; i < int(context.Device.SwapchainSupport.FormatCount); i++ {
		format := context.Device.SwapchainSupport.Formats[i]
		if format.Format == vk.FormatB8g8r8a8Unorm &&
			format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			swapchain.ImageFormat = format
			found = true
			break
		}
	}
	if !found {
		swapchain.ImageFormat = context.Device.SwapchainSupport.Formats[0]
	}

	presentMode := vk.PresentModeFifo
	for i := 0; i < int(context.Device.SwapchainSupport.PresentModeCount); i++ {
		mode := context.Device.SwapchainSupport.PresentModes[i]
		if mode == vk.PresentModeMailbox {
			presentMode = mode
			break
		}
	}

	if context.Device.SwapchainSupport.Capabilities.CurrentExtent.Width != math.MaxUint32 {
		swapchainExtent = context.Device.SwapchainSupport.Capabilities.CurrentExtent
	}

	// Clamp to the range allowed by the GPU.
	min := context.Device.SwapchainSupport.Capabilities.MinImageExtent
	max := context.Device.SwapchainSupport.Capabilities.MaxImageExtent
	swapchainExtent.Width = kmath.Clamp(swapchainExtent.Width, min.Width, max.Width)
	swapchainExtent.Height = kmath.Clamp(swapchainExtent.Height, min.Height, max.Height)
	swapchain.Extent = swapchainExtent

	imageCount := context.Device.SwapchainSupport.Capabilities.MinImageCount + 1
	if context.Device.SwapchainSupport.Capabilities.MaxImageCount > 0 && imageCount > context.Device.SwapchainSupport.Capabilities.MaxImageCount {
		imageCount = context.Device.SwapchainSupport.Capabilities.MaxImageCount
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
	}

	if context.Device.Mode == QueueModeSplit {
		queueFamilyIndices := []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = queueFamilyIndices
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	swapchainCreateInfo.PreTransform = context.Device.SwapchainSupport.Capabilities.CurrentTransform
	swapchainCreateInfo.CompositeAlpha = vk.CompositeAlphaOpaqueBit
	swapchainCreateInfo.PresentMode = presentMode
	swapchainCreateInfo.Clipped = vk.True
	swapchainCreateInfo.OldSwapchain = oldSwapchain

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		err := fmt.Errorf("failed to create swapchain: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Handle = swapchainHandle

	// Images
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	// Views
	for i := 0; i < int(swapchain.ImageCount); i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			err := fmt.Errorf("failed to create swapchain image view: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return nil, err
		}
	}

	// Depth resources
	if !DeviceDetectDepthFormat(context.Device) {
		context.Device.DepthFormat = vk.FormatUndefined
		err := fmt.Errorf("failed to find a supported depth format: %w", core.ErrUnsupported)
		core.LogError(err.Error())
		return nil, err
	}

	depthAttachment, err := ImageCreate(
		context,
		vk.ImageType2d,
		swapchainExtent.Width,
		swapchainExtent.Height,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return nil, err
	}
	swapchain.DepthAttachment = depthAttachment

	core.LogInfo("Swapchain created: %dx%d, %d images.", swapchainExtent.Width, swapchainExtent.Height, swapchain.ImageCount)
	return swapchain, nil
}

func (vs *VulkanSwapchain) destroySwapchain(context *VulkanContext) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)
	vs.DepthAttachment.ImageDestroy(context)

	// Only destroy the views, not the images; those are owned by the
	// swapchain and go away with it.
	for i := 0; i < int(vs.ImageCount); i++ {
		vk.DestroyImageView(context.Device.LogicalDevice, vs.Views[i], context.Allocator)
	}

	vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
	vs.Handle = vk.NullSwapchain
}
