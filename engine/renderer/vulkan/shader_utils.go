package vulkan

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/trigon/engine/core"
)

// VulkanShaderStage is a compiled shader module plus its pipeline stage info.
type VulkanShaderStage struct {
	Handle                vk.ShaderModule
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderModule loads shaders/<name>.<type>.spv and wraps it as a pipeline
// stage. The SPIR-V binaries are produced by the mage shader target.
func NewShaderModule(context *VulkanContext, name, typeStr string, shaderStageFlag vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	fileName := filepath.Join("shaders", fmt.Sprintf("%s.%s.spv", name, typeStr))

	code, err := os.ReadFile(fileName)
	if err != nil {
		core.LogError("unable to read shader module %s: %s", fileName, err.Error())
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader module %s is not valid SPIR-V: %d bytes", fileName, len(code))
		core.LogError(err.Error())
		return nil, err
	}

	stage := &VulkanShaderStage{}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    sliceUint32(code),
	}

	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &stage.Handle); res != vk.Success {
		err := fmt.Errorf("failed to create shader module %s: %s", fileName, VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	stage.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  shaderStageFlag,
		Module: stage.Handle,
		PName:  VulkanSafeString("main"),
	}

	return stage, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = vk.NullShaderModule
	}
}

// sliceUint32 reinterprets SPIR-V bytes as the word stream Vulkan expects.
func sliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
