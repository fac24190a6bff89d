package vulkan

import (
	"os"
	"path/filepath"
	"testing"

	vk "github.com/goki/vulkan"
)

// chdirShaders points the loader's relative shaders/ path at a scratch
// directory and restores the working directory afterwards.
func chdirShaders(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	shaders := filepath.Join(dir, "shaders")
	if err := os.Mkdir(shaders, 0o755); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})

	return shaders
}

// Validation rejects malformed binaries before any module is created, so no
// device is needed.
func TestNewShaderModuleRejectsInvalidFiles(t *testing.T) {
	shaders := chdirShaders(t)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", []byte{0x03, 0x02, 0x23}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(shaders, tt.name+".vert.spv")
			if err := os.WriteFile(file, tt.data, 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewShaderModule(nil, tt.name, "vert", vk.ShaderStageVertexBit); err == nil {
				t.Fatal("want error for invalid SPIR-V file")
			}
		})
	}
}

func TestNewShaderModuleMissingFile(t *testing.T) {
	chdirShaders(t)

	if _, err := NewShaderModule(nil, "absent", "vert", vk.ShaderStageVertexBit); err == nil {
		t.Fatal("want error for missing shader file")
	}
}
