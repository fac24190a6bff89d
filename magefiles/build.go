//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL shader programs to SPIR-V with glslc.
func (Build) Shaders() error {
	for _, name := range []string{
		"triangle.vert",
		"triangle.frag",
		"wireframe.vert",
		"wireframe.frag",
	} {
		src := fmt.Sprintf("shaders/%s", name)
		out := fmt.Sprintf("shaders/%s.spv", name)
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}
