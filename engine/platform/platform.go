package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/trigon/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// ResizeHandler is notified whenever the framebuffer changes size. A zero
// extent (minimized window) is reported as-is.
type ResizeHandler func(width, height uint32)

type Platform struct {
	Window *glfw.Window

	input    *core.InputState
	onResize ResizeHandler
}

func New() *Platform {
	return &Platform{}
}

func (p *Platform) Startup(applicationName string, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// BindInput routes key events into the provided input state table.
func (p *Platform) BindInput(input *core.InputState) {
	p.input = input
}

// OnResize registers the handler invoked from the framebuffer size callback.
func (p *Platform) OnResize(handler ResizeHandler) {
	p.onResize = handler
}

// Extent returns the current drawable extent in pixels. Either dimension may
// be zero while the window is minimized.
func (p *Platform) Extent() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

// WaitEvents blocks until the platform delivers an event. Used while the
// drawable extent is degenerate so the engine does not spin.
func (p *Platform) WaitEvents() {
	glfw.WaitEvents()
}

// RequiredExtensionNames reports the instance extensions the window system
// needs for surface creation.
func (p *Platform) RequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if p.input == nil {
		return
	}
	switch action {
	case glfw.Press:
		p.input.Press(core.Key(key))
	case glfw.Release:
		p.input.Release(core.Key(key))
	}
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if p.onResize != nil {
		p.onResize(uint32(width), uint32(height))
	}
}
