package vulkan

import (
	"unsafe"

	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// UniformObject is the per-frame uniform block, laid out to match the std140
// block declared by both shader programs. The ambient strength is padded out
// to a full vec4 so the palette lands on a 16-byte boundary.
type UniformObject struct {
	ViewProjection  math.Mat4
	LightDirection  math.Vec4
	LightColor      math.Vec4
	AmbientStrength float32
	_pad            [3]float32
	Palette         [renderer.PaletteSize]math.Vec4
}

const UniformObjectSize = uint64(unsafe.Sizeof(UniformObject{}))

// NewUniformObject snapshots the packet's uniform state for one frame slot.
func NewUniformObject(packet *renderer.Packet) UniformObject {
	return UniformObject{
		ViewProjection:  packet.ViewProjection,
		LightDirection:  packet.LightDirection,
		LightColor:      packet.LightColor,
		AmbientStrength: packet.AmbientStrength,
		Palette:         packet.Palette,
	}
}

// Bytes reinterprets the uniform block as the raw span written into the
// current slot's mapped buffer.
func (u *UniformObject) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), UniformObjectSize)
}
