package renderer

import (
	"unsafe"

	"github.com/spaghettifunk/trigon/engine/math"
)

// TriangleVertex is the layout of the filled-geometry vertex stream.
// The color index selects an entry of the packet palette in the shader.
type TriangleVertex struct {
	Position   math.Vec3
	Normal     math.Vec3
	ColorIndex uint32
}

// WireframeVertex is the layout of the line-geometry vertex streams.
type WireframeVertex struct {
	Position   math.Vec3
	ColorIndex uint32
}

const (
	TriangleVertexStride  = uint32(unsafe.Sizeof(TriangleVertex{}))
	WireframeVertexStride = uint32(unsafe.Sizeof(WireframeVertex{}))
)

// TriangleVertexBytes reinterprets a vertex slice as the raw byte span the
// staged-upload pipeline consumes. The backing array is shared, not copied.
func TriangleVertexBytes(vertices []TriangleVertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(TriangleVertexStride))
}

// WireframeVertexBytes reinterprets a vertex slice as a raw byte span.
func WireframeVertexBytes(vertices []WireframeVertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(WireframeVertexStride))
}
