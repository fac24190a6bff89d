package vulkan

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	kmath "github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// The uniform block must match the std140 layout the shaders declare:
// mat4 + vec4 + vec4 + padded float + vec4[4].
func TestUniformObjectLayout(t *testing.T) {
	if UniformObjectSize != 176 {
		t.Fatalf("UniformObjectSize = %d, want 176", UniformObjectSize)
	}

	var u UniformObject
	base := uintptr(unsafe.Pointer(&u))
	offsets := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"ViewProjection", uintptr(unsafe.Pointer(&u.ViewProjection)) - base, 0},
		{"LightDirection", uintptr(unsafe.Pointer(&u.LightDirection)) - base, 64},
		{"LightColor", uintptr(unsafe.Pointer(&u.LightColor)) - base, 80},
		{"AmbientStrength", uintptr(unsafe.Pointer(&u.AmbientStrength)) - base, 96},
		{"Palette", uintptr(unsafe.Pointer(&u.Palette)) - base, 112},
	}
	for _, o := range offsets {
		if o.got != o.want {
			t.Errorf("offset of %s = %d, want %d", o.name, o.got, o.want)
		}
	}
}

func TestUniformObjectBytes(t *testing.T) {
	packet := &renderer.Packet{
		ViewProjection:  kmath.NewMat4Identity(),
		LightDirection:  kmath.Vec4{X: 0.5, Y: -1, Z: 0.25, W: 0},
		AmbientStrength: 0.125,
	}
	packet.Palette[renderer.ColorWireframe] = kmath.Vec4{X: 1, Y: 0.5, Z: 0, W: 1}

	u := NewUniformObject(packet)
	raw := u.Bytes()
	if uint64(len(raw)) != UniformObjectSize {
		t.Fatalf("Bytes length = %d, want %d", len(raw), UniformObjectSize)
	}

	// Identity matrix diagonal at the head of the block.
	for i := 0; i < 4; i++ {
		offset := (i*4 + i) * 4
		got := math.Float32frombits(binary.LittleEndian.Uint32(raw[offset:]))
		if got != 1 {
			t.Errorf("diagonal element %d = %v, want 1", i, got)
		}
	}

	// Ambient strength lands after the two light vectors.
	got := math.Float32frombits(binary.LittleEndian.Uint32(raw[96:]))
	if got != 0.125 {
		t.Errorf("ambient strength = %v, want 0.125", got)
	}

	// Wireframe palette entry at its std140 slot.
	wireOffset := 112 + int(renderer.ColorWireframe)*16
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[wireOffset:])); got != 1 {
		t.Errorf("wireframe palette red = %v, want 1", got)
	}
}

func TestQueueModeString(t *testing.T) {
	if QueueModeShared.String() != "shared" || QueueModeSplit.String() != "split" {
		t.Errorf("unexpected queue mode names: %q, %q", QueueModeShared, QueueModeSplit)
	}
}
