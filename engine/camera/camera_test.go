package camera

import (
	"testing"

	"github.com/spaghettifunk/trigon/engine/math"
)

func TestCamera_DefaultsLookDownNegativeZ(t *testing.T) {
	c := New()
	if !c.Direction().Compare(math.NewVec3Forward(), 1e-5) {
		t.Fatalf("default direction = %+v, want %+v", c.Direction(), math.NewVec3Forward())
	}
	if !c.Up().Compare(math.NewVec3Up(), 1e-5) {
		t.Fatalf("default up = %+v, want %+v", c.Up(), math.NewVec3Up())
	}
}

func TestCamera_TranslateMovesPosition(t *testing.T) {
	c := New()
	c.Translate(math.NewVec3(1, 2, 3))
	c.Translate(math.NewVec3(1, 0, 0))
	if !c.Position().Compare(math.NewVec3(2, 2, 3), 1e-5) {
		t.Fatalf("position = %+v, want (2,2,3)", c.Position())
	}
}

func TestCamera_YawRotatesBasis(t *testing.T) {
	c := New()
	yaw := math.NewQuatFromAxisAngle(c.Up(), math.DegToRad(90), true)
	c.Rotate(yaw)

	// After a quarter turn to the left, forward points down -X.
	if !c.Direction().Compare(math.NewVec3(-1, 0, 0), 1e-4) {
		t.Fatalf("direction after yaw = %+v, want (-1,0,0)", c.Direction())
	}
	// Up is unchanged by a yaw.
	if !c.Up().Compare(math.NewVec3Up(), 1e-4) {
		t.Fatalf("up after yaw = %+v, want (0,1,0)", c.Up())
	}
}

func TestCamera_ViewProjectionCentersViewAxis(t *testing.T) {
	c := New()
	c.SetPosition(math.NewVec3(0, 0, 10))

	vp := c.ViewProjection(800, 600)
	clip := vp.MulVec4(math.NewVec4(0, 0, 0, 1))

	// A point straight ahead of the camera projects onto the clip-space center.
	if math.Clamp(clip.X, -1e-4, 1e-4) != clip.X || math.Clamp(clip.Y, -1e-4, 1e-4) != clip.Y {
		t.Fatalf("on-axis point projected off-center: %+v", clip)
	}
	if clip.W <= 0 {
		t.Fatalf("point in front of the camera has w = %f, want > 0", clip.W)
	}
}

func TestCamera_FOVClamped(t *testing.T) {
	c := New()
	c.SetFOVDegrees(500)
	c.SetFarClip(1000)

	vp := c.ViewProjection(100, 100)
	if vp.Data[5] == 0 {
		t.Fatal("projection collapsed after out-of-range fov")
	}
}
