package camera

import (
	"github.com/spaghettifunk/trigon/engine/math"
)

// Camera is a free-flying camera. Orientation is a unit quaternion so that
// roll composes correctly with yaw and pitch; the view matrix is derived from
// the rotated basis vectors on demand.
type Camera struct {
	position    math.Vec3
	orientation math.Quaternion

	fovDegrees float32
	nearClip   float32
	farClip    float32
}

func New() *Camera {
	return &Camera{
		position:    math.NewVec3Zero(),
		orientation: math.NewQuatIdentity(),
		fovDegrees:  90.0,
		nearClip:    0.1,
		farClip:     30000.0,
	}
}

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.position = position
}

// SetFOVDegrees updates the vertical field of view. Read fresh from the
// configuration every frame.
func (c *Camera) SetFOVDegrees(fov float32) {
	c.fovDegrees = math.Clamp(fov, 10.0, 175.0)
}

// SetFarClip updates the render distance.
func (c *Camera) SetFarClip(farClip float32) {
	if farClip > c.nearClip {
		c.farClip = farClip
	}
}

// Direction returns the unit forward vector.
func (c *Camera) Direction() math.Vec3 {
	return c.orientation.RotateVec3(math.NewVec3Forward())
}

// Sideways returns the unit right vector.
func (c *Camera) Sideways() math.Vec3 {
	return c.orientation.RotateVec3(math.NewVec3(1, 0, 0))
}

// Up returns the unit up vector.
func (c *Camera) Up() math.Vec3 {
	return c.orientation.RotateVec3(math.NewVec3Up())
}

// Translate moves the camera by the given world-space offset.
func (c *Camera) Translate(offset math.Vec3) {
	c.position = c.position.Add(offset)
}

// Rotate composes an additional rotation onto the current orientation.
func (c *Camera) Rotate(rotation math.Quaternion) {
	c.orientation = rotation.Mul(c.orientation).Normalize()
}

// View returns the view matrix for the current position and orientation.
func (c *Camera) View() math.Mat4 {
	target := c.position.Add(c.Direction())
	return math.NewMat4LookAt(c.position, target, c.Up())
}

// ViewProjection builds the combined view-projection matrix for the given
// drawable extent.
func (c *Camera) ViewProjection(width, height uint32) math.Mat4 {
	if height == 0 {
		height = 1
	}
	aspect := float32(width) / float32(height)
	projection := math.NewMat4Perspective(math.DegToRad(c.fovDegrees), aspect, c.nearClip, c.farClip)
	return c.View().Mul(projection)
}
