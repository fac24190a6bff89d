package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Quaternion is used to represent rotational orientation.
type Quaternion Vec4

// Mat4 is a 4x4 matrix, stored column-major the way the GPU consumes it.
type Mat4 struct {
	Data [16]float32
}
