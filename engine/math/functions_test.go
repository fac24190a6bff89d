package math

import (
	"testing"
)

const tolerance = 1e-5

func TestMat4Mul_Identity(t *testing.T) {
	id := NewMat4Identity()
	persp := NewMat4Perspective(DegToRad(90), 16.0/9.0, 0.1, 1000)

	got := persp.Mul(id)
	for i := range got.Data {
		if kabs(got.Data[i]-persp.Data[i]) > tolerance {
			t.Fatalf("Mul(identity) changed element %d: %f != %f", i, got.Data[i], persp.Data[i])
		}
	}
}

func TestMat4LookAt_OriginForward(t *testing.T) {
	view := NewMat4LookAt(NewVec3Zero(), NewVec3Forward(), NewVec3Up())

	// Looking down -Z from the origin must leave points on the view axis on the view axis.
	p := view.MulVec4(NewVec4(0, 0, -5, 1))
	if kabs(p.X) > tolerance || kabs(p.Y) > tolerance {
		t.Fatalf("point on view axis transformed off-axis: %+v", p)
	}
}

func TestQuatRotateVec3(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float32
		in    Vec3
		want  Vec3
	}{
		{
			name:  "quarter turn around Y",
			axis:  NewVec3Up(),
			angle: DegToRad(90),
			in:    NewVec3(1, 0, 0),
			want:  NewVec3(0, 0, -1),
		},
		{
			name:  "half turn around Y",
			axis:  NewVec3Up(),
			angle: DegToRad(180),
			in:    NewVec3(1, 0, 0),
			want:  NewVec3(-1, 0, 0),
		},
		{
			name:  "identity leaves vector alone",
			axis:  NewVec3Up(),
			angle: 0,
			in:    NewVec3(3, 4, 5),
			want:  NewVec3(3, 4, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuatFromAxisAngle(tt.axis, tt.angle, true)
			got := q.RotateVec3(tt.in)
			if !got.Compare(tt.want, 1e-4) {
				t.Errorf("RotateVec3(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuatMul_ComposesRotations(t *testing.T) {
	quarter := NewQuatFromAxisAngle(NewVec3Up(), DegToRad(90), true)
	half := quarter.Mul(quarter)

	got := half.RotateVec3(NewVec3(1, 0, 0))
	if !got.Compare(NewVec3(-1, 0, 0), 1e-4) {
		t.Fatalf("two quarter turns = %+v, want (-1,0,0)", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(uint32(5), 10, 20); got != 10 {
		t.Errorf("Clamp(5, 10, 20) = %d, want 10", got)
	}
	if got := Clamp(uint32(25), 10, 20); got != 20 {
		t.Errorf("Clamp(25, 10, 20) = %d, want 20", got)
	}
	if got := Clamp(float32(0.5), 0.0, 1.0); got != 0.5 {
		t.Errorf("Clamp(0.5, 0, 1) = %f, want 0.5", got)
	}
}
