package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/trigon/engine/math"
)

// PaletteSize is the number of material colors carried in every frame packet.
const PaletteSize = 4

// Palette slots, matching the fragment shaders' color table.
const (
	ColorRegular uint32 = iota
	ColorIntersecting
	ColorWireframe
	ColorBoundingBox
)

// DataSetRole identifies which draw a vertex dataset feeds.
type DataSetRole uint8

const (
	// RolePrimary is the filled triangle geometry.
	RolePrimary DataSetRole = iota
	// RoleBroadPhase is the broad-phase wireframe overlay.
	RoleBroadPhase
	// RoleBoundingBox is the bounding-box wireframe overlay.
	RoleBoundingBox
)

func (r DataSetRole) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleBroadPhase:
		return "broad-phase"
	case RoleBoundingBox:
		return "bounding-box"
	}
	return "unknown"
}

// DataSetStatus tracks the one-way staged-upload lifecycle of a dataset.
type DataSetStatus uint8

const (
	// DataSetEmpty marks a zero-element dataset. It is treated as vacuously
	// resident and its draw is always skipped.
	DataSetEmpty DataSetStatus = iota
	// DataSetStaged means the bytes live in a host-visible staging copy only.
	DataSetStaged
	// DataSetCommitted means the device copy and its barrier have been
	// recorded but the containing frame has not been observed retired yet.
	DataSetCommitted
	// DataSetResident means the device-local copy is complete and the staging
	// half is disposable.
	DataSetResident
)

// DataSet is one vertex dataset moving through the staged-upload pipeline.
// A dataset transitions Staged -> Committed -> Resident exactly once; the
// backend owns the transitions, the scheduler owns the ordering.
type DataSet struct {
	ID           uuid.UUID
	Role         DataSetRole
	Bytes        []byte
	Stride       uint32
	ElementCount uint32
	Status       DataSetStatus
}

// NewDataSet wraps a raw byte span. A zero-length span is legal and yields an
// empty, vacuously resident dataset.
func NewDataSet(role DataSetRole, data []byte, stride uint32) (*DataSet, error) {
	if stride == 0 {
		return nil, fmt.Errorf("dataset %s: stride must be non-zero", role)
	}
	if len(data)%int(stride) != 0 {
		return nil, fmt.Errorf("dataset %s: %d bytes is not a multiple of stride %d", role, len(data), stride)
	}

	ds := &DataSet{
		ID:           uuid.New(),
		Role:         role,
		Bytes:        data,
		Stride:       stride,
		ElementCount: uint32(len(data)) / stride,
		Status:       DataSetEmpty,
	}
	if ds.ElementCount > 0 {
		ds.Status = DataSetStaged
	}
	return ds, nil
}

// Drawable reports whether the dataset has geometry on the device. Committed
// datasets are drawable in the same recording that committed them, since the
// copy and its barrier precede every draw.
func (ds *DataSet) Drawable() bool {
	return ds != nil && (ds.Status == DataSetCommitted || ds.Status == DataSetResident) && ds.ElementCount > 0
}

// SceneData carries the raw vertex spans supplied by the scene collaborator.
// Each span is optional; empty spans are never drawn.
type SceneData struct {
	TriangleVertices    []byte
	BroadPhaseVertices  []byte
	BoundingBoxVertices []byte
}

// Packet is the per-frame snapshot handed to the backend: the uniform state
// for the current frame slot plus the per-frame draw switches. It is built
// fresh every tick and never cached.
type Packet struct {
	DeltaTime float64

	ViewProjection  math.Mat4
	LightDirection  math.Vec4
	LightColor      math.Vec4
	AmbientStrength float32
	Palette         [PaletteSize]math.Vec4

	ClearColor math.Vec4

	DrawBroadPhase    bool
	DrawBoundingBoxes bool
}
