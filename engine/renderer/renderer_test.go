package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spaghettifunk/trigon/engine/core"
)

// fakeBackend records the scheduler's call sequence and can simulate a stale
// swapchain on chosen ticks. Committed bytes are kept for readback checks.
type fakeBackend struct {
	calls     []string
	staleAt   map[int]bool
	tick      int
	committed map[DataSetRole][]byte
	loadErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		staleAt:   make(map[int]bool),
		committed: make(map[DataSetRole][]byte),
	}
}

func (f *fakeBackend) Initialize(appName string, width, height uint32) error {
	f.calls = append(f.calls, "initialize")
	return nil
}

func (f *fakeBackend) Shutdown() error {
	f.calls = append(f.calls, "shutdown")
	return nil
}

func (f *fakeBackend) Resized(width, height uint32) {
	f.calls = append(f.calls, fmt.Sprintf("resized %dx%d", width, height))
}

func (f *fakeBackend) LoadGeometry(ds *DataSet) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.calls = append(f.calls, "load "+ds.Role.String())
	cp := make([]byte, len(ds.Bytes))
	copy(cp, ds.Bytes)
	f.committed[ds.Role] = cp
	return nil
}

func (f *fakeBackend) BeginFrame(packet *Packet) error {
	f.tick++
	if f.staleAt[f.tick] {
		f.calls = append(f.calls, "recreate")
		return fmt.Errorf("stale image on acquire: %w", core.ErrSwapchainBooting)
	}
	f.calls = append(f.calls, "begin")
	return nil
}

func (f *fakeBackend) DrawScene(packet *Packet) error {
	f.calls = append(f.calls, fmt.Sprintf("draw bp=%t bbox=%t", packet.DrawBroadPhase, packet.DrawBoundingBoxes))
	return nil
}

func (f *fakeBackend) EndFrame(packet *Packet) error {
	f.calls = append(f.calls, "end")
	return nil
}

var _ Backend = (*fakeBackend)(nil)

func newTestRenderer(t *testing.T, backend Backend) *Renderer {
	t.Helper()
	r, err := New(backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Shutdown() })
	return r
}

func TestDrawFrameCallOrder(t *testing.T) {
	fb := newFakeBackend()
	r := newTestRenderer(t, fb)

	for i := 0; i < 3; i++ {
		if err := r.DrawFrame(&Packet{DeltaTime: 0.016}); err != nil {
			t.Fatalf("DrawFrame %d: %v", i, err)
		}
	}

	draw := "draw bp=false bbox=false"
	want := []string{"begin", draw, "end", "begin", draw, "end", "begin", draw, "end"}
	if len(fb.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", fb.calls, want)
	}
	for i := range want {
		if fb.calls[i] != want[i] {
			t.Fatalf("calls[%d] = %q, want %q", i, fb.calls[i], want[i])
		}
	}
}

func TestStaleTickAbortsCleanly(t *testing.T) {
	fb := newFakeBackend()
	fb.staleAt[2] = true
	r := newTestRenderer(t, fb)

	for i := 0; i < 3; i++ {
		if err := r.DrawFrame(&Packet{}); err != nil {
			t.Fatalf("DrawFrame %d: %v", i, err)
		}
	}

	// The aborted tick triggers exactly one recreation and records no draw
	// or submission.
	draw := "draw bp=false bbox=false"
	want := []string{"begin", draw, "end", "recreate", "begin", draw, "end"}
	if len(fb.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", fb.calls, want)
	}
	for i := range want {
		if fb.calls[i] != want[i] {
			t.Fatalf("calls[%d] = %q, want %q", i, fb.calls[i], want[i])
		}
	}
}

func TestVisibilityFlagsArePerFrameSwitches(t *testing.T) {
	fb := newFakeBackend()
	r := newTestRenderer(t, fb)

	ticks := []struct {
		broadPhase bool
		boxes      bool
	}{
		{false, false},
		{true, false},
		{true, true},
		{false, true},
		{false, false},
	}
	for i, tick := range ticks {
		err := r.DrawFrame(&Packet{
			DrawBroadPhase:    tick.broadPhase,
			DrawBoundingBoxes: tick.boxes,
		})
		if err != nil {
			t.Fatalf("DrawFrame %d: %v", i, err)
		}
	}

	// Every tick records exactly its own packet's switches; no flag state
	// leaks from one tick into the next.
	if len(fb.calls) != len(ticks)*3 {
		t.Fatalf("calls = %v", fb.calls)
	}
	for i, tick := range ticks {
		got := fb.calls[i*3+1]
		want := fmt.Sprintf("draw bp=%t bbox=%t", tick.broadPhase, tick.boxes)
		if got != want {
			t.Errorf("tick %d draw = %q, want %q", i, got, want)
		}
	}
}

func TestLoadSceneStagesNonEmptySpans(t *testing.T) {
	fb := newFakeBackend()
	r := newTestRenderer(t, fb)

	triangles := TriangleVertexBytes([]TriangleVertex{
		{ColorIndex: ColorRegular}, {ColorIndex: ColorRegular}, {ColorIndex: ColorIntersecting},
	})
	broadPhase := WireframeVertexBytes([]WireframeVertex{
		{ColorIndex: ColorWireframe}, {ColorIndex: ColorWireframe},
	})

	err := r.LoadScene(&SceneData{
		TriangleVertices:   triangles,
		BroadPhaseVertices: broadPhase,
		// Bounding boxes intentionally empty.
	})
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}

	if got := len(fb.committed[RolePrimary]); got != len(triangles) {
		t.Errorf("primary bytes = %d, want %d", got, len(triangles))
	}
	if got := len(fb.committed[RoleBroadPhase]); got != len(broadPhase) {
		t.Errorf("broad-phase bytes = %d, want %d", got, len(broadPhase))
	}
	if _, ok := fb.committed[RoleBoundingBox]; ok {
		t.Error("empty bounding-box span should not reach the backend")
	}

	ds := r.DataSet(RoleBoundingBox)
	if ds == nil || ds.Status != DataSetEmpty {
		t.Errorf("bounding-box dataset = %+v, want empty", ds)
	}
	if ds.Drawable() {
		t.Error("empty dataset must not be drawable")
	}
}

func TestLoadSceneByteRoundTrip(t *testing.T) {
	fb := newFakeBackend()
	r := newTestRenderer(t, fb)

	vertices := []TriangleVertex{
		{ColorIndex: ColorRegular},
		{ColorIndex: ColorIntersecting},
		{ColorIndex: ColorBoundingBox},
	}
	vertices[0].Position.X = 1.5
	vertices[1].Normal.Y = -1
	vertices[2].Position.Z = 42

	raw := TriangleVertexBytes(vertices)
	if err := r.LoadScene(&SceneData{TriangleVertices: raw}); err != nil {
		t.Fatalf("LoadScene: %v", err)
	}

	got := fb.committed[RolePrimary]
	if len(got) != len(raw) {
		t.Fatalf("committed %d bytes, want %d", len(got), len(raw))
	}
	for i := range raw {
		if got[i] != raw[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], raw[i])
		}
	}
}

func TestLoadSceneTwiceFails(t *testing.T) {
	fb := newFakeBackend()
	r := newTestRenderer(t, fb)

	if err := r.LoadScene(&SceneData{}); err != nil {
		t.Fatalf("first LoadScene: %v", err)
	}
	err := r.LoadScene(&SceneData{})
	if !errors.Is(err, core.ErrAlreadyLoaded) {
		t.Fatalf("second LoadScene = %v, want ErrAlreadyLoaded", err)
	}
}

func TestSecondRendererFails(t *testing.T) {
	fb := newFakeBackend()
	r := newTestRenderer(t, fb)
	_ = r

	if _, err := New(newFakeBackend()); !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Fatalf("second New = %v, want ErrAlreadyInitialized", err)
	}
}

func TestDataSetStrideValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		stride  uint32
		wantErr bool
		count   uint32
	}{
		{"empty", nil, 16, false, 0},
		{"aligned", make([]byte, 48), 16, false, 3},
		{"misaligned", make([]byte, 50), 16, true, 0},
		{"zero stride", make([]byte, 16), 0, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := NewDataSet(RolePrimary, tt.data, tt.stride)
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDataSet: %v", err)
			}
			if ds.ElementCount != tt.count {
				t.Errorf("ElementCount = %d, want %d", ds.ElementCount, tt.count)
			}
		})
	}
}

func TestDataSetLifecycleDrawable(t *testing.T) {
	ds, err := NewDataSet(RoleBroadPhase, make([]byte, 32), 16)
	if err != nil {
		t.Fatalf("NewDataSet: %v", err)
	}
	if ds.Drawable() {
		t.Error("staged dataset must not be drawable")
	}
	ds.Status = DataSetCommitted
	if !ds.Drawable() {
		t.Error("committed dataset must be drawable")
	}
	ds.Status = DataSetResident
	if !ds.Drawable() {
		t.Error("resident dataset must be drawable")
	}
}
