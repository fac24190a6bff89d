package engine

import (
	"fmt"
	"testing"

	"github.com/spaghettifunk/trigon/engine/camera"
	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// stubBackend satisfies the renderer backend with no-ops, recording the
// extents forwarded to it.
type stubBackend struct {
	resizes []string
}

func (b *stubBackend) Initialize(appName string, width, height uint32) error { return nil }
func (b *stubBackend) Shutdown() error                                       { return nil }
func (b *stubBackend) Resized(width, height uint32) {
	b.resizes = append(b.resizes, fmt.Sprintf("%dx%d", width, height))
}
func (b *stubBackend) LoadGeometry(ds *renderer.DataSet) error  { return nil }
func (b *stubBackend) BeginFrame(packet *renderer.Packet) error { return nil }
func (b *stubBackend) DrawScene(packet *renderer.Packet) error  { return nil }
func (b *stubBackend) EndFrame(packet *renderer.Packet) error   { return nil }

var _ renderer.Backend = (*stubBackend)(nil)

// newLoopTestEngine builds just enough of an engine to exercise the per-tick
// input kinematics without a window or a GPU.
func newLoopTestEngine() *Engine {
	e := &Engine{
		input:  core.NewInputState(),
		camera: camera.New(),
		width:  800,
		height: 600,
	}
	e.monitorKeys()
	return e
}

func TestOnResizedTogglesSuspension(t *testing.T) {
	backend := &stubBackend{}
	r, err := renderer.New(backend)
	if err != nil {
		t.Fatalf("renderer.New: %v", err)
	}
	t.Cleanup(func() { r.Shutdown() })

	e := newLoopTestEngine()
	e.renderer = r

	// A minimized window reports a zero extent; the loop must park on
	// platform events rather than draw.
	e.onResized(0, 0)
	if !e.suspended {
		t.Error("zero extent must suspend the frame loop")
	}

	e.onResized(1024, 768)
	if e.suspended {
		t.Error("restored extent must resume the frame loop")
	}
	if e.width != 1024 || e.height != 768 {
		t.Errorf("extent = %dx%d, want 1024x768", e.width, e.height)
	}

	want := []string{"0x0", "1024x768"}
	if len(backend.resizes) != len(want) {
		t.Fatalf("forwarded resizes = %v, want %v", backend.resizes, want)
	}
	for i := range want {
		if backend.resizes[i] != want[i] {
			t.Errorf("resize %d = %q, want %q", i, backend.resizes[i], want[i])
		}
	}
}

func TestApplyInputTranslatesForward(t *testing.T) {
	e := newLoopTestEngine()
	params := DefaultParameters()
	params.LinearVelocity = 10.0

	e.input.Press(core.KeyW)
	e.applyInput(0.5, &params)

	want := math.NewVec3Forward().MulScalar(5.0)
	if !e.camera.Position().Compare(want, 1e-5) {
		t.Errorf("position = %+v, want %+v", e.camera.Position(), want)
	}
}

func TestApplyInputOpposingKeysCancel(t *testing.T) {
	e := newLoopTestEngine()
	params := DefaultParameters()

	e.input.Press(core.KeyW)
	e.input.Press(core.KeyS)
	e.applyInput(1.0, &params)

	if !e.camera.Position().Compare(math.NewVec3Zero(), 1e-6) {
		t.Errorf("position = %+v, want origin", e.camera.Position())
	}
}

func TestApplyInputSpeedModifierToggles(t *testing.T) {
	e := newLoopTestEngine()
	params := DefaultParameters()
	params.LinearVelocity = 1.0
	params.LinearVelocityFast = 100.0

	// A full press-release cycle toggles the modifier on the next poll.
	e.input.Press(core.KeyLeftShift)
	e.input.Release(core.KeyLeftShift)
	e.input.Press(core.KeyW)
	e.applyInput(1.0, &params)

	want := math.NewVec3Forward().MulScalar(100.0)
	if !e.camera.Position().Compare(want, 1e-4) {
		t.Errorf("position = %+v, want %+v", e.camera.Position(), want)
	}

	// A second cycle toggles it back.
	e.input.Press(core.KeyLeftShift)
	e.input.Release(core.KeyLeftShift)
	e.applyInput(1.0, &params)

	want = want.Add(math.NewVec3Forward())
	if !e.camera.Position().Compare(want, 1e-4) {
		t.Errorf("position after toggle back = %+v, want %+v", e.camera.Position(), want)
	}
}

func TestApplyInputYawRotatesAboutUp(t *testing.T) {
	e := newLoopTestEngine()
	params := DefaultParameters()
	params.AngularVelocity = 90.0

	e.input.Press(core.KeyRight)
	e.applyInput(1.0, &params)

	// 90 degrees of yaw turns forward (-Z) into -X with a Y-up basis.
	want := math.NewVec3(-1, 0, 0)
	if !e.camera.Direction().Compare(want, 1e-4) {
		t.Errorf("direction = %+v, want %+v", e.camera.Direction(), want)
	}
}

func TestBuildPacketLightDirection(t *testing.T) {
	e := newLoopTestEngine()
	params := DefaultParameters()

	packet := e.buildPacket(0.016, &params)
	if got, want := packet.LightDirection, math.NewVec4(0, 0, 1, 0); got != want {
		t.Errorf("light direction at zero yaw/pitch = %+v, want %+v", got, want)
	}

	params.LightYawDegrees = 90.0
	packet = e.buildPacket(0.016, &params)
	dir := packet.LightDirection
	if math.NewVec3(dir.X, dir.Y, dir.Z).Compare(math.NewVec3(0, 0, 1), 1e-4) {
		t.Errorf("light direction did not move with yaw: %+v", dir)
	}

	if packet.ClearColor != params.ClearColor {
		t.Errorf("clear color = %+v, want %+v", packet.ClearColor, params.ClearColor)
	}
	if packet.DeltaTime != 0.016 {
		t.Errorf("delta = %f", packet.DeltaTime)
	}
}
