package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/trigon/engine/camera"
	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/platform"
	"github.com/spaghettifunk/trigon/engine/renderer"
	"github.com/spaghettifunk/trigon/engine/renderer/vulkan"
)

var active atomic.Bool

// Engine ties the platform window, input, camera and renderer together and
// drives the frame loop. One engine may exist per process.
type Engine struct {
	config   *Config
	platform *platform.Platform
	input    *core.InputState
	camera   *camera.Camera
	renderer *renderer.Renderer

	clock   *core.Clock
	metrics *core.Metrics

	width     uint32
	height    uint32
	suspended bool
	modSpeed  bool
	lastTime  float64
	frames    uint64

	running      atomic.Bool
	teardownOnce sync.Once
	teardownErr  error
}

func New(config *Config) (*Engine, error) {
	if !active.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("engine: %w", core.ErrAlreadyInitialized)
	}

	p := platform.New()
	backend := vulkan.New(p, config.Validation)

	r, err := renderer.New(backend)
	if err != nil {
		active.Store(false)
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		config:   config,
		platform: p,
		input:    core.NewInputState(),
		camera:   camera.New(),
		renderer: r,
		clock:    core.NewClock(),
		metrics:  core.NewMetrics(),
		width:    config.Width,
		height:   config.Height,
	}, nil
}

func (e *Engine) Initialize() error {
	if err := e.platform.Startup(e.config.ApplicationName, e.config.Width, e.config.Height); err != nil {
		return err
	}

	e.monitorKeys()
	e.platform.BindInput(e.input)
	e.platform.OnResize(e.onResized)

	// The drawable extent may differ from the requested window size on
	// high-DPI displays.
	e.width, e.height = e.platform.Extent()

	if err := e.renderer.Initialize(e.config.ApplicationName, e.width, e.height); err != nil {
		core.LogError("renderer initialization failed: %s", err.Error())
		return err
	}

	params := e.config.Snapshot()
	e.camera.SetFOVDegrees(params.FOVDegrees)
	e.camera.SetFarClip(params.RenderDistance)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	e.running.Store(true)
	return nil
}

// LoadScene hands the vertex spans to the renderer. Must be called after
// Initialize and at most once.
func (e *Engine) LoadScene(scene *renderer.SceneData) error {
	return e.renderer.LoadScene(scene)
}

// Run drives the frame loop until the window closes or Shutdown is requested,
// then tears the engine down.
func (e *Engine) Run() error {
	for e.running.Load() && !e.platform.ShouldClose() {
		e.platform.PumpMessages()

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		params := e.config.Snapshot()
		e.applyInput(delta, &params)

		if e.suspended {
			// Minimized: block until the platform delivers an event instead
			// of spinning on the poll.
			e.platform.WaitEvents()
			continue
		}

		e.camera.SetFOVDegrees(params.FOVDegrees)
		e.camera.SetFarClip(params.RenderDistance)

		if err := e.renderer.DrawFrame(e.buildPacket(delta, &params)); err != nil {
			core.LogError("frame loop failed: %s", err.Error())
			e.running.Store(false)
			if terr := e.teardown(); terr != nil {
				core.LogError(terr.Error())
			}
			return err
		}

		e.clock.Update()
		e.metrics.Update(e.clock.Elapsed() - currentTime)
		e.frames++
		if e.frames%300 == 0 {
			fps, frameTime := e.metrics.Frame()
			core.LogDebug("fps: %.0f, frame time: %.2fms", fps, frameTime)
		}
	}

	e.running.Store(false)
	return e.teardown()
}

// Shutdown stops the frame loop. When the loop is active, teardown happens at
// the tail of Run so that resources are never destroyed under a recording
// frame; otherwise resources are released directly.
func (e *Engine) Shutdown() error {
	if e.running.CompareAndSwap(true, false) {
		core.LogInfo("engine shutdown requested")
		return nil
	}
	return e.teardown()
}

func (e *Engine) teardown() error {
	e.teardownOnce.Do(func() {
		core.LogInfo("engine shutting down")
		if err := e.renderer.Shutdown(); err != nil {
			e.teardownErr = err
		}
		if err := e.config.Close(); err != nil && e.teardownErr == nil {
			e.teardownErr = err
		}
		if err := e.platform.Shutdown(); err != nil && e.teardownErr == nil {
			e.teardownErr = err
		}
		active.Store(false)
	})
	return e.teardownErr
}

// onResized is invoked from the platform's framebuffer size callback. A zero
// extent suspends the frame loop until the window is restored.
func (e *Engine) onResized(width, height uint32) {
	e.width, e.height = width, height
	e.suspended = width == 0 || height == 0
	e.renderer.Resized(width, height)
}

func (e *Engine) monitorKeys() {
	for _, key := range []core.Key{
		core.KeyW, core.KeyA, core.KeyS, core.KeyD,
		core.KeySpace, core.KeyC,
		core.KeyQ, core.KeyE,
		core.KeyRight, core.KeyLeft, core.KeyUp, core.KeyDown,
	} {
		e.input.Monitor(key, core.ButtonHeldDown)
	}
	e.input.Monitor(core.KeyLeftShift, core.ButtonPressed)
}

// applyInput translates the polled key states into camera motion for this
// tick. Held opposing keys cancel out.
func (e *Engine) applyInput(delta float64, params *Parameters) {
	events := e.input.Poll()
	if len(events) == 0 {
		return
	}

	if _, ok := events[core.KeyLeftShift]; ok {
		e.modSpeed = !e.modSpeed
	}

	axis := func(plus, minus core.Key) float32 {
		var value float32
		if _, ok := events[plus]; ok {
			value += 1.0
		}
		if _, ok := events[minus]; ok {
			value -= 1.0
		}
		return value
	}

	forward := axis(core.KeyW, core.KeyS)
	sideways := axis(core.KeyD, core.KeyA)
	up := axis(core.KeySpace, core.KeyC)

	movement := e.camera.Direction().MulScalar(forward).
		Add(e.camera.Sideways().MulScalar(sideways)).
		Add(e.camera.Up().MulScalar(up))
	if movement.LengthSquared() > 1e-6 {
		speed := params.LinearVelocity
		if e.modSpeed {
			speed = params.LinearVelocityFast
		}
		e.camera.Translate(movement.Normalized().MulScalar(speed * float32(delta)))
	}

	yaw := axis(core.KeyRight, core.KeyLeft)
	pitch := axis(core.KeyDown, core.KeyUp)
	roll := axis(core.KeyQ, core.KeyE)
	if yaw == 0 && pitch == 0 && roll == 0 {
		return
	}

	angular := math.DegToRad(params.AngularVelocity) * float32(delta)
	rotation := math.NewQuatFromAxisAngle(e.camera.Up(), yaw*angular, false).
		Mul(math.NewQuatFromAxisAngle(e.camera.Sideways(), pitch*angular, false)).
		Mul(math.NewQuatFromAxisAngle(e.camera.Direction(), roll*angular, false))
	e.camera.Rotate(rotation)
}

func (e *Engine) buildPacket(delta float64, params *Parameters) *renderer.Packet {
	lightDirection := math.NewMat4EulerYX(
		math.DegToRad(params.LightYawDegrees),
		math.DegToRad(params.LightPitchDegrees),
	).MulVec4(math.NewVec4(0, 0, 1, 0))

	return &renderer.Packet{
		DeltaTime:         delta,
		ViewProjection:    e.camera.ViewProjection(e.width, e.height),
		LightDirection:    lightDirection,
		LightColor:        params.LightColor,
		AmbientStrength:   params.AmbientStrength,
		Palette:           params.Palette,
		ClearColor:        params.ClearColor,
		DrawBroadPhase:    params.DrawBroadPhase,
		DrawBoundingBoxes: params.DrawBoundingBoxes,
	}
}

// Camera exposes the engine's camera for scene placement before Run.
func (e *Engine) Camera() *camera.Camera {
	return e.camera
}
