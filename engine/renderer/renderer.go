package renderer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/trigon/engine/core"
)

var active atomic.Bool

// Renderer is the frame scheduler. It owns the per-tick orchestration over a
// Backend and the scene's staged datasets. Only one renderer may exist per
// process; a second New is a contract violation.
type Renderer struct {
	backend  Backend
	datasets map[DataSetRole]*DataSet
	loaded   atomic.Bool
}

func New(backend Backend) (*Renderer, error) {
	if !active.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("renderer: %w", core.ErrAlreadyInitialized)
	}
	return &Renderer{
		backend:  backend,
		datasets: make(map[DataSetRole]*DataSet),
	}, nil
}

func (r *Renderer) Initialize(appName string, width, height uint32) error {
	return r.backend.Initialize(appName, width, height)
}

// LoadScene stages the supplied vertex spans. It may be called at most once;
// reloading while a prior load is staged or mid-flight fails fast.
func (r *Renderer) LoadScene(scene *SceneData) error {
	if !r.loaded.CompareAndSwap(false, true) {
		return fmt.Errorf("scene: %w", core.ErrAlreadyLoaded)
	}

	spans := []struct {
		role   DataSetRole
		data   []byte
		stride uint32
	}{
		{RolePrimary, scene.TriangleVertices, TriangleVertexStride},
		{RoleBroadPhase, scene.BroadPhaseVertices, WireframeVertexStride},
		{RoleBoundingBox, scene.BoundingBoxVertices, WireframeVertexStride},
	}

	for _, span := range spans {
		ds, err := NewDataSet(span.role, span.data, span.stride)
		if err != nil {
			return err
		}
		r.datasets[span.role] = ds

		if ds.Status == DataSetEmpty {
			core.LogDebug("dataset %s (%s) is empty, skipping upload", ds.Role, ds.ID)
			continue
		}
		if err := r.backend.LoadGeometry(ds); err != nil {
			return fmt.Errorf("staging dataset %s: %w", span.role, err)
		}
		core.LogInfo("dataset %s (%s) staged: %d elements, %d bytes",
			ds.Role, ds.ID, ds.ElementCount, len(ds.Bytes))
	}

	return nil
}

// DataSet returns the dataset for a role, or nil if none was loaded.
func (r *Renderer) DataSet(role DataSetRole) *DataSet {
	return r.datasets[role]
}

// DrawFrame runs one tick of the frame loop. A tick aborted by swapchain
// staleness is not an error: the backend has already scheduled the
// recreation and the tick simply produced no submission.
func (r *Renderer) DrawFrame(packet *Packet) error {
	if err := r.backend.BeginFrame(packet); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			return nil
		}
		core.LogError("begin frame failed: %s", err.Error())
		return err
	}

	if err := r.backend.DrawScene(packet); err != nil {
		return err
	}

	if err := r.backend.EndFrame(packet); err != nil {
		core.LogError("end frame failed, shutting down: %s", err.Error())
		return err
	}
	return nil
}

// Resized forwards a new drawable extent to the backend. The swapchain is
// recreated lazily at the start of the next tick.
func (r *Renderer) Resized(width, height uint32) {
	r.backend.Resized(width, height)
}

// Shutdown blocks until the device has finished all outstanding work, then
// releases every GPU resource and the process-wide renderer slot.
func (r *Renderer) Shutdown() error {
	defer active.Store(false)
	return r.backend.Shutdown()
}
