package renderer

// Backend is the device-facing half of the renderer. The frame scheduler
// drives it with a fixed per-tick call order: BeginFrame, DrawScene, EndFrame.
//
// BeginFrame waits on the current frame slot's fence, acquires the next
// presentable image, records any pending staged-dataset commits and opens the
// main render pass. It returns an error wrapping core.ErrSwapchainBooting when
// the tick must be aborted because the swapchain is stale or mid-recreation;
// no submission happens on such a tick.
//
// DrawScene records the draw calls for the datasets that are drawable this
// frame, honoring the packet's visibility switches.
//
// EndFrame closes the main pass, records the overlay pass, writes the
// packet's uniform snapshot into the current slot, submits the combined
// command batch, presents and advances the frame index.
type Backend interface {
	Initialize(appName string, width, height uint32) error
	Shutdown() error
	Resized(width, height uint32)
	LoadGeometry(ds *DataSet) error
	BeginFrame(packet *Packet) error
	DrawScene(packet *Packet) error
	EndFrame(packet *Packet) error
}
