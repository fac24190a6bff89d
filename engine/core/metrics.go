package core

const avgCount uint8 = 30

// Metrics keeps a rolling frame-time average and a frames-per-second counter.
// It is owned by the engine and updated once per tick.
type Metrics struct {
	frameAVGCounter    uint8
	mSTimes            [avgCount]float64
	mSAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Update(frameElapsedTime float64) {
	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	m.mSTimes[m.frameAVGCounter] = frameMS
	if m.frameAVGCounter == avgCount-1 {
		m.mSAvg = 0
		for i := uint8(0); i < avgCount; i++ {
			m.mSAvg += m.mSTimes[i]
		}
		m.mSAvg /= float64(avgCount)
	}
	m.frameAVGCounter++
	m.frameAVGCounter %= avgCount

	// Calculate frames per second.
	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}

	// Count all frames.
	m.frames++
}

func (m *Metrics) FPS() float64 {
	return m.fps
}

func (m *Metrics) FrameTime() float64 {
	return m.mSAvg
}

func (m *Metrics) Frame() (float64, float64) {
	return m.fps, m.mSAvg
}
