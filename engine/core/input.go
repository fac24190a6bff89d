package core

import "sync"

// Key is a platform key code. The platform layer translates its native codes
// into these before feeding the state table.
type Key int

// Key codes mirror the GLFW codes so the platform callback can cast directly.
const (
	KeySpace     Key = 32
	KeyA         Key = 65
	KeyC         Key = 67
	KeyD         Key = 68
	KeyE         Key = 69
	KeyQ         Key = 81
	KeyS         Key = 83
	KeyW         Key = 87
	KeyEscape    Key = 256
	KeyRight     Key = 262
	KeyLeft      Key = 263
	KeyDown      Key = 264
	KeyUp        Key = 265
	KeyLeftShift Key = 340
)

type ButtonState uint8

const (
	ButtonIdle ButtonState = iota
	ButtonHeldDown
	ButtonPressed
)

type trackedKeyInfo struct {
	currentState ButtonState
	lookFor      ButtonState
}

// InputState tracks a small set of monitored keys. It is explicitly owned by
// the engine and shared with the platform layer's key callbacks; a mutex
// guards the table because callbacks may fire while the render loop polls.
// Critical sections are a handful of map operations and stay bounded.
type InputState struct {
	mu      sync.Mutex
	tracked map[Key]*trackedKeyInfo
}

func NewInputState() *InputState {
	return &InputState{
		tracked: make(map[Key]*trackedKeyInfo),
	}
}

// Monitor registers a key and the state that Poll should report for it.
// Non-monitored keys are ignored entirely.
func (s *InputState) Monitor(key Key, stateToNotify ButtonState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracked[key] = &trackedKeyInfo{currentState: ButtonIdle, lookFor: stateToNotify}
}

// Press records a key-down transition. Called from the platform key callback.
func (s *InputState) Press(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.tracked[key]; ok {
		info.currentState = ButtonHeldDown
	}
}

// Release records a key-up transition. A released key becomes "pressed" so
// that a full press-release cycle is observable by exactly one Poll.
func (s *InputState) Release(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.tracked[key]; ok {
		info.currentState = ButtonPressed
	}
}

// Poll reports every monitored key whose current state matches the state it
// was registered for. Pressed keys reset to idle once polled, held keys keep
// reporting until released.
func (s *InputState) Poll() map[Key]ButtonState {
	result := make(map[Key]ButtonState)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, info := range s.tracked {
		if info.currentState != info.lookFor {
			continue
		}
		result[key] = info.currentState
		if info.currentState == ButtonPressed {
			info.currentState = ButtonIdle
		}
	}

	return result
}
