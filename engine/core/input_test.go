package core

import (
	"sync"
	"testing"
)

const (
	testKeyW     Key = 87
	testKeyShift Key = 340
)

func TestInputState_HeldKeyReportsUntilRelease(t *testing.T) {
	s := NewInputState()
	s.Monitor(testKeyW, ButtonHeldDown)

	if got := s.Poll(); len(got) != 0 {
		t.Fatalf("Poll() before any event = %v, want empty", got)
	}

	s.Press(testKeyW)
	for i := 0; i < 3; i++ {
		got := s.Poll()
		if got[testKeyW] != ButtonHeldDown {
			t.Fatalf("Poll() #%d = %v, want %v held", i, got, testKeyW)
		}
	}

	s.Release(testKeyW)
	if got := s.Poll(); len(got) != 0 {
		t.Fatalf("Poll() after release of held-monitored key = %v, want empty", got)
	}
}

func TestInputState_PressedKeyAutoResets(t *testing.T) {
	s := NewInputState()
	s.Monitor(testKeyShift, ButtonPressed)

	s.Press(testKeyShift)
	if got := s.Poll(); len(got) != 0 {
		t.Fatalf("Poll() while key is down = %v, want empty", got)
	}

	s.Release(testKeyShift)
	if got := s.Poll(); got[testKeyShift] != ButtonPressed {
		t.Fatalf("Poll() after release = %v, want pressed", got)
	}
	// The press has been consumed.
	if got := s.Poll(); len(got) != 0 {
		t.Fatalf("second Poll() = %v, want empty", got)
	}
}

func TestInputState_UnmonitoredKeysIgnored(t *testing.T) {
	s := NewInputState()
	s.Press(testKeyW)
	s.Release(testKeyW)
	if got := s.Poll(); len(got) != 0 {
		t.Fatalf("Poll() with no monitored keys = %v, want empty", got)
	}
}

func TestInputState_ConcurrentCallbacks(t *testing.T) {
	s := NewInputState()
	s.Monitor(testKeyW, ButtonHeldDown)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Press(testKeyW)
				s.Poll()
				s.Release(testKeyW)
			}
		}()
	}
	wg.Wait()
}
