//go:build linux

package hotkey

import "testing"

func TestChordStateToggle(t *testing.T) {
	var s chordState

	if _, fired := s.apply(keySpace, true, false); fired {
		t.Error("space without modifiers must not fire")
	}
	s.apply(keySpace, false, true)

	s.apply(keyLCtrl, true, false)
	s.apply(keyLShift, true, false)
	ev, fired := s.apply(keySpace, true, false)
	if !fired || ev != Toggle {
		t.Fatalf("chord press = (%v, %v), want Toggle", ev, fired)
	}

	// Held space must not refire.
	if _, fired := s.apply(keySpace, true, false); fired {
		t.Error("auto-repeat fired a second toggle")
	}
	s.apply(keySpace, false, true)
	if ev, fired := s.apply(keySpace, true, false); !fired || ev != Toggle {
		t.Error("chord should fire again after release")
	}
}

func TestChordStateCancel(t *testing.T) {
	var s chordState
	s.apply(keyRCtrl, true, false)
	s.apply(keyRShift, true, false)
	ev, fired := s.apply(keyEsc, true, false)
	if !fired || ev != Cancel {
		t.Fatalf("chord press = (%v, %v), want Cancel", ev, fired)
	}
}

func TestChordStateModifierRelease(t *testing.T) {
	var s chordState
	s.apply(keyLCtrl, true, false)
	s.apply(keyLShift, true, false)
	s.apply(keyLCtrl, false, true)
	if _, fired := s.apply(keySpace, true, false); fired {
		t.Error("chord fired after ctrl release")
	}
}
