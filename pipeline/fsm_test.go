package pipeline

import "testing"

func TestTransitionChain(t *testing.T) {
	chain := []struct {
		event Event
		want  State
	}{
		{EventStart, StateRecording},
		{EventStop, StateStopping},
		{EventStopped, StateDecoding},
		{EventDecoded, StateTranscribing},
		{EventTranscribed, StateEnhancing},
		{EventEnhanced, StatePersisting},
		{EventPersisted, StateDelivering},
		{EventDelivered, StateIdle},
	}

	state := StateIdle
	for _, step := range chain {
		next, err := Transition(state, step.event)
		if err != nil {
			t.Fatalf("Transition(%s, %s): %v", state, step.event, err)
		}
		if next != step.want {
			t.Fatalf("Transition(%s, %s) = %s, want %s", state, step.event, next, step.want)
		}
		state = next
	}
}

func TestTransitionCancelFromAnywhere(t *testing.T) {
	states := []State{
		StateIdle, StateRecording, StateStopping, StateDecoding,
		StateTranscribing, StateEnhancing, StatePersisting, StateDelivering,
	}
	for _, s := range states {
		for _, ev := range []Event{EventCancel, EventFail} {
			next, err := Transition(s, ev)
			if err != nil {
				t.Errorf("Transition(%s, %s): %v", s, ev, err)
			}
			if next != StateIdle {
				t.Errorf("Transition(%s, %s) = %s, want idle", s, ev, next)
			}
		}
	}
}

func TestTransitionInvalid(t *testing.T) {
	for _, tt := range []struct {
		state State
		event Event
	}{
		{StateIdle, EventStop},
		{StateIdle, EventDelivered},
		{StateRecording, EventStart},
		{StateTranscribing, EventStop},
		{StateDelivering, EventTranscribed},
	} {
		next, err := Transition(tt.state, tt.event)
		if err == nil {
			t.Errorf("Transition(%s, %s) accepted, got %s", tt.state, tt.event, next)
		}
		if next != tt.state {
			t.Errorf("invalid transition moved state: %s -> %s", tt.state, next)
		}
	}
}

func TestStateBusy(t *testing.T) {
	if StateIdle.Busy() || StateRecording.Busy() {
		t.Error("idle and recording must not report busy")
	}
	for _, s := range []State{StateStopping, StateDecoding, StateTranscribing, StateEnhancing, StatePersisting, StateDelivering} {
		if !s.Busy() {
			t.Errorf("%s.Busy() = false", s)
		}
	}
}
