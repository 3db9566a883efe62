// Package pipeline drives one dictation from key press to delivered
// text through a fixed sequence of stages.
package pipeline

import "fmt"

type State string

type Event string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateStopping     State = "stopping"
	StateDecoding     State = "decoding"
	StateTranscribing State = "transcribing"
	StateEnhancing    State = "enhancing"
	StatePersisting   State = "persisting"
	StateDelivering   State = "delivering"
)

const (
	EventStart       Event = "start"
	EventStop        Event = "stop"
	EventStopped     Event = "stopped"
	EventDecoded     Event = "decoded"
	EventTranscribed Event = "transcribed"
	EventEnhanced    Event = "enhanced"
	EventPersisted   Event = "persisted"
	EventDelivered   Event = "delivered"
	EventCancel      Event = "cancel"
	EventFail        Event = "fail"
)

var transitions = map[State]map[Event]State{
	StateIdle:         {EventStart: StateRecording},
	StateRecording:    {EventStop: StateStopping},
	StateStopping:     {EventStopped: StateDecoding},
	StateDecoding:     {EventDecoded: StateTranscribing},
	StateTranscribing: {EventTranscribed: StateEnhancing},
	StateEnhancing:    {EventEnhanced: StatePersisting},
	StatePersisting:   {EventPersisted: StateDelivering},
	StateDelivering:   {EventDelivered: StateIdle},
}

// Transition is the pure state function. Cancel and fail are accepted
// in every state and land on idle, which makes cancellation
// idempotent; any other event is only valid at its place in the
// chain.
func Transition(current State, event Event) (State, error) {
	switch event {
	case EventCancel, EventFail:
		return StateIdle, nil
	}

	next, ok := transitions[current][event]
	if !ok {
		return current, fmt.Errorf("invalid transition: %s --(%s)--> ?", current, event)
	}
	return next, nil
}

// Busy reports whether the state belongs to a run that is past
// recording and cannot accept a new start.
func (s State) Busy() bool {
	switch s {
	case StateIdle, StateRecording:
		return false
	}
	return true
}
