// Package hotkey watches for the global dictation chords.
// Ctrl+Shift+Space toggles recording, Ctrl+Shift+Escape cancels the
// run in flight.
package hotkey

// Event is one recognized chord press.
type Event int

const (
	Toggle Event = iota
	Cancel
)

type Listener interface {
	Register() error
	Unregister()
	Events() <-chan Event
}
