package deliver

import (
	"fmt"

	cb "github.com/atotto/clipboard"
)

// textSnapshot is the single representation atotto/clipboard can
// enumerate. With this backend, non-text clipboard contents are not
// preserved across a paste; a multi-type platform backend returns its
// own snapshot type instead.
type textSnapshot string

// systemBoard is the real clipboard.
type systemBoard struct{}

func (systemBoard) Snapshot() (Snapshot, error) {
	text, err := cb.ReadAll()
	if err != nil {
		return nil, err
	}
	return textSnapshot(text), nil
}

func (systemBoard) Restore(snap Snapshot) error {
	text, ok := snap.(textSnapshot)
	if !ok {
		return fmt.Errorf("restore: foreign snapshot %T", snap)
	}
	return cb.WriteAll(string(text))
}

func (systemBoard) Write(text string) error {
	return cb.WriteAll(text)
}
