package deliver

import (
	"fmt"
	"sync"
)

// fakeSnapshot freezes the fake clipboard's contents at snapshot time.
type fakeSnapshot struct {
	content string
}

// FakeBoard is an in-memory clipboard recording the full history of
// writes.
type FakeBoard struct {
	mu       sync.Mutex
	content  string
	history  []string
	snapErr  error
	writeErr error
}

func NewFakeBoard(initial string) *FakeBoard {
	return &FakeBoard{content: initial}
}

func (b *FakeBoard) Snapshot() (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snapErr != nil {
		return nil, b.snapErr
	}
	return fakeSnapshot{content: b.content}, nil
}

func (b *FakeBoard) Restore(snap Snapshot) error {
	s, ok := snap.(fakeSnapshot)
	if !ok {
		return fmt.Errorf("restore: foreign snapshot %T", snap)
	}
	return b.Write(s.content)
}

func (b *FakeBoard) Write(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	b.content = text
	b.history = append(b.history, text)
	return nil
}

func (b *FakeBoard) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

func (b *FakeBoard) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.history...)
}

func (b *FakeBoard) SetSnapshotErr(err error) { b.mu.Lock(); b.snapErr = err; b.mu.Unlock() }
func (b *FakeBoard) SetWriteErr(err error)    { b.mu.Lock(); b.writeErr = err; b.mu.Unlock() }
