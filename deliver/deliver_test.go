package deliver

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestGateway(board Board, paste func() error) *Gateway {
	g := NewGateway(board, zerolog.Nop())
	if paste != nil {
		g.paste = paste
	}
	return g
}

func TestDeliverClipboardOnly(t *testing.T) {
	board := NewFakeBoard("previous")
	g := newTestGateway(board, func() error {
		t.Error("paste must not run when Paste is off")
		return nil
	})

	out, err := g.Deliver(context.Background(), "hello", Options{})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if out.Pasted || out.Restored {
		t.Errorf("Outcome = %+v, want neither pasted nor restored", out)
	}
	if board.Content() != "hello" {
		t.Errorf("clipboard = %q, want transcript", board.Content())
	}
}

func TestDeliverPasteAndRestore(t *testing.T) {
	board := NewFakeBoard("previous")
	pasted := false
	g := newTestGateway(board, func() error {
		pasted = true
		if got := board.Content(); got != "hello" {
			t.Errorf("clipboard during paste = %q, want transcript", got)
		}
		return nil
	})

	out, err := g.Deliver(context.Background(), "hello", Options{Paste: true, RestoreDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if !pasted {
		t.Error("paste keystroke not sent")
	}
	if !out.Pasted || !out.Restored {
		t.Errorf("Outcome = %+v, want pasted and restored", out)
	}
	if board.Content() != "previous" {
		t.Errorf("clipboard = %q, want snapshot restored", board.Content())
	}
	if h := board.History(); len(h) != 2 || h[0] != "hello" || h[1] != "previous" {
		t.Errorf("write history = %v", h)
	}
}

func TestDeliverPasteUnavailableDegrades(t *testing.T) {
	board := NewFakeBoard("previous")
	g := newTestGateway(board, func() error { return ErrPasteUnavailable })

	out, err := g.Deliver(context.Background(), "hello", Options{Paste: true, RestoreDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if out.Pasted {
		t.Error("Pasted = true despite unavailable backend")
	}
	// Degraded mode leaves the transcript for a manual paste.
	if board.Content() != "hello" {
		t.Errorf("clipboard = %q, want transcript preserved", board.Content())
	}
}

func TestDeliverSnapshotFailureSkipsRestore(t *testing.T) {
	board := NewFakeBoard("previous")
	board.SetSnapshotErr(errors.New("clipboard busy"))
	g := newTestGateway(board, func() error { return nil })

	out, err := g.Deliver(context.Background(), "hello", Options{Paste: true, RestoreDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if !out.Pasted || out.Restored {
		t.Errorf("Outcome = %+v, want pasted without restore", out)
	}
	board.SetSnapshotErr(nil)
	if board.Content() != "hello" {
		t.Errorf("clipboard = %q", board.Content())
	}
}

// richSnapshot and richBoard model a platform backend that can
// enumerate more than plain text.
type richSnapshot struct {
	text  string
	image []byte
}

type richBoard struct {
	mu    sync.Mutex
	text  string
	image []byte
}

func (b *richBoard) Snapshot() (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return richSnapshot{text: b.text, image: append([]byte(nil), b.image...)}, nil
}

func (b *richBoard) Restore(snap Snapshot) error {
	s, ok := snap.(richSnapshot)
	if !ok {
		return errors.New("foreign snapshot")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = s.text
	b.image = append([]byte(nil), s.image...)
	return nil
}

func (b *richBoard) Write(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	// A plain text write replaces every representation.
	b.text = text
	b.image = nil
	return nil
}

func TestDeliverRestoresAllRepresentations(t *testing.T) {
	board := &richBoard{text: "note", image: []byte{0x89, 0x50, 0x4e, 0x47}}
	g := newTestGateway(board, func() error { return nil })

	out, err := g.Deliver(context.Background(), "hello", Options{Paste: true, RestoreDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if !out.Restored {
		t.Fatal("snapshot not restored")
	}

	board.mu.Lock()
	defer board.mu.Unlock()
	if board.text != "note" {
		t.Errorf("text representation = %q, want original", board.text)
	}
	if !bytes.Equal(board.image, []byte{0x89, 0x50, 0x4e, 0x47}) {
		t.Errorf("image representation = %v, want original bytes", board.image)
	}
}

func TestDeliverCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	board := NewFakeBoard("previous")
	g := newTestGateway(board, func() error { return nil })
	if _, err := g.Deliver(ctx, "hello", Options{}); err == nil {
		t.Error("expected context error")
	}
	if board.Content() != "previous" {
		t.Error("canceled delivery must not touch the clipboard")
	}
}

func TestDeliverCancelDuringRestoreWaitStillRestores(t *testing.T) {
	board := NewFakeBoard("previous")
	g := newTestGateway(board, func() error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	out, err := g.Deliver(ctx, "hello", Options{Paste: true, RestoreDelay: 10 * time.Second})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if !out.Restored {
		t.Error("cancellation must not skip the snapshot restore")
	}
	if board.Content() != "previous" {
		t.Errorf("clipboard = %q, want snapshot", board.Content())
	}
}

func TestDeliverEmptyText(t *testing.T) {
	g := newTestGateway(NewFakeBoard(""), nil)
	if _, err := g.Deliver(context.Background(), "", Options{}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Deliver(\"\") = %v, want ErrEmptyText", err)
	}
}

func TestDeliverWriteError(t *testing.T) {
	board := NewFakeBoard("previous")
	board.SetWriteErr(errors.New("no display"))
	g := newTestGateway(board, nil)
	if _, err := g.Deliver(context.Background(), "hello", Options{}); err == nil {
		t.Error("expected clipboard write error")
	}
}
