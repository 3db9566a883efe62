// Package deliver puts finished transcripts where the user wants
// them: on the clipboard, and optionally pasted into the focused
// application with the previous clipboard contents restored after.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrPasteUnavailable means the synthetic keystroke backend cannot
// run on this system. Delivery degrades to clipboard-only.
var ErrPasteUnavailable = errors.New("paste keystroke unavailable")

// ErrEmptyText is returned when there is nothing to deliver.
var ErrEmptyText = errors.New("empty text")

// DefaultRestoreDelay is how long the transcript stays on the
// clipboard after the paste keystroke before the previous contents
// come back. Target applications read the clipboard asynchronously,
// so restoring immediately would race the paste.
const DefaultRestoreDelay = 600 * time.Millisecond

// Snapshot is an opaque capture of every clipboard representation a
// Board can enumerate. Only the Board that produced a snapshot knows
// how to restore it; the gateway never looks inside. A nil Snapshot
// means there is nothing to restore.
type Snapshot any

// Board abstracts the system clipboard so tests can run headless and
// richer backends can preserve more than plain text across a paste.
type Board interface {
	Snapshot() (Snapshot, error)
	Restore(snap Snapshot) error
	Write(text string) error
}

// Options control one delivery.
type Options struct {
	Paste        bool          // send a paste keystroke after copying
	RestoreDelay time.Duration // 0 means DefaultRestoreDelay
}

// Outcome reports what actually happened.
type Outcome struct {
	Pasted   bool
	Restored bool
}

// Gateway performs deliveries. Construct with NewGateway.
type Gateway struct {
	board Board
	paste func() error
	log   zerolog.Logger
}

func NewGateway(board Board, log zerolog.Logger) *Gateway {
	if board == nil {
		board = systemBoard{}
	}
	return &Gateway{board: board, paste: sendPaste, log: log}
}

// Deliver copies text to the clipboard and, when requested, pastes it
// and restores the previous clipboard contents afterwards.
//
// A failed paste is not fatal: the transcript stays on the clipboard
// and the previous contents are not restored, so nothing is lost.
// Cancellation during the restore wait still restores before
// returning; the snapshot must never leak.
func (g *Gateway) Deliver(ctx context.Context, text string, opts Options) (Outcome, error) {
	if text == "" {
		return Outcome{}, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	var snapshot Snapshot
	if opts.Paste {
		snap, err := g.board.Snapshot()
		if err != nil {
			g.log.Warn().Err(err).Msg("clipboard snapshot failed, previous contents will not be restored")
		} else {
			snapshot = snap
		}
	}

	if err := g.board.Write(text); err != nil {
		return Outcome{}, fmt.Errorf("copy to clipboard: %w", err)
	}
	if !opts.Paste {
		return Outcome{}, nil
	}

	if err := g.paste(); err != nil {
		g.log.Warn().Err(err).Msg("paste unavailable, transcript left on clipboard")
		return Outcome{}, nil
	}

	out := Outcome{Pasted: true}
	if snapshot == nil {
		return out, nil
	}

	delay := opts.RestoreDelay
	if delay == 0 {
		delay = DefaultRestoreDelay
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}

	if err := g.board.Restore(snapshot); err != nil {
		return out, fmt.Errorf("restore clipboard: %w", err)
	}
	out.Restored = true
	return out, nil
}
