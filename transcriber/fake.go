package transcriber

import (
	"context"
	"sync"
	"time"
)

// Fake is a test double. It records every call and can be configured
// to fail, delay, or block until the context is canceled.
type Fake struct {
	FakeName string
	Text     string
	Err      error
	WarmErr  error
	Delay    time.Duration

	mu         sync.Mutex
	calls      []Options
	sampleLens []int
	warmCalls  int
	closed     bool
}

func NewFake(text string, err error) *Fake {
	return &Fake{FakeName: "fake", Text: text, Err: err}
}

func (f *Fake) Name() string {
	if f.FakeName == "" {
		return "fake"
	}
	return f.FakeName
}

func (f *Fake) Warm(context.Context) error {
	f.mu.Lock()
	f.warmCalls++
	f.mu.Unlock()
	return f.WarmErr
}

func (f *Fake) Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.sampleLens = append(f.sampleLens, len(samples))
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if f.Err != nil {
		return Result{}, &TranscriptionError{Provider: f.Name(), Err: f.Err}
	}
	return Result{
		Text:     f.Text,
		Duration: float64(len(samples)) / 16000.0,
	}, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *Fake) Calls() []Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Options(nil), f.calls...)
}

func (f *Fake) WarmCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.warmCalls
}

func (f *Fake) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
