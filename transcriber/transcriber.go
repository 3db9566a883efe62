// Package transcriber turns canonical 16kHz mono audio into text.
// A local whisper.cpp engine and cloud providers (Groq, OpenAI) share
// one interface; the Manager owns which provider is active and keeps
// at most one local model resident.
package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Options configure a single transcription request.
type Options struct {
	Language string // ISO 639-1 code, empty for auto-detect
	Prompt   string // optional domain vocabulary hint
}

type Segment struct {
	Text             string
	NoSpeechProb     float64
	AvgLogProb       float64
	CompressionRatio float64
	Temperature      float64
	Start            float64
	End              float64
}

type Result struct {
	Text         string
	Duration     float64
	Segments     []Segment
	NoSpeechProb float64
	AvgLogProb   float64
	RateLimit    string
	Metrics      *NetworkMetrics
}

// Transcriber is a speech-to-text provider. Warm prepares the provider
// ahead of time (loads a local model, pre-opens a TLS connection) and
// is always safe to call concurrently with nothing else in flight.
// Close frees whatever the provider currently holds; a provider used
// again after Close reacquires its resources lazily.
type Transcriber interface {
	Name() string
	Warm(ctx context.Context) error
	Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error)
	Close() error
}

// ModelLoadError reports a local model that could not be loaded.
type ModelLoadError struct {
	Model string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Model, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// TranscriptionError reports a failed transcription request.
type TranscriptionError struct {
	Provider string
	Err      error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("%s transcription: %v", e.Provider, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}
