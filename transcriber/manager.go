package transcriber

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNoTranscriber is returned by Acquire when no provider is active.
var ErrNoTranscriber = errors.New("no transcriber configured")

// Manager owns the active transcription provider and enforces single
// residency for local engines: activating a new provider closes the
// previous one, and at most one local model is ever loaded.
//
// Releases requested while a transcription is in flight are deferred
// until the last in-flight use finishes, so a model is never freed
// under a running inference.
type Manager struct {
	log zerolog.Logger

	mu             sync.Mutex
	active         Transcriber
	inflight       int
	pendingRelease bool
	retired        []Transcriber // replaced while busy, closed on drain
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{log: log}
}

// SetActive installs t as the active provider. The previous provider
// is closed first; if a transcription is running on it, the close is
// deferred until it drains.
func (m *Manager) SetActive(t Transcriber) error {
	m.mu.Lock()
	old := m.active
	m.active = t
	m.pendingRelease = false
	var closeErr error
	if old != nil {
		if m.inflight > 0 {
			m.retired = append(m.retired, old)
			m.log.Debug().Str("provider", old.Name()).Msg("provider retirement deferred until drain")
		} else {
			closeErr = old.Close()
		}
	}
	m.mu.Unlock()

	if closeErr != nil {
		m.log.Warn().Err(closeErr).Msg("closing previous provider")
	}
	if t != nil {
		m.log.Info().Str("provider", t.Name()).Msg("transcriber active")
	}
	return closeErr
}

// Acquire returns the active provider and a done func that must be
// called when the caller finishes using it. The provider will not be
// released while any acquisition is outstanding.
func (m *Manager) Acquire() (Transcriber, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, nil, ErrNoTranscriber
	}
	m.inflight++
	var once sync.Once
	done := func() { once.Do(m.release1) }
	return m.active, done, nil
}

func (m *Manager) release1() {
	m.mu.Lock()
	m.inflight--
	var toClose []Transcriber
	var released Transcriber
	if m.inflight == 0 {
		toClose = m.retired
		m.retired = nil
		if m.pendingRelease {
			m.pendingRelease = false
			released = m.active
		}
	}
	m.mu.Unlock()

	for _, t := range toClose {
		m.closeProvider(t, "retired provider closed")
	}
	if released != nil {
		m.closeProvider(released, "provider released")
	}
}

// Release frees the resources the active provider holds, typically a
// loaded local model. The provider stays configured and loads again
// lazily on its next use. When a transcription is in flight the
// release is recorded and honored once the work drains; calling
// Release again in the meantime is a no-op.
func (m *Manager) Release() {
	m.mu.Lock()
	if m.active == nil {
		m.mu.Unlock()
		return
	}
	if m.inflight > 0 {
		if !m.pendingRelease {
			m.pendingRelease = true
			m.log.Debug().Str("provider", m.active.Name()).Msg("release deferred, transcription in flight")
		}
		m.mu.Unlock()
		return
	}
	t := m.active
	m.mu.Unlock()

	m.closeProvider(t, "provider released")
}

func (m *Manager) closeProvider(t Transcriber, msg string) {
	if err := t.Close(); err != nil {
		m.log.Warn().Err(err).Str("provider", t.Name()).Msg("closing provider")
		return
	}
	m.log.Info().Str("provider", t.Name()).Msg(msg)
}

// Busy reports whether any transcription is in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight > 0
}

// Active returns the name of the active provider, or "".
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ""
	}
	return m.active.Name()
}

// WarmAsync warms the active provider in the background. Failures are
// logged only; Transcribe retries the load synchronously.
func (m *Manager) WarmAsync(ctx context.Context) {
	m.mu.Lock()
	t := m.active
	m.mu.Unlock()
	if t == nil {
		return
	}
	go func() {
		if err := t.Warm(ctx); err != nil {
			m.log.Warn().Err(err).Str("provider", t.Name()).Msg("provider warm-up failed")
		}
	}()
}

// Shutdown releases everything unconditionally. Callers must ensure
// no transcription is in flight.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	toClose := m.retired
	if m.active != nil {
		toClose = append(toClose, m.active)
		m.active = nil
	}
	m.retired = nil
	m.pendingRelease = false
	m.mu.Unlock()

	for _, t := range toClose {
		t.Close()
	}
}
