package capture

import "time"

const (
	silenceWarnEvery = 8 * time.Second
	speechMinRatio   = 0.10
	speechClearRatio = 0.25 // higher threshold to clear warning (hysteresis)
)

// SilenceEvent reports speech-presence transitions during a recording.
type SilenceEvent int

const (
	SilenceNone      SilenceEvent = iota
	SilenceWarn                   // no voice detected for the warn window
	SilenceWarnClear              // speech resumed after a warning
	SilenceRepeat                 // still silent, warn window elapsed again
)

// silenceMonitor tracks a rolling window of per-tick speech flags and
// emits warn/clear events with hysteresis.
type silenceMonitor struct {
	warnAt int

	ticks    int
	window   []bool
	warned   bool
	lastWarn int
}

func newSilenceMonitor() *silenceMonitor {
	warnAt := int(silenceWarnEvery / silenceTickInterval)
	return &silenceMonitor{
		warnAt: warnAt,
		window: make([]bool, warnAt),
	}
}

func (m *silenceMonitor) ratio() float64 {
	n := m.warnAt
	if m.ticks < n {
		n = m.ticks
	}
	if n == 0 {
		return 1.0
	}
	count := 0
	for i := 0; i < n; i++ {
		if m.window[(m.ticks-1-i+len(m.window))%len(m.window)] {
			count++
		}
	}
	return float64(count) / float64(n)
}

func (m *silenceMonitor) Tick(hasSpeech bool) SilenceEvent {
	m.window[m.ticks%len(m.window)] = hasSpeech
	m.ticks++

	r := m.ratio()

	if m.ticks >= m.warnAt && r < speechMinRatio && !m.warned {
		m.warned = true
		m.lastWarn = m.ticks
		return SilenceWarn
	}
	if m.warned && r >= speechClearRatio {
		m.warned = false
		return SilenceWarnClear
	}
	if m.warned && m.ticks-m.lastWarn >= m.warnAt {
		m.lastWarn = m.ticks
		return SilenceRepeat
	}
	return SilenceNone
}
