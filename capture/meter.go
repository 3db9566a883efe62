package capture

import (
	"math"
	"sync"
	"time"
)

// Meter is the live input level, both values normalized into [0, 1].
type Meter struct {
	Average float64 // RMS level
	Peak    float64 // peak absolute sample magnitude
}

const (
	// Levels below this floor render as zero; 0 dBFS renders as one.
	meterFloorDB = -60.0
	// Exponential smoothing toward the new reading keeps the meter
	// from jittering at callback rate.
	meterSmoothing = 0.3
)

type meterState struct {
	mu          sync.Mutex
	value       Meter
	interval    time.Duration
	lastPublish time.Time
}

func (m *meterState) reset(interval time.Duration) {
	m.mu.Lock()
	m.value = Meter{}
	m.interval = interval
	m.lastPublish = time.Time{}
	m.mu.Unlock()
}

func (m *meterState) current() Meter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// update folds a buffer into the smoothed meter. The second return is
// true at most once per interval, throttling publication so the writer
// path never starves on UI updates.
func (m *meterState) update(samples []int16, now time.Time) (Meter, bool) {
	if len(samples) == 0 {
		return m.current(), false
	}

	var sumSquares float64
	var peak float64
	for _, s := range samples {
		v := math.Abs(float64(s) / 32768.0)
		sumSquares += v * v
		if v > peak {
			peak = v
		}
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))

	target := Meter{
		Average: normalizeDB(rms),
		Peak:    normalizeDB(peak),
	}

	m.mu.Lock()
	m.value.Average += meterSmoothing * (target.Average - m.value.Average)
	m.value.Peak += meterSmoothing * (target.Peak - m.value.Peak)
	value := m.value
	publish := now.Sub(m.lastPublish) >= m.interval
	if publish {
		m.lastPublish = now
	}
	m.mu.Unlock()

	return value, publish
}

// normalizeDB maps a linear magnitude onto [0, 1] linearly in decibels
// over [meterFloorDB, 0].
func normalizeDB(v float64) float64 {
	if v <= 0 {
		return 0
	}
	db := 20 * math.Log10(v)
	if db <= meterFloorDB {
		return 0
	}
	if db >= 0 {
		return 1
	}
	return (db - meterFloorDB) / -meterFloorDB
}
