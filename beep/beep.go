// Package beep plays short audio cues for dictation lifecycle
// events, so the user hears when recording starts, stops, or goes
// wrong without looking at a terminal.
package beep

import (
	"math"
	"sync"
)

var disabled bool

// Disable turns all cues off.
func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start cue: high pitch, snappy
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// Stop cue: medium pitch, slightly longer
	stopFreq   = 900
	stopVolume = 0.5
	stopDecay  = 40

	// Cancel cue: falling pitch, quiet
	cancelFreq   = 600
	cancelVolume = 0.4
	cancelDecay  = 50

	// Error cue: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

var (
	startSamples  []int16
	stopSamples   []int16
	cancelSamples []int16
	errorSamples  []int16
	soundOnce     sync.Once
)

func initSound() {
	startSamples = tick(startFreq, 0.2, startVolume, startDecay)
	stopSamples = tick(stopFreq, 0.2, stopVolume, stopDecay)
	cancelSamples = tick(cancelFreq, 0.15, cancelVolume, cancelDecay)
	errorSamples = doubleBeep(errorFreq, 0.08, 0.05, errorVolume, errorDecay)
	initBackend()
}

// tick synthesizes a mono sine burst with an exponential envelope.
// The 200ms tail gives the output buffer time to fill before the
// envelope dies off.
func tick(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

func doubleBeep(freq, beepDur, gapDur, volume, decay float64) []int16 {
	one := tick(freq, beepDur, volume, decay)
	gap := make([]int16, int(sampleRate*gapDur))
	out := make([]int16, 0, len(one)*2+len(gap))
	out = append(out, one...)
	out = append(out, gap...)
	out = append(out, one...)
	return out
}

type cue int

const (
	cueStart cue = iota
	cueStop
	cueCancel
	cueError
)

func play(c cue) {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	var samples []int16
	switch c {
	case cueStart:
		samples = startSamples
	case cueStop:
		samples = stopSamples
	case cueCancel:
		samples = cancelSamples
	case cueError:
		samples = errorSamples
	}
	go playSamples(samples)
}

func PlayStart()  { play(cueStart) }
func PlayStop()   { play(cueStop) }
func PlayCancel() { play(cueCancel) }
func PlayError()  { play(cueError) }
