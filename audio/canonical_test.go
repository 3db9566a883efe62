package audio

import (
	"math"
	"testing"
)

func sine(freq float64, rate, channels int, seconds float64) []float32 {
	frames := int(float64(rate) * seconds)
	out := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			out[i*channels+c] = v
		}
	}
	return out
}

func TestCanonicalizeOutputLength(t *testing.T) {
	for _, tt := range []struct {
		name     string
		rate     int
		channels int
	}{
		{"8k mono", 8000, 1},
		{"16k mono", 16000, 1},
		{"44.1k stereo", 44100, 2},
		{"48k stereo", 48000, 2},
		{"48k 6ch", 48000, 6},
	} {
		t.Run(tt.name, func(t *testing.T) {
			src := sine(440, tt.rate, tt.channels, 0.5)
			got := Canonicalize(src, tt.rate, tt.channels, 16000)
			want := int(int64(len(src)/tt.channels) * 16000 / int64(tt.rate))
			if len(got) != want {
				t.Errorf("len = %d, want %d", len(got), want)
			}
		})
	}
}

func TestCanonicalizeIdentity(t *testing.T) {
	src := sine(440, 16000, 1, 0.1)
	got := Canonicalize(src, 16000, 1, 16000)
	for i, s := range src {
		want := int16(s * 32767)
		if got[i] != want {
			t.Fatalf("sample %d: got %d, want %d", i, got[i], want)
		}
	}
}

func TestCanonicalizeClamps(t *testing.T) {
	got := Canonicalize([]float32{2.0, -2.0}, 16000, 1, 16000)
	if got[0] != 32767 {
		t.Errorf("positive clip: got %d", got[0])
	}
	if got[1] != -32768 {
		t.Errorf("negative clip: got %d", got[1])
	}
}

func TestCanonicalizeDownmixAveragesChannels(t *testing.T) {
	// L=+0.5, R=-0.5 cancels to silence.
	src := []float32{0.5, -0.5, 0.5, -0.5}
	got := Canonicalize(src, 16000, 2, 16000)
	for i, s := range got {
		if s != 0 {
			t.Errorf("frame %d: got %d, want 0", i, s)
		}
	}
}

func TestPCM16BytesRoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 12345}
	got := PCM16Samples(PCM16Bytes(in))
	if len(got) != len(in) {
		t.Fatalf("len = %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], in[i])
		}
	}
}
