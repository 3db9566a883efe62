package encoder

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	// 0.5s of a 440Hz tone at half amplitude.
	n := SampleRate / 2
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(16384 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}

	w, err := NewWAVWriter(path)
	if err != nil {
		t.Fatalf("NewWAVWriter: %v", err)
	}
	if err := w.WriteSamples(samples[:n/2]); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if err := w.WriteSamples(samples[n/2:]); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if got := w.Frames(); got != uint64(n) {
		t.Errorf("Frames() = %d, want %d", got, n)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	decoded, err := DecodeWAV(path)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if len(decoded) != n {
		t.Fatalf("decoded %d samples, want %d", len(decoded), n)
	}
	for i, want := range samples {
		got := decoded[i] * 32768.0
		if math.Abs(float64(got)-float64(want)) > 1.0 {
			t.Fatalf("sample %d: got %f, want %d", i, got, want)
		}
	}
}

func TestDecodeWAVRejectsMissingFile(t *testing.T) {
	if _, err := DecodeWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEncodeFlac(t *testing.T) {
	samples := make([]int16, BlockSize+BlockSize/2)
	for i := range samples {
		samples[i] = int16(i % 512)
	}
	data, err := EncodeFlac(samples)
	if err != nil {
		t.Fatalf("EncodeFlac: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty flac output")
	}
	if string(data[:4]) != "fLaC" {
		t.Errorf("bad stream marker: %q", data[:4])
	}
}

func TestDurationSeconds(t *testing.T) {
	if got := DurationSeconds(BytesPerSecond * 2); got != 2.0 {
		t.Errorf("DurationSeconds = %f, want 2.0", got)
	}
}
