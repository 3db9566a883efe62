package encoder

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVWriter streams canonical PCM16 into a WAV file. The header is
// finalized on Close, so an abandoned file is simply deleted, never
// repaired.
type WAVWriter struct {
	mu     sync.Mutex
	file   *os.File
	enc    *wav.Encoder
	frames uint64
	closed bool
}

func NewWAVWriter(path string) (*WAVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating wav file: %w", err)
	}
	enc := wav.NewEncoder(f, SampleRate, BitsPerSample, Channels, 1)
	return &WAVWriter{file: f, enc: enc}, nil
}

// WriteSamples appends int16 frames to the file.
func (w *WAVWriter) WriteSamples(samples []int16) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("wav writer closed")
	}
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: Channels, SampleRate: SampleRate},
		SourceBitDepth: BitsPerSample,
		Data:           data,
	}
	if err := w.enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav frames: %w", err)
	}
	w.frames += uint64(len(samples))
	return nil
}

// Frames returns the number of mono frames written so far.
func (w *WAVWriter) Frames() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Path returns the destination file path.
func (w *WAVWriter) Path() string {
	return w.file.Name()
}

// Close finalizes the WAV header and closes the file. Safe to call twice.
func (w *WAVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.enc.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return w.file.Close()
}

// DecodeWAV reads a canonical recording back as normalized float32
// samples in [-1, 1]. The capture layer guarantees mono 16 kHz PCM16,
// so no resampling happens here; a file that violates the contract is
// rejected.
func DecodeWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	if buf.Format.NumChannels != Channels || buf.Format.SampleRate != SampleRate {
		return nil, fmt.Errorf("%s: got %dch %dHz, want %dch %dHz",
			path, buf.Format.NumChannels, buf.Format.SampleRate, Channels, SampleRate)
	}

	samples := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float32(s) / 32768.0
	}
	return samples, nil
}
