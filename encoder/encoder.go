// Package encoder owns the canonical audio contract: every recording in
// this program is mono 16 kHz 16-bit PCM, written to WAV for interchange
// with the transcription engine and optionally FLAC-compressed for
// cloud upload.
package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// BytesPerSecond of canonical PCM16 audio.
const BytesPerSecond = SampleRate * Channels * BitsPerSample / 8

// DurationSeconds returns the audio length of a canonical PCM byte count.
func DurationSeconds(pcmBytes int) float64 {
	return float64(pcmBytes) / float64(BytesPerSecond)
}
