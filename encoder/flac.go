package encoder

import (
	"bytes"
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// EncodeFlac compresses canonical PCM16 samples losslessly for cloud
// upload. Verbatim prediction keeps encode time negligible next to the
// network round-trip while still cutting payload size roughly in half
// for speech.
func EncodeFlac(samples []int16) ([]byte, error) {
	var buf bytes.Buffer
	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    SampleRate,
		NChannels:     Channels,
		BitsPerSample: BitsPerSample,
		NSamples:      uint64(len(samples)),
	}
	enc, err := flac.NewEncoder(&buf, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)

	for off := 0; off < len(samples); off += BlockSize {
		end := min(off+BlockSize, len(samples))
		if err := writeFlacBlock(enc, samples[off:end]); err != nil {
			return nil, err
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalizing flac stream: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFlacBlock(enc *flac.Encoder, block []int16) error {
	samples32 := make([]int32, len(block))
	for i, s := range block {
		samples32[i] = int32(s)
	}

	subframe := &frame.Subframe{
		SubHeader: frame.SubHeader{
			Pred: frame.PredVerbatim,
		},
		Samples:  samples32,
		NSamples: len(block),
	}

	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(len(block)),
			SampleRate:    SampleRate,
			Channels:      frame.ChannelsMono,
			BitsPerSample: BitsPerSample,
		},
		Subframes: []*frame.Subframe{subframe},
	}

	if err := enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	return nil
}
