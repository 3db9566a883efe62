package audio

// Canonicalize converts interleaved float samples of any rate and
// channel count into mono 16 kHz int16 frames, the one format the rest
// of the pipeline understands. Channels are averaged, then the mono
// signal is linearly resampled.
func Canonicalize(samples []float32, srcRate, srcChannels, dstRate int) []int16 {
	if srcChannels < 1 || srcRate <= 0 || dstRate <= 0 {
		return nil
	}

	mono := samples
	if srcChannels > 1 {
		frames := len(samples) / srcChannels
		mono = make([]float32, frames)
		for i := 0; i < frames; i++ {
			var sum float32
			for c := 0; c < srcChannels; c++ {
				sum += samples[i*srcChannels+c]
			}
			mono[i] = sum / float32(srcChannels)
		}
	}

	out := mono
	if srcRate != dstRate {
		n := int(int64(len(mono)) * int64(dstRate) / int64(srcRate))
		out = make([]float32, n)
		step := float64(srcRate) / float64(dstRate)
		for i := range out {
			pos := float64(i) * step
			j := int(pos)
			if j >= len(mono)-1 {
				out[i] = mono[len(mono)-1]
				continue
			}
			frac := float32(pos - float64(j))
			out[i] = mono[j]*(1-frac) + mono[j+1]*frac
		}
	}

	pcm := make([]int16, len(out))
	for i, s := range out {
		v := s * 32767
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		pcm[i] = int16(v)
	}
	return pcm
}

// PCM16Bytes packs int16 frames as little-endian bytes, the wire shape
// capture callbacks use.
func PCM16Bytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(uint16(s) >> 8)
	}
	return data
}

// PCM16Samples unpacks little-endian S16LE bytes into int16 frames.
func PCM16Samples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
	}
	return samples
}
