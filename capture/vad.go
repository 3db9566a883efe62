package capture

import (
	"sync"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/yuemingist/VoiceInk-sub002/encoder"
)

const (
	vadMode       = 3
	vadFrameMs    = 20
	vadFrameBytes = encoder.SampleRate * vadFrameMs / 1000 * 2 // 640 bytes
)

// vadProcessor chunks the capture stream into 20ms frames and counts
// which of them carry speech, feeding the silence monitor.
type vadProcessor struct {
	vad *webrtcvad.VAD

	mu           sync.Mutex
	buf          []byte
	bytes        int
	totalFrames  int
	speechFrames int
	tickTotal    int
	tickSpeech   int
}

// newVADProcessor returns nil when the VAD cannot be initialized;
// capture proceeds without silence detection in that case.
func newVADProcessor() *vadProcessor {
	v, err := webrtcvad.New()
	if err != nil {
		return nil
	}
	if err := v.SetMode(vadMode); err != nil {
		return nil
	}
	return &vadProcessor{vad: v}
}

func (p *vadProcessor) Process(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = append(p.buf, data...)
	p.bytes += len(data)
	for len(p.buf) >= vadFrameBytes {
		frame := p.buf[:vadFrameBytes]
		p.buf = p.buf[vadFrameBytes:]

		active, err := p.vad.Process(encoder.SampleRate, frame)
		if err != nil {
			continue
		}
		p.totalFrames++
		if active {
			p.speechFrames++
		}
	}
}

// bytesSeen reports how much capture data has reached the detector.
func (p *vadProcessor) bytesSeen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bytes
}

const speechThreshold = 0.10 // share of frames that must be speech

// HasSpeechTick reports whether speech was present since the last tick.
func (p *vadProcessor) HasSpeechTick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.totalFrames - p.tickTotal
	s := p.speechFrames - p.tickSpeech
	p.tickTotal, p.tickSpeech = p.totalFrames, p.speechFrames
	if t == 0 {
		return false
	}
	return float64(s)/float64(t) >= speechThreshold
}
