package audio

import (
	"fmt"
	"sync"
	"time"
)

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // canonical 16-bit mono
	fakeFeedInterval  = time.Millisecond
)

// FakeContext is the in-process capture backend for tests. It serves a
// configurable device list (so monitor tests can simulate hotplug) and
// hands out captures that replay a canned source signal, canonicalized
// from whatever rate/channel layout the test configured.
type FakeContext struct {
	mu       sync.Mutex
	devices  []DeviceInfo
	pcm      []byte
	captures []*FakeCapture
	failNext bool
}

func NewFakeContext(devices ...DeviceInfo) *FakeContext {
	return &FakeContext{devices: devices}
}

// SetSource installs the signal every subsequent capture replays.
func (f *FakeContext) SetSource(samples []float32, rate, channels int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pcm = PCM16Bytes(Canonicalize(samples, rate, channels, 16000))
}

// SetDevices replaces the advertised device list (hotplug simulation).
func (f *FakeContext) SetDevices(devices ...DeviceInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = devices
}

// FailNextCapture makes the next NewCapture call return an error.
func (f *FakeContext) FailNextCapture() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = true
}

// Captures returns every capture handed out so far, in creation order.
func (f *FakeContext) Captures() []*FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeCapture(nil), f.captures...)
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DeviceInfo(nil), f.devices...), nil
}

func (f *FakeContext) NewCapture(device *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return nil, fmt.Errorf("fake capture failure")
	}
	name := "system default"
	if device != nil && !device.IsDefault() {
		name = device.Name
	}
	c := &FakeCapture{name: name, pcm: f.pcm}
	f.captures = append(f.captures, c)
	return c, nil
}

func (f *FakeContext) Close() {}

// FakeCapture replays its source once, then feeds silence until
// stopped, mirroring a live microphone that has gone quiet.
type FakeCapture struct {
	name string
	pcm  []byte

	mu       sync.Mutex
	cb       DataCallback
	started  bool
	stopCh   chan struct{}
	feedDone chan struct{}
	closed   bool
}

func (c *FakeCapture) SetCallback(cb DataCallback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

func (c *FakeCapture) ClearCallback() {
	c.mu.Lock()
	c.cb = nil
	c.mu.Unlock()
}

func (c *FakeCapture) DeviceName() string { return c.name }

// Started reports whether Start was ever called.
func (c *FakeCapture) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Closed reports whether Close was called.
func (c *FakeCapture) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *FakeCapture) Start() error {
	c.mu.Lock()
	c.started = true
	c.stopCh = make(chan struct{})
	c.feedDone = make(chan struct{})
	stopCh, feedDone := c.stopCh, c.feedDone
	c.mu.Unlock()

	chunkBytes := fakeFrameSize * fakeBytesPerFrame

	go func() {
		defer close(feedDone)
		pos := 0
		silence := make([]byte, chunkBytes)
		for {
			select {
			case <-stopCh:
				return
			case <-time.After(fakeFeedInterval):
			}

			c.mu.Lock()
			cb := c.cb
			c.mu.Unlock()
			if cb == nil {
				continue
			}

			if pos < len(c.pcm) {
				end := min(pos+chunkBytes, len(c.pcm))
				chunk := make([]byte, end-pos)
				copy(chunk, c.pcm[pos:end])
				pos = end
				cb(chunk, uint32(len(chunk)/fakeBytesPerFrame))
			} else {
				cb(silence, fakeFrameSize)
			}
		}
	}()
	return nil
}

func (c *FakeCapture) Stop() {
	c.mu.Lock()
	stopCh, feedDone := c.stopCh, c.feedDone
	c.mu.Unlock()
	if stopCh == nil {
		return
	}
	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
	<-feedDone
}

func (c *FakeCapture) Close() {
	c.Stop()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
