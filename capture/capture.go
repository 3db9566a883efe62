// Package capture records microphone audio into a canonical PCM sink,
// metering levels as it goes and surviving device hotplug mid-recording.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yuemingist/VoiceInk-sub002/audio"
	"github.com/yuemingist/VoiceInk-sub002/encoder"
)

var (
	ErrAlreadyRecording = errors.New("capture already in progress")
	ErrNotRecording     = errors.New("no capture in progress")
)

const (
	defaultMeterInterval = 30 * time.Millisecond
	defaultSettleDelay   = 100 * time.Millisecond
	silenceTickInterval  = 100 * time.Millisecond
)

// Sink receives canonical mono 16kHz PCM16 frames.
type Sink interface {
	WriteSamples(samples []int16) error
	Close() error
}

// Session is one continuous recording writing to one sink. At most one
// session is open per Recorder.
type Session struct {
	Device    audio.DeviceInfo
	StartedAt time.Time

	sink    Sink
	capture audio.CaptureDevice
	vad     *vadProcessor
	frames  atomic.Uint64

	mu       sync.Mutex
	writeErr error // first sink error; surfaced on Stop
	stalled  bool  // reconfiguration failed, stream is down
}

// Stats summarizes a finished session.
type Stats struct {
	Frames   uint64
	Duration time.Duration
	Device   string
}

// Options tunes a Recorder. Zero values pick the defaults above.
type Options struct {
	MeterInterval time.Duration
	SettleDelay   time.Duration
	OnLevel       func(Meter)
	OnSilence     func(SilenceEvent)
	OnError       func(error)
}

// Recorder owns the capture stream lifecycle. It resolves the device
// through the monitor at start, and transparently reopens the stream
// against the new device when the monitor reports a change.
type Recorder struct {
	ctx     audio.Context
	monitor *audio.Monitor

	meterInterval time.Duration
	settleDelay   time.Duration
	onLevel       func(Meter)
	onSilence     func(SilenceEvent)
	onError       func(error)

	mu    sync.Mutex
	sess  *Session
	unsub func()

	meter         meterState
	reconfiguring atomic.Bool
	reconfigWG    sync.WaitGroup

	tickStop chan struct{}
	tickDone chan struct{}
}

func NewRecorder(ctx audio.Context, monitor *audio.Monitor, opts Options) *Recorder {
	if opts.MeterInterval <= 0 {
		opts.MeterInterval = defaultMeterInterval
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = defaultSettleDelay
	}
	return &Recorder{
		ctx:           ctx,
		monitor:       monitor,
		meterInterval: opts.MeterInterval,
		settleDelay:   opts.SettleDelay,
		onLevel:       opts.OnLevel,
		onSilence:     opts.OnSilence,
		onError:       opts.OnError,
	}
}

// Start opens a capture stream against the monitor's current device and
// begins writing canonical PCM to sink.
func (r *Recorder) Start(sink Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess != nil {
		return ErrAlreadyRecording
	}

	device := r.monitor.Current()
	capture, err := r.openStream(device)
	if err != nil {
		return err
	}

	vp := newVADProcessor()
	sess := &Session{
		Device:    device,
		StartedAt: time.Now(),
		sink:      sink,
		capture:   capture,
		vad:       vp,
	}
	r.sess = sess
	r.meter.reset(r.meterInterval)

	r.wireCallback(sess, capture, vp)

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		r.sess = nil
		return fmt.Errorf("starting capture stream: %w", err)
	}

	r.unsub = r.monitor.OnChange(func(dev audio.DeviceInfo) {
		r.handleDeviceChange(dev)
	})

	r.startSilenceTicker(vp)
	return nil
}

// openStream builds a stream for dev; the zero-value device means
// system default.
func (r *Recorder) openStream(dev audio.DeviceInfo) (audio.CaptureDevice, error) {
	var devPtr *audio.DeviceInfo
	if !dev.IsDefault() {
		devPtr = &dev
	}
	capture, err := r.ctx.NewCapture(devPtr, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		return nil, fmt.Errorf("opening capture device %s: %w", dev.Label(), err)
	}
	return capture, nil
}

func (r *Recorder) wireCallback(sess *Session, capture audio.CaptureDevice, vp *vadProcessor) {
	capture.SetCallback(func(data []byte, frameCount uint32) {
		samples := audio.PCM16Samples(data)
		sess.frames.Add(uint64(len(samples)))

		if err := sess.sink.WriteSamples(samples); err != nil {
			sess.mu.Lock()
			if sess.writeErr == nil {
				sess.writeErr = err
			}
			sess.mu.Unlock()
		}

		if m, publish := r.meter.update(samples, time.Now()); publish && r.onLevel != nil {
			r.onLevel(m)
		}
		if vp != nil {
			vp.Process(data)
		}
	})
}

// Stop tears down the stream, flushes and closes the sink, and resets
// the meter to zero.
func (r *Recorder) Stop() (Stats, error) {
	r.mu.Lock()
	sess := r.sess
	unsub := r.unsub
	r.sess = nil
	r.unsub = nil
	r.mu.Unlock()

	if sess == nil {
		return Stats{}, ErrNotRecording
	}
	if unsub != nil {
		unsub()
	}
	r.stopSilenceTicker()

	// Wait out any in-flight reconfiguration so we do not race the
	// stream swap.
	r.reconfigWG.Wait()

	if sess.capture != nil {
		sess.capture.Stop()
		sess.capture.ClearCallback()
		sess.capture.Close()
	}

	err := sess.sink.Close()

	sess.mu.Lock()
	if err == nil {
		err = sess.writeErr
	}
	sess.mu.Unlock()

	if r.onLevel != nil {
		r.onLevel(Meter{})
	}
	r.meter.reset(r.meterInterval)

	frames := sess.frames.Load()
	return Stats{
		Frames:   frames,
		Duration: time.Duration(float64(frames) / float64(encoder.SampleRate) * float64(time.Second)),
		Device:   sess.Device.Label(),
	}, err
}

// Recording reports whether a session is open.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess != nil
}

// Level returns the current smoothed meter reading.
func (r *Recorder) Level() Meter {
	return r.meter.current()
}

// handleDeviceChange reopens the stream against the new device while
// keeping the same sink, so the logical recording continues across the
// swap. Re-entrant change events are dropped while a reconfiguration is
// in flight. A failed reconfiguration leaves the stream down but the
// session alive; the next Stop still finalizes the sink cleanly.
func (r *Recorder) handleDeviceChange(dev audio.DeviceInfo) {
	// The session check and the Add happen under the same lock Stop
	// holds while clearing the session, so Stop's Wait always observes
	// a reconfiguration that started before it.
	r.mu.Lock()
	if r.sess == nil || !r.reconfiguring.CompareAndSwap(false, true) {
		r.mu.Unlock()
		return
	}
	r.reconfigWG.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.reconfigWG.Done()
		defer r.reconfiguring.Store(false)

		r.mu.Lock()
		sess := r.sess
		r.mu.Unlock()
		if sess == nil {
			return
		}

		if sess.capture != nil {
			sess.capture.Stop()
			sess.capture.ClearCallback()
			sess.capture.Close()
		}

		// Give the OS a moment to finish moving the default route.
		time.Sleep(r.settleDelay)

		capture, err := r.openStream(dev)
		if err != nil {
			r.markStalled(sess, err)
			return
		}
		// The session's voice detector survives the swap so the silence
		// monitor keeps seeing frames.
		r.wireCallback(sess, capture, sess.vad)
		if err := capture.Start(); err != nil {
			capture.ClearCallback()
			capture.Close()
			r.markStalled(sess, fmt.Errorf("restarting capture stream: %w", err))
			return
		}

		r.mu.Lock()
		if r.sess == sess {
			sess.capture = capture
			sess.Device = dev
			sess.mu.Lock()
			sess.stalled = false
			sess.mu.Unlock()
		} else {
			// Session ended while we were reconfiguring.
			capture.Stop()
			capture.ClearCallback()
			capture.Close()
		}
		r.mu.Unlock()
	}()
}

func (r *Recorder) markStalled(sess *Session, err error) {
	sess.mu.Lock()
	sess.stalled = true
	sess.mu.Unlock()
	r.mu.Lock()
	if r.sess == sess {
		sess.capture = nil
	}
	r.mu.Unlock()
	if r.onError != nil {
		r.onError(fmt.Errorf("device reconfiguration failed: %w", err))
	}
}

func (r *Recorder) startSilenceTicker(vp *vadProcessor) {
	if vp == nil || r.onSilence == nil {
		return
	}
	r.tickStop = make(chan struct{})
	r.tickDone = make(chan struct{})
	stop, done := r.tickStop, r.tickDone

	mon := newSilenceMonitor()
	go func() {
		defer close(done)
		ticker := time.NewTicker(silenceTickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if ev := mon.Tick(vp.HasSpeechTick()); ev != SilenceNone {
					r.onSilence(ev)
				}
			}
		}
	}()
}

func (r *Recorder) stopSilenceTicker() {
	if r.tickStop == nil {
		return
	}
	select {
	case <-r.tickStop:
	default:
		close(r.tickStop)
	}
	<-r.tickDone
	r.tickStop = nil
	r.tickDone = nil
}
