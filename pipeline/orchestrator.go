package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yuemingist/VoiceInk-sub002/capture"
	"github.com/yuemingist/VoiceInk-sub002/deliver"
	"github.com/yuemingist/VoiceInk-sub002/encoder"
	"github.com/yuemingist/VoiceInk-sub002/enhance"
	"github.com/yuemingist/VoiceInk-sub002/filter"
	"github.com/yuemingist/VoiceInk-sub002/store"
	"github.com/yuemingist/VoiceInk-sub002/transcriber"
)

// ErrBusy is returned by StartOrStop while a previous run is still
// working through its post-recording stages.
var ErrBusy = errors.New("pipeline busy")

// Recorder is the capture surface the orchestrator drives.
type Recorder interface {
	Start(sink capture.Sink) error
	Stop() (capture.Stats, error)
	Recording() bool
}

// Store persists finished dictations. Save failures never block
// delivery.
type Store interface {
	Save(ctx context.Context, r store.Record) error
}

// Deliverer hands the final text to the user.
type Deliverer interface {
	Deliver(ctx context.Context, text string, opts deliver.Options) (deliver.Outcome, error)
}

// Config is the per-session pipeline configuration.
type Config struct {
	Language      string
	Prompt        string // vocabulary hint passed to the transcriber
	Enhance       bool
	EnhancePreset enhance.Prompt
	Paste         bool
	AudioDir      string
}

// Result summarizes one finished run, successful or not.
type Result struct {
	RunID           uuid.UUID
	Original        string // filtered transcript
	Enhanced        string // empty when enhancement was off or failed
	Text            string // what was delivered
	Canceled        bool
	Err             error
	Stats           capture.Stats
	ModelName       string
	TranscriptionMs int64
	EnhancementMs   int64
	Outcome         deliver.Outcome
}

type run struct {
	id        uuid.UUID
	startedAt time.Time
	audioPath string
	ctx       context.Context
	cancel    context.CancelFunc
}

// Orchestrator owns the dictation state machine. At most one run is
// in flight; all stage work after recording happens on a single
// background goroutine, and cancellation is checked at every stage
// boundary before the next side effect.
type Orchestrator struct {
	log      zerolog.Logger
	cfg      Config
	recorder Recorder
	manager  *transcriber.Manager
	enhancer enhance.Enhancer
	history  Store
	gateway  Deliverer

	newSink func(path string) (capture.Sink, error)
	decode  func(path string) ([]float32, error)

	onState  func(State)
	onResult func(Result)

	mu    sync.Mutex
	state State
	run   *run
}

func NewOrchestrator(cfg Config, recorder Recorder, manager *transcriber.Manager,
	enhancer enhance.Enhancer, history Store, gateway Deliverer, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		log:      log,
		cfg:      cfg,
		recorder: recorder,
		manager:  manager,
		enhancer: enhancer,
		history:  history,
		gateway:  gateway,
		newSink: func(path string) (capture.Sink, error) {
			return encoder.NewWAVWriter(path)
		},
		decode: encoder.DecodeWAV,
		state:  StateIdle,
	}
}

// SetOnState registers a state observer. Register before the first
// StartOrStop.
func (o *Orchestrator) SetOnState(fn func(State)) { o.onState = fn }

// SetOnResult registers a run-result observer.
func (o *Orchestrator) SetOnResult(fn func(Result)) { o.onResult = fn }

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// StartOrStop implements the push-to-talk toggle: idle starts a
// recording, recording stops it and kicks off processing, and any
// later stage rejects the press with ErrBusy.
func (o *Orchestrator) StartOrStop() error {
	o.mu.Lock()

	switch o.state {
	case StateIdle:
		next, err := Transition(o.state, EventStart)
		if err != nil {
			o.mu.Unlock()
			return err
		}
		id := uuid.New()
		path := filepath.Join(o.cfg.AudioDir, id.String()+".wav")
		sink, err := o.newSink(path)
		if err != nil {
			o.mu.Unlock()
			return fmt.Errorf("open recording sink: %w", err)
		}
		if err := o.recorder.Start(sink); err != nil {
			sink.Close()
			os.Remove(path)
			o.mu.Unlock()
			return fmt.Errorf("start capture: %w", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		o.run = &run{id: id, startedAt: time.Now(), audioPath: path, ctx: ctx, cancel: cancel}
		o.state = next
		o.mu.Unlock()

		o.notifyState(next)
		o.manager.WarmAsync(ctx)
		o.log.Info().Str("run", id.String()).Msg("recording started")
		return nil

	case StateRecording:
		next, err := Transition(o.state, EventStop)
		if err != nil {
			o.mu.Unlock()
			return err
		}
		r := o.run
		o.state = next
		o.mu.Unlock()

		o.notifyState(next)
		go o.process(r)
		return nil

	default:
		s := o.state
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBusy, s)
	}
}

// Cancel aborts whatever is in flight and is safe to call at any
// time, any number of times. A canceled recording is discarded; a
// run past recording stops at the next stage boundary.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	st := o.state
	r := o.run
	if st == StateIdle || r == nil {
		o.mu.Unlock()
		return
	}

	if st == StateRecording {
		o.state = StateIdle
		o.run = nil
		o.mu.Unlock()

		if _, err := o.recorder.Stop(); err != nil {
			o.log.Warn().Err(err).Msg("stopping canceled recording")
		}
		os.Remove(r.audioPath)
		r.cancel()
		o.manager.Release()
		o.notifyState(StateIdle)
		o.log.Info().Str("run", r.id.String()).Msg("recording canceled")
		o.notifyResult(Result{RunID: r.id, Canceled: true})
		return
	}

	o.mu.Unlock()
	// The processing goroutine observes the context at the next
	// stage boundary and winds the run down itself.
	r.cancel()
}

// process runs the post-recording stages for one run.
func (o *Orchestrator) process(r *run) {
	res := Result{RunID: r.id}

	stats, err := o.recorder.Stop()
	if err != nil {
		o.fail(r, &res, fmt.Errorf("finalize recording: %w", err))
		return
	}
	res.Stats = stats
	if stats.Frames == 0 {
		o.log.Info().Str("run", r.id.String()).Msg("nothing captured")
		o.finishEmpty(r, &res)
		return
	}
	if !o.advance(r, &res, EventStopped) {
		return
	}

	samples, err := o.decode(r.audioPath)
	if err != nil {
		o.fail(r, &res, fmt.Errorf("decode recording: %w", err))
		return
	}
	if !o.advance(r, &res, EventDecoded) {
		return
	}

	t, done, err := o.manager.Acquire()
	if err != nil {
		o.fail(r, &res, err)
		return
	}
	res.ModelName = t.Name()
	start := time.Now()
	tr, err := t.Transcribe(r.ctx, samples, transcriber.Options{
		Language: o.cfg.Language,
		Prompt:   o.cfg.Prompt,
	})
	done()
	res.TranscriptionMs = time.Since(start).Milliseconds()
	if err != nil {
		o.fail(r, &res, err)
		return
	}

	res.Original = filter.Clean(tr.Text)
	if res.Original == "" {
		o.log.Info().Str("run", r.id.String()).Msg("empty transcript after filtering")
		o.finishEmpty(r, &res)
		return
	}
	if !o.advance(r, &res, EventTranscribed) {
		return
	}

	text := res.Original
	if o.cfg.Enhance && o.enhancer != nil {
		start := time.Now()
		enhanced, err := o.enhancer.Enhance(r.ctx, text, o.cfg.EnhancePreset)
		res.EnhancementMs = time.Since(start).Milliseconds()
		switch {
		case r.ctx.Err() != nil:
			// fall through to the boundary check below
		case err != nil:
			o.log.Warn().Err(err).Str("run", r.id.String()).Msg("enhancement failed, delivering original text")
		default:
			res.Enhanced = enhanced
			text = enhanced
		}
	}
	res.Text = text
	if !o.advance(r, &res, EventEnhanced) {
		return
	}

	if o.history != nil {
		rec := store.Record{
			ID:              r.id.String(),
			OriginalText:    res.Original,
			EnhancedText:    res.Enhanced,
			TranscriptionMs: res.TranscriptionMs,
			EnhancementMs:   res.EnhancementMs,
			ModelName:       res.ModelName,
			AudioPath:       r.audioPath,
			DurationS:       stats.Duration.Seconds(),
		}
		if res.Enhanced != "" {
			rec.PromptName = o.cfg.EnhancePreset.Name
		}
		if err := o.history.Save(r.ctx, rec); err != nil {
			o.log.Error().Err(err).Str("run", r.id.String()).Msg("history save failed, delivering anyway")
		}
	}
	if !o.advance(r, &res, EventPersisted) {
		return
	}

	outcome, err := o.gateway.Deliver(r.ctx, text, deliver.Options{Paste: o.cfg.Paste})
	if err != nil {
		o.fail(r, &res, fmt.Errorf("deliver: %w", err))
		return
	}
	res.Outcome = outcome
	o.finish(r, &res)
}

// advance moves to the next stage unless the run has been canceled.
func (o *Orchestrator) advance(r *run, res *Result, event Event) bool {
	if r.ctx.Err() != nil {
		o.abort(r, res)
		return false
	}

	o.mu.Lock()
	next, err := Transition(o.state, event)
	if err != nil {
		// A state this far out of step is a bug; recover to idle.
		o.log.Error().Err(err).Str("run", r.id.String()).Msg("state machine out of step")
		o.state = StateIdle
		o.run = nil
		o.mu.Unlock()
		r.cancel()
		o.manager.Release()
		return false
	}
	o.state = next
	o.mu.Unlock()
	o.notifyState(next)
	return true
}

func (o *Orchestrator) abort(r *run, res *Result) {
	os.Remove(r.audioPath)
	res.Canceled = true
	o.toIdle(r, EventCancel)
	o.log.Info().Str("run", r.id.String()).Msg("run canceled")
	o.notifyResult(*res)
}

func (o *Orchestrator) fail(r *run, res *Result, err error) {
	if r.ctx.Err() != nil {
		o.abort(r, res)
		return
	}
	os.Remove(r.audioPath)
	res.Err = err
	o.toIdle(r, EventFail)
	o.log.Error().Err(err).Str("run", r.id.String()).Msg("run failed")
	o.notifyResult(*res)
}

// finishEmpty ends a run that produced no usable audio or text.
func (o *Orchestrator) finishEmpty(r *run, res *Result) {
	os.Remove(r.audioPath)
	o.toIdle(r, EventCancel)
	o.notifyResult(*res)
}

func (o *Orchestrator) finish(r *run, res *Result) {
	o.toIdle(r, EventDelivered)
	o.log.Info().
		Str("run", r.id.String()).
		Int64("transcription_ms", res.TranscriptionMs).
		Int64("enhancement_ms", res.EnhancementMs).
		Bool("pasted", res.Outcome.Pasted).
		Msg("run complete")
	o.notifyResult(*res)
}

func (o *Orchestrator) toIdle(r *run, event Event) {
	o.mu.Lock()
	next, err := Transition(o.state, event)
	if err != nil {
		next = StateIdle
	}
	o.state = next
	o.run = nil
	o.mu.Unlock()
	r.cancel()
	// Free the engine between dictations; the manager defers this if a
	// transcription is somehow still draining.
	o.manager.Release()
	o.notifyState(next)
}

func (o *Orchestrator) notifyState(s State) {
	if o.onState != nil {
		o.onState(s)
	}
}

func (o *Orchestrator) notifyResult(res Result) {
	if o.onResult != nil {
		o.onResult(res)
	}
}
