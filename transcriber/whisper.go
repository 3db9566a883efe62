package transcriber

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Whisper runs inference locally through whisper.cpp. The model is
// loaded lazily: Warm loads it ahead of time, Transcribe loads it on
// demand if warming has not happened or failed.
type Whisper struct {
	modelPath string

	mu    sync.Mutex
	model whisper.Model
}

func NewWhisper(modelPath string) *Whisper {
	return &Whisper{modelPath: modelPath}
}

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) Warm(ctx context.Context) error {
	_, err := w.ensureLoaded(ctx)
	return err
}

func (w *Whisper) ensureLoaded(ctx context.Context) (whisper.Model, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model != nil {
		return w.model, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(w.modelPath); err != nil {
		return nil, &ModelLoadError{Model: w.modelPath, Err: err}
	}
	model, err := whisper.New(w.modelPath)
	if err != nil {
		return nil, &ModelLoadError{Model: w.modelPath, Err: err}
	}
	w.model = model
	return model, nil
}

func (w *Whisper) Transcribe(ctx context.Context, samples []float32, opts Options) (Result, error) {
	model, err := w.ensureLoaded(ctx)
	if err != nil {
		return Result{}, err
	}

	wctx, err := model.NewContext()
	if err != nil {
		return Result{}, &TranscriptionError{Provider: w.Name(), Err: err}
	}

	lang := opts.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return Result{}, &TranscriptionError{Provider: w.Name(), Err: fmt.Errorf("set language %q: %w", lang, err)}
	}
	wctx.SetTranslate(false)
	wctx.SetThreads(uint(runtime.NumCPU()))
	if opts.Prompt != "" {
		wctx.SetInitialPrompt(opts.Prompt)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, &TranscriptionError{Provider: w.Name(), Err: err}
	}

	var res Result
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, &TranscriptionError{Provider: w.Name(), Err: err}
		}
		res.Text += seg.Text
		res.Segments = append(res.Segments, Segment{
			Text:  seg.Text,
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
		})
		res.Duration = seg.End.Seconds()
	}
	return res, nil
}

func (w *Whisper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model == nil {
		return nil
	}
	err := w.model.Close()
	w.model = nil
	return err
}
