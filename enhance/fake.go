package enhance

import (
	"context"
	"sync"
)

// Fake is a test double that applies a fixed transform and records
// every call.
type Fake struct {
	Transform func(string) string
	Err       error
	Delay     <-chan struct{} // when set, Enhance blocks until closed or ctx done

	mu      sync.Mutex
	inputs  []string
	prompts []string
}

func (f *Fake) Name() string { return "fake-enhancer" }

func (f *Fake) Enhance(ctx context.Context, text string, prompt Prompt) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	f.prompts = append(f.prompts, prompt.Name)
	f.mu.Unlock()

	if f.Delay != nil {
		select {
		case <-f.Delay:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	if f.Transform != nil {
		return f.Transform(text), nil
	}
	return text, nil
}

func (f *Fake) Inputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
