// Package enhance post-processes transcripts with a language model:
// punctuation, casing, and light cleanup without changing meaning.
package enhance

import "context"

// DefaultSystemPrompt is used when no prompt preset is selected.
const DefaultSystemPrompt = "You are a dictation assistant. Correct punctuation, " +
	"capitalization and obvious transcription mistakes in the user's text. " +
	"Do not add, remove or rephrase content. Reply with the corrected text only."

// Prompt pairs a short name (persisted alongside the transcript) with
// the system instructions sent to the model.
type Prompt struct {
	Name   string
	System string
}

// Presets are the built-in enhancement prompts, selectable by name.
var Presets = []Prompt{
	{Name: "default", System: DefaultSystemPrompt},
	{Name: "email", System: "You are a dictation assistant. Rewrite the user's dictated " +
		"text as a polite, well-structured email body. Keep the meaning intact. " +
		"Reply with the email text only."},
	{Name: "notes", System: "You are a dictation assistant. Reformat the user's dictated " +
		"text as concise bullet-point notes. Do not invent content. " +
		"Reply with the notes only."},
}

// PresetByName returns the preset with the given name, falling back
// to the default preset for unknown names.
func PresetByName(name string) Prompt {
	for _, p := range Presets {
		if p.Name == name {
			return p
		}
	}
	return Presets[0]
}

// Enhancer rewrites a transcript according to a prompt. An error
// means the caller should fall back to the unenhanced text.
type Enhancer interface {
	Name() string
	Enhance(ctx context.Context, text string, prompt Prompt) (string, error)
}
