// Package filter strips speech-model artifacts from transcribed text:
// bracketed annotations like "[inaudible]" or "(music)", filler tokens,
// and the whitespace debris left behind by removing them.
package filter

import (
	"regexp"
	"strings"
)

var (
	// Bracket-delimited spans, non-greedy, across the four delimiter
	// families whisper-style models emit.
	squareRe = regexp.MustCompile(`\[[^\[\]]*\]`)
	parenRe  = regexp.MustCompile(`\([^()]*\)`)
	braceRe  = regexp.MustCompile(`\{[^{}]*\}`)
	angleRe  = regexp.MustCompile(`<[^<>]*>`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// Filler tokens removed as whole words, case-insensitively. Longer
// tokens come first so the alternation never stops at a prefix.
var fillerWords = []string{
	"mm-hmm", "uh-huh", "uhm", "umm", "uhh", "erm", "hmm", "mhm", "um", "uh",
}

var fillerRe = regexp.MustCompile(`(?i)\b(` + strings.Join(fillerWords, "|") + `)\b`)

// Clean removes hallucinated artifacts. It is pure, total, and
// idempotent: Clean(Clean(s)) == Clean(s) for every s.
func Clean(text string) string {
	// Nested or paired tag blocks resolve over repeated passes, e.g.
	// "<tag>...</tag>" or "[a [b]]".
	for {
		next := squareRe.ReplaceAllString(text, " ")
		next = parenRe.ReplaceAllString(next, " ")
		next = braceRe.ReplaceAllString(next, " ")
		next = angleRe.ReplaceAllString(next, " ")
		if next == text {
			break
		}
		text = next
	}

	text = fillerRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
