package filter

import "testing"

func TestClean(t *testing.T) {
	for _, tt := range []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "hello world", "hello world"},
		{"square annotation", "[inaudible] um hello", "hello"},
		{"parenthetical", "(music playing) let's begin", "let's begin"},
		{"braces", "{noise} test", "test"},
		{"angle tags", "<sound of rain> drip", "drip"},
		{"paired tags", "<tag>keep this</tag> too", "keep this too"},
		{"nested brackets", "[outer [inner]] done", "done"},
		{"fillers", "so um I was uh thinking", "so I was thinking"},
		{"filler case", "Um, hello. UH yes.", ", hello. yes."},
		{"compound filler", "mm-hmm sounds good uh-huh", "sounds good"},
		{"filler inside word", "umbrella and uhuru stay", "umbrella and uhuru stay"},
		{"whitespace collapse", "  several   words\t here \n", "several words here"},
		{"only artifacts", "[BLANK_AUDIO] (silence) um", ""},
		{"mixed", "[inaudible] so (coughs) the uh answer is <pause> forty-two", "so the answer is forty-two"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.in)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"[inaudible] um hello",
		"<a><b>nested</b></a> text",
		"so uh like um yeah",
		"   spaced   out   ",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
