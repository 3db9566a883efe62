package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	latest, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest on empty store: %v", err)
	}
	if latest != nil {
		t.Fatalf("Latest on empty store = %+v, want nil", latest)
	}

	rec := Record{
		ID:              uuid.NewString(),
		OriginalText:    "hello world",
		EnhancedText:    "Hello, world.",
		TranscriptionMs: 420,
		EnhancementMs:   130,
		ModelName:       "whisper",
		PromptName:      "default",
		AudioPath:       "/tmp/rec.wav",
		DurationS:       2.5,
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got == nil {
		t.Fatal("Latest = nil after Save")
	}
	if got.ID != rec.ID || got.OriginalText != rec.OriginalText || got.EnhancedText != rec.EnhancedText {
		t.Errorf("Latest = %+v, want %+v", got, rec)
	}
	if got.TranscriptionMs != 420 || got.EnhancementMs != 130 {
		t.Errorf("timings = %d/%d", got.TranscriptionMs, got.EnhancementMs)
	}
	if got.DurationS != 2.5 || got.AudioPath != "/tmp/rec.wav" {
		t.Errorf("audio fields = %v/%q", got.DurationS, got.AudioPath)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if got.FinalText() != "Hello, world." {
		t.Errorf("FinalText = %q", got.FinalText())
	}
}

func TestSaveWithoutEnhancement(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := Record{ID: uuid.NewString(), OriginalText: "raw text", ModelName: "groq"}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.EnhancedText != "" {
		t.Errorf("EnhancedText = %q, want empty", got.EnhancedText)
	}
	if got.FinalText() != "raw text" {
		t.Errorf("FinalText = %q, want original", got.FinalText())
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		err := s.Save(ctx, Record{
			ID:           uuid.NewString(),
			OriginalText: string(rune('a' + i)),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	got, err := s.List(ctx, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List returned %d records, want 3", len(got))
	}
	if got[0].OriginalText != "e" || got[1].OriginalText != "d" || got[2].OriginalText != "c" {
		t.Errorf("List order = %q,%q,%q, want newest first", got[0].OriginalText, got[1].OriginalText, got[2].OriginalText)
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id := uuid.NewString()
	if err := s.Save(ctx, Record{ID: id, OriginalText: "one"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, Record{ID: id, OriginalText: "two"}); err == nil {
		t.Error("expected primary key violation on duplicate ID")
	}
}
