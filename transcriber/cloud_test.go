package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testSamples(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(i%100) / 200.0
	}
	return s
}

func newTestCloud(url string) *cloudTranscriber {
	return &cloudTranscriber{
		provider: "groq",
		apiURL:   url,
		apiKey:   "test-key",
		model:    "whisper-large-v3-turbo",
		client:   NewTracedClient(url),
	}
}

func TestCloudTranscribeRequestFormat(t *testing.T) {
	var gotAuth, gotModel, gotLang, gotPrompt, gotFormat string
	var fileBytes []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		gotPrompt = r.FormValue("prompt")
		gotFormat = r.FormValue("response_format")
		file, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			if !strings.HasSuffix(hdr.Filename, ".flac") {
				t.Errorf("filename = %q, want .flac", hdr.Filename)
			}
			fileBytes, _ = io.ReadAll(file)
			file.Close()
		}

		w.Header().Set("x-ratelimit-remaining-requests", "41")
		w.Header().Set("x-ratelimit-limit-requests", "100")
		json.NewEncoder(w).Encode(map[string]any{
			"text":     " hello world",
			"duration": 1.5,
			"segments": []map[string]any{
				{"text": " hello world", "start": 0.0, "end": 1.5, "no_speech_prob": 0.01, "avg_logprob": -0.2},
			},
		})
	}))
	defer srv.Close()

	c := newTestCloud(srv.URL)
	res, err := c.Transcribe(context.Background(), testSamples(16000), Options{Language: "en", Prompt: "dictation"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotModel != "whisper-large-v3-turbo" {
		t.Errorf("model = %q", gotModel)
	}
	if gotLang != "en" || gotPrompt != "dictation" {
		t.Errorf("language/prompt = %q/%q", gotLang, gotPrompt)
	}
	if gotFormat != "verbose_json" {
		t.Errorf("response_format = %q", gotFormat)
	}
	if len(fileBytes) < 4 || string(fileBytes[:4]) != "fLaC" {
		t.Error("uploaded file is not FLAC")
	}

	if res.Text != " hello world" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Duration != 1.5 {
		t.Errorf("Duration = %v", res.Duration)
	}
	if res.RateLimit != "41/100" {
		t.Errorf("RateLimit = %q", res.RateLimit)
	}
	if len(res.Segments) != 1 || res.NoSpeechProb != 0.01 {
		t.Errorf("segments not carried through: %+v", res)
	}
}

func TestCloudTranscribeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestCloud(srv.URL)
	_, err := c.Transcribe(context.Background(), testSamples(1600), Options{})
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
	var te *TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("error type = %T, want *TranscriptionError", err)
	}
	if te.Provider != "groq" {
		t.Errorf("Provider = %q", te.Provider)
	}
	if !strings.Contains(te.Error(), "429") {
		t.Errorf("error should carry status code: %v", te)
	}
}

func TestCloudTranscribeCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"text": "late"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCloud(srv.URL)
	if _, err := c.Transcribe(ctx, testSamples(1600), Options{}); err == nil {
		t.Fatal("expected error with canceled context")
	}
}

func TestProviderNames(t *testing.T) {
	if got := NewGroq("k").Name(); got != "groq" {
		t.Errorf("groq Name() = %q", got)
	}
	if got := NewOpenAI("k").Name(); got != "openai" {
		t.Errorf("openai Name() = %q", got)
	}
}
