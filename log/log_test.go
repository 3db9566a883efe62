package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("VOICEINK_LOG_PATH", "/tmp/voiceink-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/voiceink-env-log" {
		t.Errorf("got %q, want /tmp/voiceink-env-log", got)
	}
}

func TestInitCreatesLogFiles(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	Info("diagnostics line")
	TranscriptionText("hello world")
	Close()

	diag, err := os.ReadFile(filepath.Join(tmp, "diagnostics_log.txt"))
	if err != nil {
		t.Fatalf("read diagnostics log: %v", err)
	}
	if !strings.Contains(string(diag), "diagnostics line") {
		t.Errorf("diagnostics log missing entry: %q", diag)
	}

	transcript, err := os.ReadFile(filepath.Join(tmp, "transcribe_log.txt"))
	if err != nil {
		t.Fatalf("read transcript log: %v", err)
	}
	if !strings.Contains(string(transcript), "hello world") {
		t.Errorf("transcript log missing entry: %q", transcript)
	}
	if strings.Contains(string(diag), "hello world") {
		t.Error("transcript text leaked into diagnostics log")
	}
}

func TestLoggingBeforeInitIsSafe(t *testing.T) {
	Close()
	Info("dropped")
	Warnf("dropped %d", 1)
	TranscriptionText("dropped")
	RunComplete(RunMetrics{RunID: "x"})
}

func TestRunComplete(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	RunComplete(RunMetrics{
		RunID:           "abc",
		Provider:        "whisper",
		Device:          "USB Mic",
		AudioLengthS:    2.5,
		TranscriptionMs: 420,
		Pasted:          true,
	})
	Close()

	diag, err := os.ReadFile(filepath.Join(tmp, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"run_complete", "whisper", "USB Mic"} {
		if !strings.Contains(string(diag), want) {
			t.Errorf("diagnostics log missing %q: %s", want, diag)
		}
	}
}
