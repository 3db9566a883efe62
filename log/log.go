// Package log writes two files under the log directory: a structured
// diagnostics log for everything the pipeline does, and a plain
// transcript log holding only delivered text.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcribeFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

// ResolveDir picks the log directory: the -logpath flag wins, then
// VOICEINK_LOG_PATH, then the platform default.
func ResolveDir(flagPath string) (string, error) {
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	envPath := os.Getenv("VOICEINK_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcribePath := filepath.Join(dir, "transcribe_log.txt")
	transcribeFile, err = os.OpenFile(transcribePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcribeFile != nil {
		transcribeFile.Close()
		transcribeFile = nil
	}
	logReady = false
}

// Logger returns the diagnostics logger for injection into
// components. Before Init it returns a no-op logger.
func Logger() zerolog.Logger {
	if !logReady {
		return zerolog.Nop()
	}
	return diagLog
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// RunMetrics is the per-run summary written when a dictation
// finishes.
type RunMetrics struct {
	RunID           string
	Provider        string
	Device          string
	AudioLengthS    float64
	TranscriptionMs int64
	EnhancementMs   int64
	Enhanced        bool
	Pasted          bool
	ConnReused      bool
	TLSProtocol     string
}

func RunComplete(m RunMetrics) {
	if !logReady {
		return
	}
	ev := diagLog.Info().
		Str("run", m.RunID).
		Str("provider", m.Provider).
		Str("device", m.Device).
		Float64("audio_s", m.AudioLengthS).
		Int64("transcription_ms", m.TranscriptionMs).
		Bool("enhanced", m.Enhanced).
		Bool("pasted", m.Pasted)
	if m.Enhanced {
		ev = ev.Int64("enhancement_ms", m.EnhancementMs)
	}
	if m.TLSProtocol != "" {
		ev = ev.Str("tls_proto", m.TLSProtocol).Bool("conn_reused", m.ConnReused)
	}
	ev.Msg("run_complete")
}

func DeviceChange(from, to string) {
	if !logReady {
		return
	}
	diagLog.Info().Str("from", from).Str("to", to).Msg("device_change")
}

func StateChange(state string) {
	if !logReady {
		return
	}
	diagLog.Debug().Str("state", state).Msg("state")
}

// TranscriptionText appends delivered text to the plain transcript
// log.
func TranscriptionText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcribeFile.WriteString(line)
}
