// voiceink is a push-to-talk dictation tool: hold a hotkey, speak,
// and the transcript lands in the focused window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yuemingist/VoiceInk-sub002/audio"
	"github.com/yuemingist/VoiceInk-sub002/beep"
	"github.com/yuemingist/VoiceInk-sub002/capture"
	"github.com/yuemingist/VoiceInk-sub002/deliver"
	"github.com/yuemingist/VoiceInk-sub002/doctor"
	"github.com/yuemingist/VoiceInk-sub002/enhance"
	"github.com/yuemingist/VoiceInk-sub002/hotkey"
	"github.com/yuemingist/VoiceInk-sub002/log"
	"github.com/yuemingist/VoiceInk-sub002/pipeline"
	"github.com/yuemingist/VoiceInk-sub002/shutdown"
	"github.com/yuemingist/VoiceInk-sub002/store"
	"github.com/yuemingist/VoiceInk-sub002/transcriber"
)

var version = "dev"

func run() {
	deviceFlag := flag.String("device", "", "Use named microphone device (otherwise system default)")
	setupFlag := flag.Bool("setup", false, "Select microphone device interactively")
	modelFlag := flag.String("model", "", "Path to local whisper model (ggml format)")
	providerFlag := flag.String("provider", "auto", "Transcription provider: whisper, groq, openai, or auto")
	langFlag := flag.String("lang", "en", "Language code for transcription (empty = auto-detect)")
	promptFlag := flag.String("prompt", "", "Vocabulary hint passed to the transcriber")
	enhanceFlag := flag.Bool("enhance", false, "Post-process transcripts with a language model")
	presetFlag := flag.String("preset", "default", "Enhancement preset: default, email, notes")
	autoPasteFlag := flag.Bool("autopaste", true, "Paste into the focused window after transcription")
	muteFlag := flag.Bool("mute", false, "Disable audio cues")
	dbFlag := flag.String("db", "", "History database path (default: OS-specific location)")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	flag.Parse()

	// API keys may live in a .env next to the binary.
	godotenv.Load()

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *versionFlag {
		fmt.Printf("voiceink %s\n", version)
		os.Exit(0)
	}
	if *doctorFlag {
		os.Exit(doctor.Run(doctor.Options{ModelPath: *modelFlag}))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open log files: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()
	log.Infof("voiceink %s starting", version)

	if *muteFlag {
		beep.Disable()
	}

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot connect to audio: %v\n", err)
		os.Exit(1)
	}
	defer actx.Close()

	preferred, err := resolveDevice(actx, *deviceFlag, *setupFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mon := audio.NewMonitor(actx, preferred)
	mon.OnChange(func(d audio.DeviceInfo) {
		log.DeviceChange(preferred.Label(), d.Label())
		fmt.Printf("  mic: %s\n", d.Label())
	})
	mon.Start()
	defer mon.Close()

	rec := capture.NewRecorder(actx, mon, capture.Options{
		OnSilence: func(ev capture.SilenceEvent) {
			switch ev {
			case capture.SilenceWarn, capture.SilenceRepeat:
				fmt.Println("  (no speech detected, still recording)")
				log.Warn("no speech detected")
			case capture.SilenceWarnClear:
				log.Info("speech resumed")
			}
		},
		OnError: func(err error) {
			fmt.Printf("  recording problem: %v\n", err)
			log.Errorf("capture: %v", err)
		},
	})

	mgr := transcriber.NewManager(log.Logger())
	trans, err := buildTranscriber(*providerFlag, *modelFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := mgr.SetActive(trans); err != nil {
		log.Warnf("activating transcriber: %v", err)
	}
	defer mgr.Shutdown()
	mgr.WarmAsync(context.Background())

	var enhancer enhance.Enhancer
	if *enhanceFlag {
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			fmt.Fprintln(os.Stderr, "Error: -enhance requires OPENAI_API_KEY")
			os.Exit(1)
		}
		enhancer = enhance.NewOpenAI(key, os.Getenv("OPENAI_BASE_URL"), os.Getenv("VOICEINK_ENHANCE_MODEL"))
	}

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = store.DefaultDBPath()
	}
	history, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open history database: %v\n", err)
		os.Exit(1)
	}
	defer history.Close()

	audioDir := filepath.Join(filepath.Dir(dbPath), "recordings")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create recordings directory: %v\n", err)
		os.Exit(1)
	}

	gateway := deliver.NewGateway(nil, log.Logger())

	orch := pipeline.NewOrchestrator(pipeline.Config{
		Language:      *langFlag,
		Prompt:        *promptFlag,
		Enhance:       enhancer != nil,
		EnhancePreset: enhance.PresetByName(*presetFlag),
		Paste:         *autoPasteFlag,
		AudioDir:      audioDir,
	}, rec, mgr, enhancer, history, gateway, log.Logger())

	orch.SetOnState(func(s pipeline.State) {
		log.StateChange(string(s))
		switch s {
		case pipeline.StateRecording:
			beep.PlayStart()
			fmt.Println("● recording... (Ctrl+Shift+Space to stop, Ctrl+Shift+Esc to cancel)")
		case pipeline.StateStopping:
			beep.PlayStop()
		case pipeline.StateTranscribing:
			fmt.Println("  transcribing...")
		}
	})
	orch.SetOnResult(func(r pipeline.Result) {
		switch {
		case r.Canceled:
			beep.PlayCancel()
			fmt.Println("  canceled")
		case r.Err != nil:
			beep.PlayError()
			fmt.Printf("  error: %v\n", r.Err)
		case r.Text == "":
			fmt.Println("  (nothing to transcribe)")
		default:
			fmt.Printf("  → %s\n", r.Text)
			log.TranscriptionText(r.Text)
			log.RunComplete(log.RunMetrics{
				RunID:           r.RunID.String(),
				Provider:        r.ModelName,
				Device:          r.Stats.Device,
				AudioLengthS:    r.Stats.Duration.Seconds(),
				TranscriptionMs: r.TranscriptionMs,
				EnhancementMs:   r.EnhancementMs,
				Enhanced:        r.Enhanced != "",
				Pasted:          r.Outcome.Pasted,
			})
		}
	})

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot register hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	sig := make(chan os.Signal, 1)
	shutdown.Notify(sig)

	fmt.Printf("voiceink %s ready — Ctrl+Shift+Space to dictate, Ctrl+Shift+Esc to cancel\n", version)
	fmt.Printf("  mic: %s | provider: %s\n", preferred.Label(), trans.Name())

	for {
		select {
		case ev := <-hk.Events():
			switch ev {
			case hotkey.Toggle:
				if err := orch.StartOrStop(); err != nil {
					log.Warnf("toggle ignored: %v", err)
				}
			case hotkey.Cancel:
				orch.Cancel()
			}
		case <-sig:
			fmt.Println("\nshutting down")
			orch.Cancel()
			return
		}
	}
}

// buildTranscriber picks the provider from the flag, the model path,
// and the available API keys.
func buildTranscriber(provider, modelPath string) (transcriber.Transcriber, error) {
	if modelPath == "" {
		modelPath = os.Getenv("VOICEINK_MODEL")
	}

	switch provider {
	case "whisper":
		if modelPath == "" {
			return nil, fmt.Errorf("provider whisper requires -model or VOICEINK_MODEL")
		}
		return transcriber.NewWhisper(modelPath), nil
	case "groq":
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("provider groq requires GROQ_API_KEY")
		}
		return transcriber.NewGroq(key), nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("provider openai requires OPENAI_API_KEY")
		}
		return transcriber.NewOpenAI(key), nil
	case "auto", "":
		if modelPath != "" {
			return transcriber.NewWhisper(modelPath), nil
		}
		if key := os.Getenv("GROQ_API_KEY"); key != "" {
			return transcriber.NewGroq(key), nil
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return transcriber.NewOpenAI(key), nil
		}
		return nil, fmt.Errorf("no provider available: pass -model, or set GROQ_API_KEY or OPENAI_API_KEY")
	default:
		return nil, fmt.Errorf("unknown provider %q (use whisper, groq, openai, or auto)", provider)
	}
}

// resolveDevice turns the -device/-setup flags into the preferred
// capture device; the zero value means system default.
func resolveDevice(actx audio.Context, name string, setup bool) (audio.DeviceInfo, error) {
	if setup {
		return selectDevice(actx)
	}
	if name == "" {
		return audio.DeviceInfo{}, nil
	}

	devices, err := actx.Devices()
	if err != nil {
		return audio.DeviceInfo{}, fmt.Errorf("enumerating devices: %w", err)
	}
	for _, d := range devices {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			return d, nil
		}
	}
	return audio.DeviceInfo{}, fmt.Errorf("no capture device matching %q", name)
}
