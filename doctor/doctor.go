// Package doctor runs interactive system diagnostics: hotkey chords,
// microphone capture, transcription, and clipboard delivery.
package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yuemingist/VoiceInk-sub002/audio"
	"github.com/yuemingist/VoiceInk-sub002/capture"
	"github.com/yuemingist/VoiceInk-sub002/deliver"
	"github.com/yuemingist/VoiceInk-sub002/encoder"
	"github.com/yuemingist/VoiceInk-sub002/filter"
	"github.com/yuemingist/VoiceInk-sub002/hotkey"
	"github.com/yuemingist/VoiceInk-sub002/transcriber"
)

// Options carry what doctor needs from the command line.
type Options struct {
	ModelPath string // local whisper model, may be empty
}

// Run executes the interactive checks and returns an exit code
// (0=all pass, 1=any fail).
func Run(opts Options) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("voiceink doctor - interactive system diagnostics")
	fmt.Println("================================================")

	allPass := true

	if !checkHotkey() {
		allPass = false
	}
	if allPass && !checkMicAndTranscription(opts) {
		allPass = false
	}
	if allPass && !checkDelivery() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See details above.")
	}

	if allPass {
		return 0
	}
	return 1
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[1/3] Hotkey detection")
	fmt.Println("Press Ctrl+Shift+Space...")

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case ev := <-hk.Events():
		if ev != hotkey.Toggle {
			fmt.Println("  FAIL: unexpected chord (cancel fired first)")
			return false
		}
		fmt.Println("  PASS: toggle chord detected")
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkMicAndTranscription(opts Options) bool {
	fmt.Println()
	fmt.Println("[2/3] Microphone and transcription")

	reader := bufio.NewReader(os.Stdin)

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	devices, err := actx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}

	var device audio.DeviceInfo
	if len(devices) == 1 {
		device = devices[0]
		fmt.Printf("Using device: %s\n", device.Label())
	} else {
		fmt.Println()
		fmt.Println("Select input device:")
		for i, d := range devices {
			fmt.Printf("  %d. %s\n", i+1, d.Label())
		}
		fmt.Printf("Choice [1-%d]: ", len(devices))

		devChoice, _ := reader.ReadString('\n')
		devChoice = strings.TrimSpace(devChoice)
		idx := 0
		if devChoice != "" {
			fmt.Sscanf(devChoice, "%d", &idx)
			idx--
		}
		if idx < 0 || idx >= len(devices) {
			fmt.Println("  FAIL: invalid choice")
			return false
		}
		device = devices[idx]
		fmt.Printf("Selected: %s\n", device.Label())
	}

	trans, ok := pickTranscriber(reader, opts)
	if !ok {
		return false
	}
	defer trans.Close()

	fmt.Println()
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	samples, err := recordSamples(actx, device, 3*time.Second)
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	if len(samples) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}

	fmt.Printf("  Recorded %.1fs, transcribing...\n", float64(len(samples))/float64(encoder.SampleRate))

	res, err := trans.Transcribe(context.Background(), samples, transcriber.Options{})
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}

	text := filter.Clean(res.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("\n  Transcribed text: %s\n\n", text)

	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Is this correct? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: transcription verified by user")
		return true
	}
	fmt.Println("  FAIL: transcription not confirmed")
	return false
}

func pickTranscriber(reader *bufio.Reader, opts Options) (transcriber.Transcriber, bool) {
	fmt.Println()
	fmt.Println("Select transcription provider:")
	fmt.Println("  1. Local whisper")
	fmt.Println("  2. Groq")
	fmt.Println("  3. OpenAI")
	fmt.Print("Choice [1/2/3]: ")

	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)

	switch choice {
	case "1", "":
		modelPath := opts.ModelPath
		if modelPath == "" {
			fmt.Print("Enter whisper model path: ")
			p, _ := reader.ReadString('\n')
			modelPath = strings.TrimSpace(p)
		}
		if modelPath == "" {
			fmt.Println("  FAIL: model path required")
			return nil, false
		}
		w := transcriber.NewWhisper(modelPath)
		fmt.Println("  Loading model...")
		if err := w.Warm(context.Background()); err != nil {
			fmt.Printf("  FAIL: %v\n", err)
			return nil, false
		}
		return w, true
	case "2", "3":
		name := "groq"
		if choice == "3" {
			name = "openai"
		}
		fmt.Printf("Enter %s API key: ", name)
		apiKey, _ := reader.ReadString('\n')
		apiKey = strings.TrimSpace(apiKey)
		if apiKey == "" {
			fmt.Println("  FAIL: API key required")
			return nil, false
		}
		if choice == "2" {
			return transcriber.NewGroq(apiKey), true
		}
		return transcriber.NewOpenAI(apiKey), true
	default:
		fmt.Printf("  FAIL: invalid choice %q\n", choice)
		return nil, false
	}
}

// recordSamples captures canonical audio for the given duration using
// the same recorder the pipeline uses.
func recordSamples(actx audio.Context, device audio.DeviceInfo, d time.Duration) ([]float32, error) {
	mon := audio.NewMonitor(actx, device)
	defer mon.Close()

	rec := capture.NewRecorder(actx, mon, capture.Options{})
	sink := &memorySink{}
	if err := rec.Start(sink); err != nil {
		return nil, err
	}

	fmt.Print("  Recording")
	ticker := time.NewTicker(500 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	time.Sleep(d)
	close(done)
	if _, err := rec.Stop(); err != nil {
		return nil, err
	}
	fmt.Println(" done")

	pcm := sink.Samples()
	samples := make([]float32, len(pcm))
	for i, s := range pcm {
		samples[i] = float32(s) / 32768.0
	}
	return samples, nil
}

type memorySink struct {
	samples []int16
}

func (s *memorySink) WriteSamples(samples []int16) error {
	s.samples = append(s.samples, samples...)
	return nil
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) Samples() []int16 { return s.samples }

func checkDelivery() bool {
	fmt.Println()
	fmt.Println("[3/3] Clipboard and paste")

	gw := deliver.NewGateway(nil, zerolog.Nop())

	fmt.Println("Focus on a text editor window...")
	for i := 5; i > 0; i-- {
		fmt.Printf("  %d...\n", i)
		time.Sleep(1 * time.Second)
	}

	testStr := "voiceink-doctor-test"
	out, err := gw.Deliver(context.Background(), testStr, deliver.Options{Paste: true})
	if err != nil {
		fmt.Printf("  FAIL: delivery failed: %v\n", err)
		return false
	}
	if !out.Pasted {
		fmt.Println("  Warning: paste unavailable, text left on clipboard")
	}

	resetTerminal()
	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Println()
	fmt.Printf("Did the text %q appear (or land on the clipboard)? [y/n]: ", testStr)
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm != "y" && confirm != "yes" {
		fmt.Println("  FAIL: delivery not confirmed")
		return false
	}
	fmt.Println("  PASS: delivery verified by user")
	return true
}
