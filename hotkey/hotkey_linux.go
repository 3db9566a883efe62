//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyLCtrl   = 29
	keyRCtrl   = 97
	keyLShift  = 42
	keyRShift  = 54
	keySpace   = 57
	keyEsc     = 1
)

const inputEventSize = 24

// linuxListener reads evdev key events directly, which works on both
// X11 and Wayland without a compositor-specific protocol.
type linuxListener struct {
	events chan Event
	files  []*os.File
	stop   chan struct{}
	once   sync.Once
}

func New() Listener {
	return &linuxListener{events: make(chan Event, 4)}
}

func (h *linuxListener) Register() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	h.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f)
	}

	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	return nil
}

// chordState tracks modifier and trigger keys for one device.
type chordState struct {
	ctrl, shift bool
	space, esc  bool
}

func (s *chordState) apply(code uint16, pressed, released bool) (Event, bool) {
	switch code {
	case keyLCtrl, keyRCtrl:
		s.ctrl = pressed || (!released && s.ctrl)
	case keyLShift, keyRShift:
		s.shift = pressed || (!released && s.shift)
	case keySpace:
		if pressed && !s.space && s.ctrl && s.shift {
			s.space = true
			return Toggle, true
		}
		if released {
			s.space = false
		}
	case keyEsc:
		if pressed && !s.esc && s.ctrl && s.shift {
			s.esc = true
			return Cancel, true
		}
		if released {
			s.esc = false
		}
	}
	return 0, false
}

func (h *linuxListener) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	var state chordState

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey {
				continue
			}

			ev, fired := state.apply(evCode, evValue == keyPress, evValue == keyRelease)
			if !fired {
				continue
			}
			select {
			case h.events <- ev:
			default:
			}
		}
	}
}

func (h *linuxListener) Unregister() {
	h.once.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *linuxListener) Events() <-chan Event {
	return h.events
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	caps := strings.TrimSpace(string(data))
	return len(caps) > 10
}

func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	var opened string
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			opened = path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened), nil
}
