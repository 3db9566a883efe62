//go:build !linux

package hotkey

import (
	"golang.design/x/hotkey"
)

type xListener struct {
	toggle *hotkey.Hotkey
	cancel *hotkey.Hotkey
	events chan Event
	stop   chan struct{}
}

func New() Listener {
	mods := []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}
	return &xListener{
		toggle: hotkey.New(mods, hotkey.KeySpace),
		cancel: hotkey.New(mods, hotkey.KeyEscape),
		events: make(chan Event, 4),
		stop:   make(chan struct{}),
	}
}

func (h *xListener) Register() error {
	if err := h.toggle.Register(); err != nil {
		return err
	}
	if err := h.cancel.Register(); err != nil {
		h.toggle.Unregister()
		return err
	}
	go h.forward(h.toggle, Toggle)
	go h.forward(h.cancel, Cancel)
	return nil
}

func (h *xListener) forward(hk *hotkey.Hotkey, ev Event) {
	for {
		select {
		case <-h.stop:
			return
		case <-hk.Keydown():
			select {
			case h.events <- ev:
			default:
			}
		}
	}
}

func (h *xListener) Unregister() {
	close(h.stop)
	h.toggle.Unregister()
	h.cancel.Unregister()
}

func (h *xListener) Events() <-chan Event {
	return h.events
}

func Diagnose() (string, error) {
	return "hotkey support available (Ctrl+Shift+Space toggles, Ctrl+Shift+Esc cancels)", nil
}
