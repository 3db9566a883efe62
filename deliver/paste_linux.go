//go:build linux

package deliver

import (
	"fmt"
	"sync"

	"github.com/micmonay/keybd_event"
)

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
)

func initKeyboard() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
	})
	return kbErr
}

func sendPaste() error {
	if err := initKeyboard(); err != nil {
		return fmt.Errorf("%w: %v", ErrPasteUnavailable, err)
	}
	kb.SetKeys(keybd_event.VK_V)
	kb.HasCTRL(true)
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("%w: %v", ErrPasteUnavailable, err)
	}
	return nil
}
