//go:build darwin

package deliver

import (
	"fmt"

	"github.com/micmonay/keybd_event"
)

func sendPaste() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPasteUnavailable, err)
	}
	kb.SetKeys(keybd_event.VK_V)
	kb.HasSuper(true) // Cmd+V
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("%w: %v", ErrPasteUnavailable, err)
	}
	return nil
}
