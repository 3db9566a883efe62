//go:build !linux && !darwin

package deliver

func sendPaste() error {
	return ErrPasteUnavailable
}
