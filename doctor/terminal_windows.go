//go:build windows

package doctor

import (
	"os"
	"os/signal"
	"syscall"
)

func resetTerminal() {}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		println("\nInterrupted")
		os.Exit(1)
	}()
}
