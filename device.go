package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/yuemingist/VoiceInk-sub002/audio"
)

// selectDevice shows an arrow-key picker over the capture devices.
// The first entry is the system default, which tracks whatever the OS
// routes audio to.
func selectDevice(actx audio.Context) (audio.DeviceInfo, error) {
	devices, err := actx.Devices()
	if err != nil {
		return audio.DeviceInfo{}, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return audio.DeviceInfo{}, fmt.Errorf("no capture devices found")
	}

	entries := append([]audio.DeviceInfo{{}}, devices...)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return audio.DeviceInfo{}, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	renderList := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Select input device (↑/↓, Enter to confirm):\r\n\r\n")
		for i, d := range entries {
			label := d.Label()
			if audio.IsBluetooth(d.Name) {
				label += " (BT)"
			}
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m\r\n", label)
			} else {
				fmt.Printf("    %s\r\n", label)
			}
		}
	}

	renderList()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return audio.DeviceInfo{}, fmt.Errorf("reading input: %w", err)
		}

		if n == 1 {
			switch buf[0] {
			case 13: // Enter
				fmt.Printf("\r\n")
				term.Restore(fd, oldState)
				return entries[cursor], nil
			case 3: // Ctrl+C
				fmt.Printf("\r\n")
				term.Restore(fd, oldState)
				os.Exit(0)
			case 'j':
				if cursor < len(entries)-1 {
					cursor++
				}
			case 'k':
				if cursor > 0 {
					cursor--
				}
			}
		} else if n == 3 && buf[0] == 0x1b && buf[1] == '[' {
			switch buf[2] {
			case 'A':
				if cursor > 0 {
					cursor--
				}
			case 'B':
				if cursor < len(entries)-1 {
					cursor++
				}
			}
		}

		lines := len(entries) + 2
		fmt.Printf("\x1b[%dA", lines)
		renderList()
	}
}
