// Package audio abstracts capture hardware behind a small Context /
// CaptureDevice pair with per-platform backends, and tracks the active
// input device so recordings survive hotplug events.
package audio

import "strings"

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses whether a device name belongs to a Bluetooth
// headset, which usually means a low-bandwidth voice profile.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DataCallback receives canonical S16LE mono PCM from a running capture.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

// DeviceInfo identifies one capture device. The zero value is the
// "none" sentinel: callers treat it as "use the system default" rather
// than an error.
type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// IsDefault reports whether this is the zero-value system-default sentinel.
func (d DeviceInfo) IsDefault() bool { return d.ID == "" && d.Name == "" }

// Label returns a human-readable name, naming the default sentinel.
func (d DeviceInfo) Label() string {
	if d.IsDefault() {
		return "system default"
	}
	return d.Name
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}
