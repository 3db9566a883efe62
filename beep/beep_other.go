//go:build !linux

package beep

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device

	pending atomic.Pointer[[]byte]
	playPos atomic.Uint32
)

func initBackend() {
	var err error
	malgoCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	device, err = malgo.InitDevice(malgoCtx.Context, config, malgo.DeviceCallbacks{
		Data: dataCallback,
	})
	if err != nil {
		malgoCtx.Uninit()
		malgoCtx = nil
		device = nil
	}
}

func dataCallback(pOutput, _ []byte, _ uint32) {
	// The device keeps running between cues; pad with silence.
	for i := range pOutput {
		pOutput[i] = 0
	}
	buf := pending.Load()
	if buf == nil {
		return
	}
	pos := playPos.Load()
	if int(pos) >= len(*buf) {
		pending.Store(nil)
		return
	}
	n := copy(pOutput, (*buf)[pos:])
	playPos.Add(uint32(n))
}

func playSamples(samples []int16) {
	if device == nil || len(samples) == 0 {
		return
	}
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	playPos.Store(0)
	pending.Store(&raw)
	device.Start()
}
