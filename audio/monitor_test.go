package audio

import (
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestMonitorFallsBackWhenDeviceDisappears(t *testing.T) {
	usb := DeviceInfo{ID: "usb", Name: "USB Mic"}
	ctx := NewFakeContext(usb)
	m := NewMonitor(ctx, usb)
	m.interval = 5 * time.Millisecond

	var mu sync.Mutex
	var events []DeviceInfo
	unsub := m.OnChange(func(d DeviceInfo) {
		mu.Lock()
		events = append(events, d)
		mu.Unlock()
	})
	defer unsub()

	m.Start()
	defer m.Close()

	ctx.SetDevices() // unplug
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) >= 1
	})

	mu.Lock()
	first := events[0]
	mu.Unlock()
	if !first.IsDefault() {
		t.Errorf("expected fallback to system default, got %+v", first)
	}
	if !m.Current().IsDefault() {
		t.Errorf("Current() = %+v, want default sentinel", m.Current())
	}
}

func TestMonitorReconnectsPreferredDevice(t *testing.T) {
	usb := DeviceInfo{ID: "usb", Name: "USB Mic"}
	ctx := NewFakeContext(usb)
	m := NewMonitor(ctx, usb)
	m.interval = 5 * time.Millisecond

	var mu sync.Mutex
	var events []DeviceInfo
	unsub := m.OnChange(func(d DeviceInfo) {
		mu.Lock()
		events = append(events, d)
		mu.Unlock()
	})
	defer unsub()

	m.Start()
	defer m.Close()

	ctx.SetDevices()    // unplug
	ctx.SetDevices(usb) // replug

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) >= 2
	})

	mu.Lock()
	last := events[len(events)-1]
	mu.Unlock()
	if last.Name != usb.Name {
		t.Errorf("expected reconnect to %q, got %+v", usb.Name, last)
	}
	if m.Current().Name != usb.Name {
		t.Errorf("Current() = %+v, want %q", m.Current(), usb.Name)
	}
}

func TestMonitorUnsubscribeStopsDelivery(t *testing.T) {
	usb := DeviceInfo{ID: "usb", Name: "USB Mic"}
	ctx := NewFakeContext(usb)
	m := NewMonitor(ctx, usb)
	m.interval = 5 * time.Millisecond

	var mu sync.Mutex
	count := 0
	unsub := m.OnChange(func(DeviceInfo) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	unsub()

	m.Start()
	defer m.Close()

	ctx.SetDevices()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("unsubscribed observer received %d events", count)
	}
}

func TestMonitorSelectNotifies(t *testing.T) {
	usb := DeviceInfo{ID: "usb", Name: "USB Mic"}
	bt := DeviceInfo{ID: "bt", Name: "AirPods Pro"}
	ctx := NewFakeContext(usb, bt)
	m := NewMonitor(ctx, DeviceInfo{})

	var got DeviceInfo
	unsub := m.OnChange(func(d DeviceInfo) { got = d })
	defer unsub()

	m.Select(bt)
	if got.Name != bt.Name {
		t.Errorf("observer got %+v, want %+v", got, bt)
	}
	if m.Current().Name != bt.Name {
		t.Errorf("Current() = %+v, want %+v", m.Current(), bt)
	}
}

func TestIsBluetooth(t *testing.T) {
	for name, want := range map[string]bool{
		"AirPods Pro":       true,
		"Jabra Elite 85t":   true,
		"Built-in Mic":      false,
		"USB Condenser Mic": false,
	} {
		if got := IsBluetooth(name); got != want {
			t.Errorf("IsBluetooth(%q) = %v, want %v", name, got, want)
		}
	}
}
