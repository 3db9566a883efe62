package audio

import (
	"slices"
	"sync"
	"time"
)

const defaultPollInterval = 3 * time.Second

// Monitor watches the capture device list and reports changes to the
// effective input device: the selected device disappearing (fall back
// to system default) or the preferred device reappearing (reconnect).
// Platform backends expose no portable change notification, so the
// monitor polls the device list the way the capture context does.
type Monitor struct {
	ctx      Context
	interval time.Duration

	mu        sync.Mutex
	current   DeviceInfo
	preferred string // user's chosen device name, remembered across unplugs
	lastNames []string
	subs      map[int]func(DeviceInfo)
	nextSub   int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewMonitor(ctx Context, preferred DeviceInfo) *Monitor {
	return &Monitor{
		ctx:      ctx,
		interval: defaultPollInterval,
		current:  preferred,
		preferred: preferred.Name,
		subs:     make(map[int]func(DeviceInfo)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. Close stops it.
func (m *Monitor) Start() {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.poll()
			}
		}
	}()
}

func (m *Monitor) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}

// Current returns the effective input device; the zero value means
// "system default".
func (m *Monitor) Current() DeviceInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Select records an explicit user device choice and notifies observers.
func (m *Monitor) Select(dev DeviceInfo) {
	m.mu.Lock()
	m.current = dev
	if !dev.IsDefault() {
		m.preferred = dev.Name
	}
	subs := m.snapshotSubs()
	m.mu.Unlock()
	notify(subs, dev)
}

// OnChange registers a device-change observer and returns its
// unsubscribe func. Observers are called from the monitor goroutine.
func (m *Monitor) OnChange(fn func(DeviceInfo)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Monitor) poll() {
	devices, err := m.ctx.Devices()
	if err != nil {
		return
	}
	names := make([]string, len(devices))
	for i := range devices {
		names[i] = devices[i].Name
	}

	m.mu.Lock()
	if slices.Equal(m.lastNames, names) {
		m.mu.Unlock()
		return
	}
	m.lastNames = names

	var changed *DeviceInfo
	if !m.current.IsDefault() && !slices.Contains(names, m.current.Name) {
		// Selected device disappeared; fall back to system default.
		m.current = DeviceInfo{}
		changed = &DeviceInfo{}
	} else if m.current.IsDefault() && m.preferred != "" {
		if i := slices.Index(names, m.preferred); i >= 0 {
			// Preferred device reappeared; reconnect.
			m.current = devices[i]
			changed = &devices[i]
		}
	}
	subs := m.snapshotSubs()
	m.mu.Unlock()

	if changed != nil {
		notify(subs, *changed)
	}
}

func (m *Monitor) snapshotSubs() []func(DeviceInfo) {
	out := make([]func(DeviceInfo), 0, len(m.subs))
	for _, fn := range m.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(DeviceInfo), dev DeviceInfo) {
	for _, fn := range subs {
		fn(dev)
	}
}
