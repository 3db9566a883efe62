package hotkey

type FakeListener struct {
	events chan Event
}

func NewFake() *FakeListener {
	return &FakeListener{events: make(chan Event, 4)}
}

func (f *FakeListener) Register() error      { return nil }
func (f *FakeListener) Unregister()          {}
func (f *FakeListener) Events() <-chan Event { return f.events }

func (f *FakeListener) SimToggle() { f.events <- Toggle }
func (f *FakeListener) SimCancel() { f.events <- Cancel }
