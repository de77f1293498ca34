package platform

import (
	"context"
	"sync"

	"github.com/1broseidon/tilewm/internal/tiling"
)

// ConfigureCall is a configure recorded by the headless backend.
type ConfigureCall struct {
	ID        WindowID
	Serial    uint32
	Configure Configure
}

// ForwardedPointer is a pointer event the headless backend delivered to a client.
type ForwardedPointer struct {
	ID     WindowID
	Local  tiling.PointF
	Button uint32
	Axis   bool
}

// Headless is an in-memory backend. It never talks to a display; it records
// every request so the compositor can be driven and inspected directly.
// With AutoAck set it answers each configure with an ack and a commit of the
// proposed size, like a cooperative client. A zero size commits nothing new.
type Headless struct {
	mu      sync.Mutex
	outputs []Output
	events  *eventQueue
	serial  uint32

	AutoAck bool

	Configures  []ConfigureCall
	Closed      []WindowID
	Focus       WindowID
	PointerGrab bool
	Bound       []string
	Frames      int
	LastFrame   Frame
	Forwarded   []ForwardedPointer

	alive map[WindowID]bool
}

var (
	_ Backend          = (*Headless)(nil)
	_ PointerForwarder = (*Headless)(nil)
	_ Liveness         = (*Headless)(nil)
)

// NewHeadless creates a headless backend with the given outputs.
func NewHeadless(outputs []Output) *Headless {
	if len(outputs) == 0 {
		outputs = []Output{{Name: "HEADLESS-1", Geometry: tiling.Rect{Width: 1920, Height: 1080}}}
	}
	return &Headless{
		outputs: append([]Output(nil), outputs...),
		events:  newEventQueue(256),
		alive:   make(map[WindowID]bool),
	}
}

func (h *Headless) Name() string     { return KindHeadless.String() }
func (h *Headless) SeatName() string { return "headless" }

// Outputs returns the configured outputs.
func (h *Headless) Outputs() ([]Output, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Output(nil), h.outputs...), nil
}

// Events returns the event channel.
func (h *Headless) Events() <-chan Event {
	return h.events.events()
}

// Inject queues an event as if it came from a client or input device.
func (h *Headless) Inject(ev Event) {
	if tl, ok := ev.(NewToplevel); ok {
		h.mu.Lock()
		h.alive[tl.ID] = true
		h.mu.Unlock()
	}
	if d, ok := ev.(ToplevelDestroyed); ok {
		h.mu.Lock()
		delete(h.alive, d.ID)
		h.mu.Unlock()
	}
	h.events.push(ev)
}

// NextSerial hands out a serial for injected input events.
func (h *Headless) NextSerial() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.serial++
	return h.serial
}

// Configure records the configure and, with AutoAck, answers it.
func (h *Headless) Configure(id WindowID, c Configure) (uint32, error) {
	serial := h.NextSerial()
	h.mu.Lock()
	h.Configures = append(h.Configures, ConfigureCall{ID: id, Serial: serial, Configure: c})
	auto := h.AutoAck
	h.mu.Unlock()
	if auto {
		h.events.push(AckConfigure{ID: id, Serial: serial})
		h.events.push(Commit{ID: id, Size: c.Size})
	}
	return serial, nil
}

// LastConfigure returns the most recent configure sent to id.
func (h *Headless) LastConfigure(id WindowID) (ConfigureCall, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.Configures) - 1; i >= 0; i-- {
		if h.Configures[i].ID == id {
			return h.Configures[i], true
		}
	}
	return ConfigureCall{}, false
}

// Close records a close request.
func (h *Headless) Close(id WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Closed = append(h.Closed, id)
	return nil
}

func (h *Headless) SetKeyboardFocus(id WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Focus = id
	return nil
}

func (h *Headless) SetPointerGrab(active bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.PointerGrab = active
	return nil
}

func (h *Headless) BindKeys(sequences []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Bound = append([]string(nil), sequences...)
	return nil
}

// Render stores the frame.
func (h *Headless) Render(frame Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Frames++
	h.LastFrame = frame
	return nil
}

// SetOutput replaces or adds an output and reports the change as an event.
func (h *Headless) SetOutput(o Output) {
	h.mu.Lock()
	replaced := false
	for i := range h.outputs {
		if h.outputs[i].Name == o.Name {
			h.outputs[i] = o
			replaced = true
		}
	}
	if !replaced {
		h.outputs = append(h.outputs, o)
	}
	h.mu.Unlock()
	h.events.push(OutputChanged{Output: o})
}

func (h *Headless) ForwardMotion(id WindowID, local tiling.PointF, _ uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Forwarded = append(h.Forwarded, ForwardedPointer{ID: id, Local: local})
}

func (h *Headless) ForwardButton(id WindowID, button uint32, _ bool, _, _ uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Forwarded = append(h.Forwarded, ForwardedPointer{ID: id, Button: button})
}

func (h *Headless) ForwardAxis(id WindowID, _, _ float64, _ uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Forwarded = append(h.Forwarded, ForwardedPointer{ID: id, Axis: true})
}

func (h *Headless) ClearPointerFocus() {}

// Alive reports whether id was announced and not destroyed or dropped.
func (h *Headless) Alive(id WindowID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alive[id]
}

// Drop forgets a client without emitting a destroy event, as if its
// connection vanished.
func (h *Headless) Drop(id WindowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.alive, id)
}

// Run blocks until ctx is done.
func (h *Headless) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Shutdown stops event delivery.
func (h *Headless) Shutdown() { h.events.close() }
