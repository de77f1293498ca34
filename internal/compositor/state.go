// Package compositor is the single-threaded core of the window manager: it
// consumes backend events, drives the tiling state machine, layout and
// reclamation, routes pointer input to grabs and decorations, and produces the
// frame handed back to the backend.
package compositor

import (
	"log/slog"
	"os/exec"
	"sort"

	"github.com/1broseidon/tilewm/internal/grab"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/space"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

// State owns every piece of mutable compositor state. It is not safe for
// concurrent use; the Loop is the only caller.
type State struct {
	backend   platform.Backend
	forwarder platform.PointerForwarder
	log       *slog.Logger
	opts      Options

	windows *window.Registry
	space   *space.Space
	queue   Queue
	split   tiling.SplitAxis
	tileSeq uint64

	pointer      tiling.PointF
	buttons      map[uint32]bool
	pressSerial  uint32
	pointerFocus window.ID
	focus        window.ID

	move   *grab.Move
	resize *grab.Resize
	header *headerPress

	spawn func(command string) error
	quit  bool
}

// headerPress remembers a press that landed in a title bar.
type headerPress struct {
	id window.ID
}

// New creates a State on top of backend. Outputs are read once; later
// changes arrive as events.
func New(backend platform.Backend, opts Options) *State {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Bindings == nil {
		opts.Bindings = DefaultBindings()
	}
	s := &State{
		backend: backend,
		log:     logger.With("component", "compositor"),
		opts:    opts,
		windows: window.NewRegistry(),
		space:   space.New(),
		split:   opts.Split,
		buttons: make(map[uint32]bool),
		spawn:   spawnShell,
	}
	if f, ok := backend.(platform.PointerForwarder); ok {
		s.forwarder = f
	}
	outputs, err := backend.Outputs()
	if err != nil {
		s.log.Warn("failed to read outputs", "error", err)
	}
	for _, o := range outputs {
		s.space.SetOutput(space.Output{Name: o.Name, Geometry: o.Geometry})
	}
	return s
}

func spawnShell(command string) error {
	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Windows exposes the window registry.
func (s *State) Windows() *window.Registry { return s.windows }

// Space exposes the mapped-window space.
func (s *State) Space() *space.Space { return s.space }

// Split returns the axis the next tiled window will be split along.
func (s *State) Split() tiling.SplitAxis { return s.split }

// SetSplit changes the split axis for future placements.
func (s *State) SetSplit(axis tiling.SplitAxis) {
	s.split = axis
	s.log.Debug("split axis changed", "axis", axis)
}

// Focus returns the keyboard focus, or zero.
func (s *State) Focus() window.ID { return s.focus }

// Quitting reports whether a quit action fired.
func (s *State) Quitting() bool { return s.quit }

// Pointer returns the last pointer location.
func (s *State) Pointer() tiling.PointF { return s.pointer }

// Grabbing reports whether a move or resize grab is active.
func (s *State) Grabbing() bool { return s.move != nil || s.resize != nil }

// Defer queues a task to run after the current dispatch.
func (s *State) Defer(d Deferred) {
	s.queue.Push(d)
}

// Flush runs deferred tasks in submission order and hands the resulting
// frame to the backend.
func (s *State) Flush() {
	s.queue.Drain(s)
	if err := s.backend.Render(s.Frame()); err != nil {
		s.log.Warn("render failed", "error", err)
	}
}

// HandleEvent dispatches one backend event.
func (s *State) HandleEvent(ev platform.Event) {
	switch e := ev.(type) {
	case platform.NewToplevel:
		s.handleNewToplevel(e)
	case platform.Commit:
		s.handleCommit(window.ID(e.ID), e.Size)
	case platform.AckConfigure:
		if w, ok := s.windows.Get(window.ID(e.ID)); ok {
			w.Ack(e.Serial)
		}
	case platform.ToplevelDestroyed:
		s.handleDestroyed(window.ID(e.ID))
	case platform.DecorationMode:
		s.handleDecorationMode(window.ID(e.ID), e.ServerSide)
	case platform.SizeHints:
		s.handleSizeHints(window.ID(e.ID), e.MinSize, e.MaxSize)
	case platform.TitleChanged:
		if w, ok := s.windows.Get(window.ID(e.ID)); ok {
			w.Title = e.Title
		}
	case platform.MoveRequest:
		s.StartMove(window.ID(e.ID), e.Serial)
	case platform.ResizeRequest:
		s.StartResize(window.ID(e.ID), e.Serial, grab.Edge(e.Edges))
	case platform.PointerMotion:
		s.handleMotion(e)
	case platform.PointerButton:
		s.handleButton(e)
	case platform.PointerAxis:
		s.handleAxis(e)
	case platform.Key:
		s.handleKey(e)
	case platform.OutputChanged:
		s.handleOutputChanged(e.Output)
	case platform.OutputRemoved:
		s.space.RemoveOutput(e.Name)
		s.log.Info("output removed", "output", e.Name)
	default:
		s.log.Debug("ignoring event", "event", ev)
	}
}

// sendConfigure sends w.Pending unconditionally.
func (s *State) sendConfigure(w *window.Window) {
	serial, err := s.backend.Configure(platform.WindowID(w.ID), platform.Configure{
		Size:         w.Pending.Size,
		Activated:    w.Pending.Activated,
		Resizing:     w.Pending.Resizing,
		HeaderHeight: w.Pending.Header,
	})
	if err != nil {
		s.log.Warn("configure failed", "window", w.ID, "error", err)
		return
	}
	w.MarkSent(serial)
}

// sendPendingConfigure sends w.Pending only if it changed since the last configure.
func (s *State) sendPendingConfigure(w *window.Window) {
	if w.NeedsConfigure() {
		s.sendConfigure(w)
	}
}

// raiseUntiled lifts every floating window above the tiled ones while
// keeping their relative order. Repeated calls leave the stack unchanged.
func (s *State) raiseUntiled() {
	var floating []*window.Window
	for _, w := range s.space.Elements() {
		if w.State.Floating() {
			floating = append(floating, w)
		}
	}
	sort.SliceStable(floating, func(i, j int) bool {
		return floating[i].ZOrder < floating[j].ZOrder
	})
	for _, w := range floating {
		s.space.RaiseElement(w.ID, false)
	}
}

// activeOutput is the output under the pointer, else the first output.
func (s *State) activeOutput() (space.Output, bool) {
	if o, ok := s.space.OutputUnder(s.pointer); ok {
		return o, true
	}
	outputs := s.space.Outputs()
	if len(outputs) == 0 {
		return space.Output{}, false
	}
	return outputs[0], true
}

// Reconfigure swaps in new settings. The header height of already decorated
// windows is kept so their cells stay consistent, and the split axis stays
// whatever the key bindings last set; the configured default applies at
// startup only.
func (s *State) Reconfigure(opts Options) {
	if opts.Bindings == nil {
		opts.Bindings = DefaultBindings()
	}
	opts.Logger = s.opts.Logger
	opts.Header.Height = s.opts.Header.Height
	s.opts = opts
	if err := s.backend.BindKeys(s.BoundSequences()); err != nil {
		s.log.Warn("failed to bind keys", "error", err)
	}
	s.log.Info("configuration applied", "split", s.split, "tolerance", opts.Tolerance, "bindings", len(opts.Bindings))
}
