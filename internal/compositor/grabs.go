package compositor

import (
	"github.com/1broseidon/tilewm/internal/grab"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

// validGrab checks that a grab request still matches the live pointer state.
// Stale requests are dropped, never reported to the client.
func (s *State) validGrab(id window.ID, serial uint32, kind grab.Kind) (*window.Window, bool) {
	w, ok := s.windows.Get(id)
	switch {
	case !ok:
		s.log.Debug("grab for unknown window", "kind", kind, "window", id)
	case s.Grabbing():
		s.log.Debug("grab already active", "kind", kind, "window", id)
	case len(s.buttons) == 0:
		s.log.Debug("stale grab, no button held", "kind", kind, "window", id)
	case serial != s.pressSerial:
		s.log.Debug("stale grab serial", "kind", kind, "window", id, "serial", serial, "press", s.pressSerial)
	case s.pointerFocus != id:
		s.log.Debug("grab window lacks pointer focus", "kind", kind, "window", id, "focus", s.pointerFocus)
	case w.State != window.Untiled:
		s.log.Debug("grab refused for tiled window", "kind", kind, "window", id, "state", w.State)
	case !s.space.Contains(id):
		s.log.Debug("grab for unmapped window", "kind", kind, "window", id)
	default:
		return w, true
	}
	return nil, false
}

// StartMove begins an interactive move if serial still owns the pointer.
func (s *State) StartMove(id window.ID, serial uint32) bool {
	w, ok := s.validGrab(id, serial, grab.KindMove)
	if !ok {
		return false
	}
	loc, _ := s.space.ElementLocation(w.ID)
	s.move = &grab.Move{
		Serial:  serial,
		Window:  uint32(w.ID),
		Start:   s.pointer,
		Initial: loc,
	}
	s.beginGrab()
	s.log.Debug("move grab started", "window", w.ID, "at", loc)
	return true
}

// StartResize begins an interactive resize. The edges come from the band the
// pointer sits in on the window, whatever the client asked for. Outside every
// band nothing starts.
func (s *State) StartResize(id window.ID, serial uint32, requested grab.Edge) bool {
	w, ok := s.validGrab(id, serial, grab.KindResize)
	if !ok {
		return false
	}
	loc, _ := s.space.ElementLocation(w.ID)
	edges := s.opts.Bands.Detect(s.pointer.Sub(loc.ToF()), w.WindowSize())
	if edges == grab.EdgeNone {
		s.log.Debug("resize outside every edge band", "window", w.ID, "requested", requested)
		return false
	}
	r := &grab.Resize{
		Serial:  serial,
		Window:  uint32(w.ID),
		Start:   s.pointer,
		Initial: tiling.RectFrom(loc, w.Size),
		Edges:   edges,
		MinSize: w.MinSize,
		MaxSize: w.MaxSize,
	}
	s.resize = r
	w.Resize = r.State()
	w.Pending.Resizing = true
	s.sendPendingConfigure(w)
	s.beginGrab()
	s.log.Debug("resize grab started", "window", w.ID, "edges", edges)
	return true
}

func (s *State) beginGrab() {
	s.header = nil
	if s.forwarder != nil {
		s.forwarder.ClearPointerFocus()
	}
	if err := s.backend.SetPointerGrab(true); err != nil {
		s.log.Warn("pointer grab failed", "error", err)
	}
}

// grabbing reports whether the active grab manipulates id.
func (s *State) grabbing(id window.ID) bool {
	return (s.move != nil && window.ID(s.move.Window) == id) ||
		(s.resize != nil && window.ID(s.resize.Window) == id)
}

// endGrab finishes the active grab, if any.
func (s *State) endGrab() {
	if s.resize != nil {
		if w, ok := s.windows.Get(window.ID(s.resize.Window)); ok {
			w.Resize.Release()
			w.Pending.Resizing = false
			s.sendPendingConfigure(w)
		}
	}
	s.move = nil
	s.resize = nil
	s.header = nil
	if err := s.backend.SetPointerGrab(false); err != nil {
		s.log.Warn("pointer ungrab failed", "error", err)
	}
}
