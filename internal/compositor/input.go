package compositor

import (
	"github.com/1broseidon/tilewm/internal/decoration"
	"github.com/1broseidon/tilewm/internal/grab"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

func (s *State) handleMotion(e platform.PointerMotion) {
	s.pointer = e.Location

	if s.move != nil {
		if w, ok := s.windows.Get(window.ID(s.move.Window)); ok {
			s.space.MapElement(w, s.move.Location(e.Location), false)
		}
		return
	}
	if s.resize != nil {
		if w, ok := s.windows.Get(window.ID(s.resize.Window)); ok {
			size := s.resize.Size(e.Location)
			w.ElementSize = size
			w.Pending.Size = size
			s.sendPendingConfigure(w)
		}
		return
	}

	// While a button is held the pointer stays with the window it was pressed on.
	if len(s.buttons) > 0 && s.pointerFocus != 0 {
		if w, ok := s.windows.Get(s.pointerFocus); ok {
			if loc, ok := s.space.ElementLocation(w.ID); ok {
				s.forwardMotion(w, e.Location.Sub(loc.ToF()), e.Time)
			}
		}
		return
	}

	w, loc, ok := s.space.ElementUnder(e.Location)
	if prev, had := s.windows.Get(s.pointerFocus); had && (!ok || prev.ID != w.ID) {
		prev.Hover = decoration.Hover{}
	}
	if !ok {
		s.setPointerFocus(0)
		return
	}
	s.pointerFocus = w.ID
	s.forwardMotion(w, e.Location.Sub(loc.ToF()), e.Time)
}

// forwardMotion routes window-local motion to the title bar or the client.
func (s *State) forwardMotion(w *window.Window, local tiling.PointF, time uint32) {
	if w.Decorated && s.opts.Header.InBar(local.Y) {
		w.Hover = s.opts.Header.HoverAt(local.X, local.Y, w.WindowSize().Width)
		if s.forwarder != nil {
			s.forwarder.ClearPointerFocus()
		}
		return
	}
	w.Hover = decoration.Hover{}
	if s.forwarder == nil {
		return
	}
	if w.Decorated {
		local.Y = s.opts.Header.ContentY(local.Y)
	}
	s.forwarder.ForwardMotion(platform.WindowID(w.ID), local, time)
}

func (s *State) setPointerFocus(id window.ID) {
	s.pointerFocus = id
	if id == 0 && s.forwarder != nil {
		s.forwarder.ClearPointerFocus()
	}
}

func (s *State) handleButton(e platform.PointerButton) {
	if !e.Pressed {
		s.handleRelease(e)
		return
	}

	first := len(s.buttons) == 0
	s.buttons[e.Button] = true
	if first {
		s.pressSerial = e.Serial
	}
	if s.Grabbing() {
		return
	}
	if first {
		s.focusUnderPointer()
	}

	w, loc, ok := s.space.ElementUnder(s.pointer)
	if !ok {
		return
	}
	if first {
		s.pointerFocus = w.ID
	}
	local := s.pointer.Sub(loc.ToF())

	if w.Decorated && s.opts.Header.InBar(local.Y) {
		if !first {
			return
		}
		s.header = &headerPress{id: w.ID}
		if s.opts.Header.HitTest(local.X, w.WindowSize().Width) == decoration.Drag {
			s.Defer(StartMove{ID: w.ID, Serial: e.Serial})
		}
		return
	}

	if e.Modified && first && w.State == window.Untiled {
		switch e.Button {
		case platform.ButtonLeft:
			s.StartMove(w.ID, e.Serial)
			return
		case platform.ButtonRight:
			s.StartResize(w.ID, e.Serial, grab.EdgeNone)
			return
		}
	}

	if s.forwarder != nil {
		s.forwarder.ForwardButton(platform.WindowID(w.ID), e.Button, true, e.Serial, e.Time)
	}
}

func (s *State) handleRelease(e platform.PointerButton) {
	delete(s.buttons, e.Button)

	if s.Grabbing() {
		if len(s.buttons) == 0 {
			s.endGrab()
		}
		return
	}

	if hp := s.header; hp != nil {
		if len(s.buttons) == 0 {
			s.header = nil
			s.headerClick(hp)
		}
		return
	}

	if s.forwarder != nil && s.pointerFocus != 0 {
		s.forwarder.ForwardButton(platform.WindowID(s.pointerFocus), e.Button, false, e.Serial, e.Time)
	}
}

// headerClick acts on a release over the title bar the press started in.
func (s *State) headerClick(hp *headerPress) {
	w, loc, ok := s.space.ElementUnder(s.pointer)
	if !ok || w.ID != hp.id {
		return
	}
	local := s.pointer.Sub(loc.ToF())
	if !s.opts.Header.InBar(local.Y) {
		return
	}
	switch s.opts.Header.HitTest(local.X, w.WindowSize().Width) {
	case decoration.Close:
		if err := s.backend.Close(platform.WindowID(w.ID)); err != nil {
			s.log.Warn("close failed", "window", w.ID, "error", err)
		}
	case decoration.Toggle:
		s.Defer(ToggleTile{ID: w.ID})
	}
}

func (s *State) handleAxis(e platform.PointerAxis) {
	if s.Grabbing() || s.forwarder == nil || s.pointerFocus == 0 {
		return
	}
	w, ok := s.windows.Get(s.pointerFocus)
	if !ok {
		return
	}
	if loc, ok := s.space.ElementLocation(w.ID); ok && w.Decorated && s.opts.Header.InBar(s.pointer.Y-float64(loc.Y)) {
		return
	}
	s.forwarder.ForwardAxis(platform.WindowID(w.ID), e.Horizontal, e.Vertical, e.Time)
}

// focusUnderPointer raises and focuses the window under the pointer, or
// drops focus when there is none.
func (s *State) focusUnderPointer() {
	w, _, ok := s.space.ElementUnder(s.pointer)
	if !ok {
		s.setKeyboardFocus(0)
		for _, x := range s.space.Elements() {
			x.Pending.Activated = false
			s.sendPendingConfigure(x)
		}
		return
	}
	s.Activate(w.ID)
}

// Activate raises id, gives it keyboard focus and marks it activated.
func (s *State) Activate(id window.ID) bool {
	w, ok := s.windows.Get(id)
	if !ok || !s.space.Contains(id) {
		return false
	}
	s.space.RaiseElement(w.ID, true)
	s.setKeyboardFocus(w.ID)
	for _, x := range s.space.Elements() {
		x.Pending.Activated = x.ID == w.ID
		s.sendPendingConfigure(x)
	}
	if !w.Fixed {
		s.raiseUntiled()
	}
	return true
}

func (s *State) setKeyboardFocus(id window.ID) {
	if s.focus == id {
		return
	}
	s.focus = id
	if err := s.backend.SetKeyboardFocus(platform.WindowID(id)); err != nil {
		s.log.Warn("keyboard focus failed", "window", id, "error", err)
	}
}
