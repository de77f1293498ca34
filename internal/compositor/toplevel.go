package compositor

import (
	"github.com/1broseidon/tilewm/internal/grab"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

func (s *State) handleNewToplevel(e platform.NewToplevel) {
	w, created := s.windows.Add(window.ID(e.ID))
	if !created {
		s.log.Debug("duplicate toplevel", "window", e.ID)
		return
	}
	w.Title = e.Title
	w.Size = e.Size
	w.MinSize = e.MinSize
	w.MaxSize = e.MaxSize
	w.SetDecorated(s.opts.Decorations && e.Decorated, s.opts.Header.Height)
	s.log.Debug("new toplevel", "window", w.ID, "title", w.Title, "size", w.Size)
}

func (s *State) handleCommit(id window.ID, size tiling.Size) {
	w, ok := s.windows.Get(id)
	if !ok {
		return
	}
	if !size.IsZero() {
		w.Size = size
	}
	if !w.InitialConfigureSent {
		s.sendConfigure(w)
		return
	}
	if !w.Configured() {
		return
	}
	if w.Settled() {
		w.PendingReclaimSize = nil
	}

	if !w.Initialized {
		w.Initialized = true
		s.place(w)
		return
	}

	switch w.State {
	case window.TiledPendingUntile:
		s.untile(w)
	case window.UntiledPendingTile:
		s.retile(w)
	}

	if w.Resize.Phase != grab.Idle {
		cur, mapped := s.space.ElementLocation(w.ID)
		if mapped {
			if loc, moved := w.Resize.Commit(cur, w.Size); moved {
				s.space.MapElement(w, loc, false)
			}
		}
	}
}

// place runs once per window, on its first commit after the initial configure.
func (s *State) place(w *window.Window) {
	if tiling.IsFixedSize(w.MinSize, w.MaxSize) {
		w.Fixed = true
		w.State = window.Untiled
		s.float(w)
		s.log.Debug("fixed-size window left untiled", "window", w.ID, "size", w.MinSize)
		s.raiseUntiled()
		return
	}
	if !s.tile(w) {
		w.State = window.Untiled
		s.float(w)
	}
	s.raiseUntiled()
}

func (s *State) untile(w *window.Window) {
	s.reclaim(w)
	w.State = window.Untiled
	w.PendingReclaimSize = nil
	s.float(w)
	s.raiseUntiled()
}

func (s *State) retile(w *window.Window) {
	if !s.tile(w) {
		w.State = window.Untiled
		s.log.Debug("window does not fit, staying untiled", "window", w.ID)
	}
	s.raiseUntiled()
}

func (s *State) handleDestroyed(id window.ID) {
	w, ok := s.windows.Get(id)
	if !ok {
		return
	}
	if s.grabbing(id) {
		s.endGrab()
	}
	if w.Initialized && w.State.OccupiesCell() {
		s.reclaim(w)
	}
	s.space.UnmapElement(id)
	s.windows.Remove(id)
	if s.header != nil && s.header.id == id {
		s.header = nil
	}
	if s.pointerFocus == id {
		s.pointerFocus = 0
	}
	if s.focus == id {
		s.setKeyboardFocus(0)
	}
	s.raiseUntiled()
	s.log.Debug("toplevel destroyed", "window", id)
}

func (s *State) handleDecorationMode(id window.ID, serverSide bool) {
	w, ok := s.windows.Get(id)
	if !ok {
		return
	}
	on := s.opts.Decorations && serverSide
	if on == w.Decorated {
		return
	}
	w.SetDecorated(on, s.opts.Header.Height)
	if w.Initialized && w.State.OccupiesCell() {
		w.AssignCell(w.Cell(), w.OutputRect)
	}
	if w.InitialConfigureSent {
		s.sendPendingConfigure(w)
	}
}

func (s *State) handleSizeHints(id window.ID, min, max tiling.Size) {
	w, ok := s.windows.Get(id)
	if !ok {
		return
	}
	w.MinSize = min
	w.MaxSize = max
	if w.Fixed || !w.Initialized || !tiling.IsFixedSize(min, max) {
		return
	}
	w.Fixed = true
	if w.State.OccupiesCell() {
		s.reclaim(w)
		w.PendingReclaimSize = nil
	}
	w.State = window.Untiled
	s.float(w)
	w.Pending.Size = min
	s.sendPendingConfigure(w)
	s.raiseUntiled()
}

// RequestStateChange flips a window between tiled and untiled. The change
// resolves when the client commits after the configure sent here.
func (s *State) RequestStateChange(id window.ID) bool {
	if !s.windows.RequestStateChange(id) {
		s.log.Debug("state change ignored", "window", id)
		return false
	}
	w, _ := s.windows.Get(id)
	s.sendConfigure(w)
	return true
}
