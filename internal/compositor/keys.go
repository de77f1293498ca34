package compositor

import (
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

// BoundSequences lists the key sequences the backend should grab.
func (s *State) BoundSequences() []string {
	seqs := make([]string, 0, len(s.opts.Bindings))
	for seq := range s.opts.Bindings {
		seqs = append(seqs, seq)
	}
	return seqs
}

func (s *State) handleKey(e platform.Key) {
	if !e.Pressed {
		return
	}
	action, ok := s.opts.Bindings[e.Sequence]
	if !ok {
		s.log.Debug("unbound key", "sequence", e.Sequence)
		return
	}
	s.Run(action)
}

// Run performs a bound action.
func (s *State) Run(action Action) {
	s.log.Debug("action", "action", action, "focus", s.focus)
	switch action {
	case ActionSplitHorizontal:
		s.SetSplit(tiling.Horizontal)
	case ActionSplitVertical:
		s.SetSplit(tiling.Vertical)
	case ActionToggleTiling:
		if s.focus != 0 {
			s.Defer(ToggleTile{ID: s.focus})
		}
	case ActionCloseWindow:
		if s.focus != 0 {
			s.Defer(CloseWindow{ID: s.focus})
		}
	case ActionSpawnTerminal:
		if s.opts.Terminal == "" {
			return
		}
		if err := s.spawn(s.opts.Terminal); err != nil {
			s.log.Warn("failed to spawn terminal", "command", s.opts.Terminal, "error", err)
		}
	case ActionQuit:
		s.quit = true
	case ActionFocusLeft:
		s.focusNeighbour(tiling.Left)
	case ActionFocusRight:
		s.focusNeighbour(tiling.Right)
	case ActionFocusUp:
		s.focusNeighbour(tiling.Up)
	case ActionFocusDown:
		s.focusNeighbour(tiling.Down)
	}
}

// focusNeighbour activates the mapped window next to the focused one in d.
// Without a focused window the topmost one is chosen.
func (s *State) focusNeighbour(d tiling.Direction) {
	elems := s.space.Elements()
	if len(elems) == 0 {
		return
	}
	cells := make([]tiling.Cell, 0, len(elems))
	var from tiling.Rect
	found := false
	for _, w := range elems {
		r, ok := s.space.ElementBounds(w)
		if !ok {
			continue
		}
		if w.ID == s.focus {
			from, found = r, true
		}
		cells = append(cells, tiling.Cell{ID: uint32(w.ID), Rect: r})
	}
	if !found {
		s.Activate(elems[len(elems)-1].ID)
		return
	}
	if next, ok := tiling.Nearest(from, cells, d); ok {
		s.Activate(window.ID(next.ID))
	}
}

func (s *State) closeWindow(id window.ID) bool {
	if _, ok := s.windows.Get(id); !ok {
		return false
	}
	if err := s.backend.Close(platform.WindowID(id)); err != nil {
		s.log.Warn("close failed", "window", id, "error", err)
		return false
	}
	return true
}
