package compositor

import (
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/space"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

// tiledOn returns the windows holding a cell on output o, except skip.
func (s *State) tiledOn(o space.Output, skip window.ID) []*window.Window {
	var out []*window.Window
	for _, w := range s.windows.All() {
		if w.ID == skip || !w.Initialized || !w.State.OccupiesCell() {
			continue
		}
		if !s.space.Contains(w.ID) || !o.Geometry.Contains(w.OriginPos) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// splitTarget picks the tiled window a new window splits: the focused one
// when it is on this output, else the one that entered the layout last.
func (s *State) splitTarget(tiled []*window.Window) *window.Window {
	target := tiled[0]
	for _, w := range tiled {
		if w.ID == s.focus {
			return w
		}
		if w.TileSeq > target.TileSeq {
			target = w
		}
	}
	return target
}

// fitsCell reports whether w's content can take exactly the given cell.
func fitsCell(w *window.Window, cell tiling.Size) bool {
	content := tiling.ContentSize(cell, w.Header)
	return tiling.Fits(content, w.MinSize) && tiling.FitsMax(content, w.MaxSize)
}

// tile inserts w into the layout of the active output. It reports false,
// leaving every other window untouched, when no output exists or w cannot
// take its cell within its size hints.
func (s *State) tile(w *window.Window) bool {
	if w.Fixed {
		return false
	}
	out, ok := s.activeOutput()
	if !ok {
		s.log.Debug("no output for layout", "window", w.ID)
		return false
	}

	tiled := s.tiledOn(out, w.ID)
	if len(tiled) == 0 {
		if !fitsCell(w, out.Geometry.Size()) {
			s.log.Debug("output violates size hints", "window", w.ID)
			return false
		}
		w.State = window.Tiled
		s.stampTiled(w)
		s.assign(w, out.Geometry, out.Geometry)
		return true
	}

	target := s.splitTarget(tiled)
	first, second := tiling.Split(target.Cell(), s.split)
	if !fitsCell(w, second.Size()) ||
		!tiling.Fits(tiling.ContentSize(first.Size(), target.Header), target.MinSize) {
		s.log.Debug("split would violate size hints", "window", w.ID, "target", target.ID)
		return false
	}
	s.assign(target, first, out.Geometry)
	w.State = window.Tiled
	s.stampTiled(w)
	s.assign(w, second, out.Geometry)
	s.log.Debug("window tiled", "window", w.ID, "cell", second, "split", target.ID, "axis", s.split)
	return true
}

func (s *State) stampTiled(w *window.Window) {
	s.tileSeq++
	w.TileSeq = s.tileSeq
}

// assign gives w a cell, maps it there and tells the client.
func (s *State) assign(w *window.Window, cell, output tiling.Rect) {
	w.AssignCell(cell, output)
	s.space.MapElement(w, cell.Origin(), false)
	s.sendPendingConfigure(w)
}

// float centers w at its current size on the active output and raises it.
func (s *State) float(w *window.Window) {
	loc := tiling.Point{}
	if out, ok := s.activeOutput(); ok {
		loc = tiling.Center(out.Geometry, w.WindowSize())
	}
	w.Pending.Size = w.Size
	s.space.MapElement(w, loc, true)
	if w.InitialConfigureSent {
		s.sendPendingConfigure(w)
	}
}

// reclaim hands the cell of w to the siblings that can absorb it. When none
// can, the area is left empty.
func (s *State) reclaim(w *window.Window) {
	closing := w.Cell()
	o, ok := s.space.OutputContaining(closing.Origin())
	if !ok {
		s.log.Debug("reclaim skipped, window is off every output", "window", w.ID)
		return
	}
	var siblings []tiling.Cell
	for _, x := range s.tiledOn(o, w.ID) {
		siblings = append(siblings, tiling.Cell{ID: uint32(x.ID), Rect: x.Cell()})
	}
	res, ok := tiling.Reclaim(closing, siblings, s.opts.Tolerance)
	if !ok {
		s.log.Debug("no sibling can reclaim cell", "window", w.ID, "cell", closing)
		return
	}
	for _, c := range res.Grown {
		x, ok := s.windows.Get(window.ID(c.ID))
		if !ok {
			continue
		}
		s.assign(x, c.Rect, o.Geometry)
	}
	s.log.Debug("cell reclaimed", "window", w.ID, "direction", res.Direction, "grown", len(res.Grown))
}

func (s *State) handleOutputChanged(o platform.Output) {
	prev, existed := s.space.SetOutput(space.Output{Name: o.Name, Geometry: o.Geometry})
	if !existed {
		s.log.Info("output added", "output", o.Name, "geometry", o.Geometry)
		return
	}
	if prev == o.Geometry {
		return
	}
	s.log.Info("output changed", "output", o.Name, "from", prev, "to", o.Geometry)

	// Collect first: rescaled cells may no longer contain their old origin.
	var tiled []*window.Window
	for _, w := range s.windows.All() {
		if w.Initialized && w.State.OccupiesCell() && s.space.Contains(w.ID) && prev.Contains(w.OriginPos) {
			tiled = append(tiled, w)
		}
	}
	for _, w := range tiled {
		s.assign(w, tiling.Rescale(w.Cell(), prev, o.Geometry), o.Geometry)
	}
	s.raiseUntiled()
}
