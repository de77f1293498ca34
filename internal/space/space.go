// Package space keeps the mapped windows of the compositor: where each is,
// how they stack and which outputs view them.
package space

import (
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

// Output is a named view onto the space.
type Output struct {
	Name     string
	Geometry tiling.Rect
}

// Space is an ordered collection of mapped windows. Elements are stored
// bottom to top.
type Space struct {
	elements []*window.Window
	location map[window.ID]tiling.Point
	outputs  []Output
	nextZ    uint64
}

// New creates an empty space.
func New() *Space {
	return &Space{location: make(map[window.ID]tiling.Point)}
}

// SetOutput adds an output or updates the geometry of an existing one.
// It returns the previous geometry when the output already existed.
func (s *Space) SetOutput(o Output) (tiling.Rect, bool) {
	for i := range s.outputs {
		if s.outputs[i].Name == o.Name {
			prev := s.outputs[i].Geometry
			s.outputs[i].Geometry = o.Geometry
			return prev, true
		}
	}
	s.outputs = append(s.outputs, o)
	return tiling.Rect{}, false
}

// RemoveOutput drops an output by name.
func (s *Space) RemoveOutput(name string) {
	for i := range s.outputs {
		if s.outputs[i].Name == name {
			s.outputs = append(s.outputs[:i], s.outputs[i+1:]...)
			return
		}
	}
}

// Outputs returns the outputs in registration order.
func (s *Space) Outputs() []Output {
	return append([]Output(nil), s.outputs...)
}

// OutputGeometry returns the rectangle of a named output.
func (s *Space) OutputGeometry(name string) (tiling.Rect, bool) {
	for _, o := range s.outputs {
		if o.Name == name {
			return o.Geometry, true
		}
	}
	return tiling.Rect{}, false
}

// OutputUnder returns the output containing p.
func (s *Space) OutputUnder(p tiling.PointF) (Output, bool) {
	pt := p.Floor()
	for _, o := range s.outputs {
		if o.Geometry.Contains(pt) {
			return o, true
		}
	}
	return Output{}, false
}

// OutputContaining returns the output that holds the point p, used to find
// the output a cell belongs to.
func (s *Space) OutputContaining(p tiling.Point) (Output, bool) {
	for _, o := range s.outputs {
		if o.Geometry.Contains(p) {
			return o, true
		}
	}
	return Output{}, false
}

// Elements returns mapped windows bottom to top.
func (s *Space) Elements() []*window.Window {
	return append([]*window.Window(nil), s.elements...)
}

// Contains reports whether id is mapped.
func (s *Space) Contains(id window.ID) bool {
	_, ok := s.location[id]
	return ok
}

// ElementLocation returns where a mapped window sits.
func (s *Space) ElementLocation(id window.ID) (tiling.Point, bool) {
	p, ok := s.location[id]
	return p, ok
}

// ElementBounds returns the decoration-inclusive rectangle of a mapped window.
func (s *Space) ElementBounds(w *window.Window) (tiling.Rect, bool) {
	p, ok := s.location[w.ID]
	if !ok {
		return tiling.Rect{}, false
	}
	return tiling.RectFrom(p, w.WindowSize()), true
}

// ElementUnder returns the topmost window whose bounds contain p, with its location.
func (s *Space) ElementUnder(p tiling.PointF) (*window.Window, tiling.Point, bool) {
	pt := p.Floor()
	for i := len(s.elements) - 1; i >= 0; i-- {
		w := s.elements[i]
		loc := s.location[w.ID]
		if tiling.RectFrom(loc, w.WindowSize()).Contains(pt) {
			return w, loc, true
		}
	}
	return nil, tiling.Point{}, false
}

// MapElement places w at loc. A window that is not yet mapped goes on top.
// With reorder set, an already mapped window is raised as well.
func (s *Space) MapElement(w *window.Window, loc tiling.Point, reorder bool) {
	_, mapped := s.location[w.ID]
	s.location[w.ID] = loc
	if !mapped {
		s.elements = append(s.elements, w)
		s.nextZ++
		w.ZOrder = s.nextZ
		return
	}
	if reorder {
		s.RaiseElement(w.ID, true)
	}
}

// UnmapElement removes a window from the space.
func (s *Space) UnmapElement(id window.ID) {
	if _, ok := s.location[id]; !ok {
		return
	}
	delete(s.location, id)
	if i := s.index(id); i >= 0 {
		s.elements = append(s.elements[:i], s.elements[i+1:]...)
	}
}

// RaiseElement moves a window to the top of the stack. With bump set the
// window also takes a fresh stacking counter, so later re-raises keep it above
// windows raised before it.
func (s *Space) RaiseElement(id window.ID, bump bool) {
	i := s.index(id)
	if i < 0 {
		return
	}
	w := s.elements[i]
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	s.elements = append(s.elements, w)
	if bump {
		s.nextZ++
		w.ZOrder = s.nextZ
	}
}

// Stacking returns mapped ids bottom to top.
func (s *Space) Stacking() []window.ID {
	ids := make([]window.ID, len(s.elements))
	for i, w := range s.elements {
		ids[i] = w.ID
	}
	return ids
}

func (s *Space) index(id window.ID) int {
	for i, w := range s.elements {
		if w.ID == id {
			return i
		}
	}
	return -1
}
