// Package grab implements interactive move and resize grabs.
package grab

import (
	"strings"

	"github.com/1broseidon/tilewm/internal/tiling"
)

// Kind distinguishes the two grab flavours.
type Kind int

const (
	KindMove Kind = iota
	KindResize
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Edge is a set of window edges.
type Edge uint8

const (
	EdgeTop Edge = 1 << iota
	EdgeBottom
	EdgeLeft
	EdgeRight

	EdgeNone Edge = 0
)

// String returns a "top|left" style representation.
func (e Edge) String() string {
	if e == EdgeNone {
		return "none"
	}
	var parts []string
	if e&EdgeTop != 0 {
		parts = append(parts, "top")
	}
	if e&EdgeBottom != 0 {
		parts = append(parts, "bottom")
	}
	if e&EdgeLeft != 0 {
		parts = append(parts, "left")
	}
	if e&EdgeRight != 0 {
		parts = append(parts, "right")
	}
	return strings.Join(parts, "|")
}

// Bands are the edge proximity thresholds used to pick a resize edge.
type Bands struct {
	TopBottom int
	LeftRight int
}

// DefaultBands returns 70px vertical and 10px horizontal bands.
func DefaultBands() Bands {
	return Bands{TopBottom: 70, LeftRight: 10}
}

// Detect picks the single edge nearest local, a pointer location relative to
// a window of the given size. Bands are tested top, bottom, left, right and
// the first hit wins. EdgeNone means the pointer is in none of them.
func (b Bands) Detect(local tiling.PointF, size tiling.Size) Edge {
	w, h := float64(size.Width), float64(size.Height)
	switch {
	case local.Y < float64(b.TopBottom):
		return EdgeTop
	case local.Y >= h-float64(b.TopBottom):
		return EdgeBottom
	case local.X < float64(b.LeftRight):
		return EdgeLeft
	case local.X >= w-float64(b.LeftRight):
		return EdgeRight
	default:
		return EdgeNone
	}
}

// Move is an active interactive move.
type Move struct {
	Serial  uint32
	Window  uint32
	Start   tiling.PointF
	Initial tiling.Point
}

// Location returns the window location for the current pointer position.
func (m Move) Location(pointer tiling.PointF) tiling.Point {
	d := pointer.Sub(m.Start)
	return tiling.PointF{
		X: float64(m.Initial.X) + d.X,
		Y: float64(m.Initial.Y) + d.Y,
	}.Round()
}

// Resize is an active interactive resize. Initial holds the element location
// and the content size at grab start.
type Resize struct {
	Serial  uint32
	Window  uint32
	Start   tiling.PointF
	Initial tiling.Rect
	Edges   Edge
	MinSize tiling.Size
	MaxSize tiling.Size
}

// Size projects the pointer delta onto the active edges and returns the
// content size to propose to the client.
func (r Resize) Size(pointer tiling.PointF) tiling.Size {
	d := pointer.Sub(r.Start).Round()
	s := r.Initial.Size()
	if r.Edges&EdgeLeft != 0 {
		s.Width -= d.X
	} else if r.Edges&EdgeRight != 0 {
		s.Width += d.X
	}
	if r.Edges&EdgeTop != 0 {
		s.Height -= d.Y
	} else if r.Edges&EdgeBottom != 0 {
		s.Height += d.Y
	}
	return tiling.Clamp(s, r.MinSize, r.MaxSize)
}

// State returns the per-window bookkeeping for this grab.
func (r Resize) State() ResizeState {
	return ResizeState{Phase: Resizing, Edges: r.Edges, Initial: r.Initial}
}
