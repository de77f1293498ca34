package tiling

import (
	"fmt"
	"sort"
	"strings"
)

// SplitAxis selects how the next tiled window divides its sibling's cell.
type SplitAxis int

const (
	// Horizontal halves the width; the new cell goes to the right.
	Horizontal SplitAxis = iota
	// Vertical halves the height; the new cell goes below.
	Vertical
)

func (s SplitAxis) String() string {
	switch s {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("SplitAxis(%d)", int(s))
	}
}

// Axis returns the coordinate axis that gets halved.
func (s SplitAxis) Axis() Axis {
	if s == Vertical {
		return AxisY
	}
	return AxisX
}

// ParseSplitAxis accepts "horizontal"/"h" and "vertical"/"v" (case-insensitive).
func ParseSplitAxis(s string) (SplitAxis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h", "hsplit":
		return Horizontal, nil
	case "vertical", "v", "vsplit":
		return Vertical, nil
	default:
		return Horizontal, fmt.Errorf("invalid split axis %q (expected horizontal or vertical)", s)
	}
}

// Split halves cell along axis. The first half keeps the origin and receives
// the smaller half on odd lengths; the second half starts at lo + extent/2.
func Split(cell Rect, axis SplitAxis) (first, second Rect) {
	a := axis.Axis()
	lo := cell.Lo(a)
	n := cell.Extent(a)
	half := n / 2
	first = cell.withSpan(a, lo, half)
	second = cell.withSpan(a, lo+half, n-half)
	return first, second
}

// Center returns the top-left location that centers size inside area.
func Center(area Rect, size Size) Point {
	return Point{
		X: area.X + (area.Width-size.Width)/2,
		Y: area.Y + (area.Height-size.Height)/2,
	}
}

// ContentSize returns the client content size for a decoration-inclusive cell.
func ContentSize(cell Size, header int) Size {
	h := cell.Height - header
	if h < 0 {
		h = 0
	}
	return Size{Width: cell.Width, Height: h}
}

// CellSize is the inverse of ContentSize.
func CellSize(content Size, header int) Size {
	return Size{Width: content.Width, Height: content.Height + header}
}

// IsFixedSize reports whether min and max hints pin the window to one non-zero size.
func IsFixedSize(min, max Size) bool {
	return !min.IsZero() && min == max
}

// Fits reports whether content satisfies the min hint. Zero components mean unconstrained.
func Fits(content, min Size) bool {
	if min.Width > 0 && content.Width < min.Width {
		return false
	}
	if min.Height > 0 && content.Height < min.Height {
		return false
	}
	return content.Width > 0 && content.Height > 0
}

// FitsMax reports whether content stays within the max hint. Zero components
// mean unconstrained.
func FitsMax(content, max Size) bool {
	if max.Width > 0 && content.Width > max.Width {
		return false
	}
	if max.Height > 0 && content.Height > max.Height {
		return false
	}
	return true
}

// Clamp bounds s by min and max hints. Zero hint components are ignored and the
// result is never smaller than 1x1.
func Clamp(s, min, max Size) Size {
	if max.Width > 0 && s.Width > max.Width {
		s.Width = max.Width
	}
	if max.Height > 0 && s.Height > max.Height {
		s.Height = max.Height
	}
	if s.Width < min.Width {
		s.Width = min.Width
	}
	if s.Height < min.Height {
		s.Height = min.Height
	}
	if s.Width < 1 {
		s.Width = 1
	}
	if s.Height < 1 {
		s.Height = 1
	}
	return s
}

// Rescale maps cell from the from output rectangle onto the to rectangle.
// Edges are scaled independently so adjacent cells stay adjacent.
func Rescale(cell, from, to Rect) Rect {
	if from.Width <= 0 || from.Height <= 0 {
		return cell
	}
	scale := func(v, fromLo, fromExt, toLo, toExt int) int {
		return toLo + (v-fromLo)*toExt/fromExt
	}
	x0 := scale(cell.X, from.X, from.Width, to.X, to.Width)
	x1 := scale(cell.X+cell.Width, from.X, from.Width, to.X, to.Width)
	y0 := scale(cell.Y, from.Y, from.Height, to.Y, to.Height)
	y1 := scale(cell.Y+cell.Height, from.Y, from.Height, to.Y, to.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// CheckPartition verifies that cells exactly cover area with no overlapping
// interiors. It returns nil for an empty cell set.
func CheckPartition(area Rect, cells []Rect) error {
	if len(cells) == 0 {
		return nil
	}
	total := 0
	for i, c := range cells {
		if c.Area() == 0 {
			return fmt.Errorf("cell %d %s is empty", i, c)
		}
		if c.X < area.X || c.Y < area.Y || c.X+c.Width > area.X+area.Width || c.Y+c.Height > area.Y+area.Height {
			return fmt.Errorf("cell %d %s escapes area %s", i, c, area)
		}
		for j := i + 1; j < len(cells); j++ {
			if c.Intersects(cells[j]) {
				return fmt.Errorf("cells %d %s and %d %s overlap", i, c, j, cells[j])
			}
		}
		total += c.Area()
	}
	if total != area.Area() {
		return fmt.Errorf("cells cover %d of %d pixels", total, area.Area())
	}
	return nil
}

// SortCells orders cells top-to-bottom, then left-to-right.
func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Rect.Y != cells[j].Rect.Y {
			return cells[i].Rect.Y < cells[j].Rect.Y
		}
		return cells[i].Rect.X < cells[j].Rect.X
	})
}
