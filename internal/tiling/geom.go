package tiling

import (
	"fmt"
	"math"
)

// Point is a location in logical output coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// PointF is a sub-pixel pointer location.
type PointF struct {
	X float64
	Y float64
}

// Sub returns p - q.
func (p PointF) Sub(q PointF) PointF {
	return PointF{X: p.X - q.X, Y: p.Y - q.Y}
}

// Round converts p to integer coordinates, rounding half away from zero.
func (p PointF) Round() Point {
	return Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Floor truncates p towards negative infinity.
func (p PointF) Floor() Point {
	return Point{X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y))}
}

// ToF converts p to a PointF.
func (p Point) ToF() PointF {
	return PointF{X: float64(p.X), Y: float64(p.Y)}
}

// Size is a width/height pair in logical pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Rect represents a window position and size
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RectFrom builds a Rect from a location and a size.
func RectFrom(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersects reports whether the interiors of r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Area returns Width*Height, or zero for degenerate rectangles.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Axis selects a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Lo returns the leading edge of r on axis a.
func (r Rect) Lo(a Axis) int {
	if a == AxisX {
		return r.X
	}
	return r.Y
}

// Hi returns the trailing (exclusive) edge of r on axis a.
func (r Rect) Hi(a Axis) int {
	return r.Lo(a) + r.Extent(a)
}

// Extent returns the length of r along axis a.
func (r Rect) Extent(a Axis) int {
	if a == AxisX {
		return r.Width
	}
	return r.Height
}

// withSpan returns r with its position and length on axis a replaced.
func (r Rect) withSpan(a Axis, lo, extent int) Rect {
	if a == AxisX {
		r.X = lo
		r.Width = extent
	} else {
		r.Y = lo
		r.Height = extent
	}
	return r
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
