// Package decoration implements the server-side title bar: its button
// layout, pointer hit testing and hover tracking.
package decoration

import "fmt"

const (
	DefaultHeaderHeight = 25
	DefaultButtonWidth  = 25
)

// Button names a region of the title bar.
type Button int

const (
	None Button = iota
	Toggle
	Drag
	Indicator
	Close
)

func (b Button) String() string {
	switch b {
	case None:
		return "none"
	case Toggle:
		return "toggle"
	case Drag:
		return "drag"
	case Indicator:
		return "indicator"
	case Close:
		return "close"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// Hover tracks which title-bar buttons the pointer is over.
type Hover struct {
	Toggle    bool
	Indicator bool
	Close     bool
}

// Header describes title-bar geometry.
type Header struct {
	Height      int
	ButtonWidth int
}

// DefaultHeader returns the stock 25px bar with 25px buttons.
func DefaultHeader() Header {
	return Header{Height: DefaultHeaderHeight, ButtonWidth: DefaultButtonWidth}
}

// InBar reports whether a window-local y coordinate falls inside the bar.
func (h Header) InBar(y float64) bool {
	return y >= 0 && y < float64(h.Height)
}

// HitTest classifies a bar-local x coordinate for a bar of the given width.
// Buttons are laid out toggle, drag region, indicator, close.
func (h Header) HitTest(x float64, width int) Button {
	bw := float64(h.ButtonWidth)
	w := float64(width)
	switch {
	case x < 0 || x >= w:
		return None
	case x > w-bw:
		return Close
	case x > w-2*bw:
		return Indicator
	case x <= bw:
		return Toggle
	default:
		return Drag
	}
}

// HoverAt computes the hover flags for a bar-local pointer location.
func (h Header) HoverAt(x, y float64, width int) Hover {
	if !h.InBar(y) {
		return Hover{}
	}
	switch h.HitTest(x, width) {
	case Toggle:
		return Hover{Toggle: true}
	case Indicator:
		return Hover{Indicator: true}
	case Close:
		return Hover{Close: true}
	default:
		return Hover{}
	}
}

// ContentY translates a window-local y coordinate into the client's
// coordinate space below the bar.
func (h Header) ContentY(y float64) float64 {
	return y - float64(h.Height)
}

// Segment is one painted region of the bar, relative to the bar origin.
type Segment struct {
	Button Button
	X      int
	Width  int
}

// Segments returns the bar regions left to right for a bar of the given width.
func (h Header) Segments(width int) []Segment {
	bw := h.ButtonWidth
	if width <= 0 {
		return nil
	}
	return []Segment{
		{Button: Toggle, X: 0, Width: bw},
		{Button: Drag, X: bw, Width: max(0, width-3*bw)},
		{Button: Indicator, X: width - 2*bw, Width: bw},
		{Button: Close, X: width - bw, Width: bw},
	}
}
