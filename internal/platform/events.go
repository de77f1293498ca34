package platform

import "github.com/1broseidon/tilewm/internal/tiling"

// Event is a decoded transport or input event.
type Event interface {
	isEvent()
}

// NewToplevel announces a client toplevel.
type NewToplevel struct {
	ID        WindowID
	Title     string
	Size      tiling.Size
	MinSize   tiling.Size
	MaxSize   tiling.Size
	Decorated bool
}

// Commit reports the content size the client is now presenting.
type Commit struct {
	ID   WindowID
	Size tiling.Size
}

// AckConfigure acknowledges a configure serial.
type AckConfigure struct {
	ID     WindowID
	Serial uint32
}

// ToplevelDestroyed reports that a client toplevel is gone.
type ToplevelDestroyed struct {
	ID WindowID
}

// DecorationMode reports a client's decoration preference.
type DecorationMode struct {
	ID         WindowID
	ServerSide bool
}

// SizeHints reports updated min/max size hints.
type SizeHints struct {
	ID      WindowID
	MinSize tiling.Size
	MaxSize tiling.Size
}

// TitleChanged reports a new window title.
type TitleChanged struct {
	ID    WindowID
	Title string
}

// MoveRequest asks for an interactive move started by the press with Serial.
type MoveRequest struct {
	ID     WindowID
	Serial uint32
}

// ResizeRequest asks for an interactive resize. Edges uses grab.Edge bits.
type ResizeRequest struct {
	ID     WindowID
	Serial uint32
	Edges  uint8
}

// PointerMotion is an absolute pointer position in output coordinates.
type PointerMotion struct {
	Location tiling.PointF
	Time     uint32
}

// Pointer buttons, matching the X11 numbering.
const (
	ButtonLeft   uint32 = 1
	ButtonMiddle uint32 = 2
	ButtonRight  uint32 = 3
)

// PointerButton is a button press or release.
type PointerButton struct {
	Button  uint32
	Pressed bool
	Serial  uint32
	Time    uint32
	// Modified is set when the configured grab modifier was held.
	Modified bool
}

// PointerAxis is a scroll event.
type PointerAxis struct {
	Horizontal float64
	Vertical   float64
	Time       uint32
}

// Key is a key press matched against a bound key sequence.
type Key struct {
	Sequence string
	Pressed  bool
	Serial   uint32
	Time     uint32
}

// OutputChanged reports an added or resized output.
type OutputChanged struct {
	Output Output
}

// OutputRemoved reports a vanished output.
type OutputRemoved struct {
	Name string
}

func (NewToplevel) isEvent()       {}
func (Commit) isEvent()            {}
func (AckConfigure) isEvent()      {}
func (ToplevelDestroyed) isEvent() {}
func (DecorationMode) isEvent()    {}
func (SizeHints) isEvent()         {}
func (TitleChanged) isEvent()      {}
func (MoveRequest) isEvent()       {}
func (ResizeRequest) isEvent()     {}
func (PointerMotion) isEvent()     {}
func (PointerButton) isEvent()     {}
func (PointerAxis) isEvent()       {}
func (Key) isEvent()               {}
func (OutputChanged) isEvent()     {}
func (OutputRemoved) isEvent()     {}
