// Package window holds the per-window record table and the tiling state machine.
package window

import (
	"github.com/1broseidon/tilewm/internal/decoration"
	"github.com/1broseidon/tilewm/internal/grab"
	"github.com/1broseidon/tilewm/internal/tiling"
)

// ID identifies a toplevel for its whole lifetime.
type ID uint32

// Configure is the client-visible state the compositor proposes.
type Configure struct {
	Size      tiling.Size
	Activated bool
	Resizing  bool
	// Header is the title bar height drawn above the content.
	Header int
}

// Window is the compositor's record for one client toplevel.
type Window struct {
	ID    ID
	Title string

	// Size is the content size the client last committed.
	Size    tiling.Size
	MinSize tiling.Size
	MaxSize tiling.Size

	State TilingState
	Fixed bool

	// Decorated windows carry a Header-high title bar above their content.
	Decorated bool
	Header    int

	// Initialized is set once the first commit after the initial configure lands.
	Initialized          bool
	InitialConfigureSent bool

	// Layout bookkeeping, written by the layout and reclamation engines,
	// output rescale and grabs only.
	ElementSize tiling.Size
	OutputRect  tiling.Rect
	OriginPos   tiling.Point

	// PendingReclaimSize overrides the cell size while a configure carrying
	// a new cell is in flight.
	PendingReclaimSize *tiling.Size

	ZOrder  uint64
	TileSeq uint64 // bumped each time the window enters the layout
	Hover   decoration.Hover
	Resize  grab.ResizeState

	// Pending is what the next configure will carry.
	Pending Configure

	sent        Configure
	sentAny     bool
	lastSerial  uint32
	ackedSerial uint32
}

// WindowSize is the decoration-inclusive size of the committed content.
func (w *Window) WindowSize() tiling.Size {
	return tiling.CellSize(w.Size, w.Header)
}

// ReclaimSize is the size neighbour searches use for this window's cell.
func (w *Window) ReclaimSize() tiling.Size {
	if w.PendingReclaimSize != nil {
		return *w.PendingReclaimSize
	}
	return w.WindowSize()
}

// Cell returns the decoration-inclusive rectangle the window occupies when tiled.
func (w *Window) Cell() tiling.Rect {
	return tiling.RectFrom(w.OriginPos, w.ReclaimSize())
}

// AssignCell records a layout decision: the cell, the output it was computed
// against and the content size the client should adopt.
func (w *Window) AssignCell(cell, output tiling.Rect) {
	content := tiling.ContentSize(cell.Size(), w.Header)
	size := cell.Size()
	w.OriginPos = cell.Origin()
	w.OutputRect = output
	w.ElementSize = content
	w.PendingReclaimSize = &size
	w.Pending.Size = content
}

// SetDecorated switches the server-side title bar on or off.
func (w *Window) SetDecorated(on bool, header int) {
	w.Decorated = on
	if on {
		w.Header = header
	} else {
		w.Header = 0
		w.Hover = decoration.Hover{}
	}
	w.Pending.Header = w.Header
}

// NeedsConfigure reports whether Pending differs from the last configure sent.
func (w *Window) NeedsConfigure() bool {
	return !w.sentAny || w.Pending != w.sent
}

// MarkSent records that Pending went out under serial.
func (w *Window) MarkSent(serial uint32) {
	w.sent = w.Pending
	w.sentAny = true
	w.InitialConfigureSent = true
	if serial > w.lastSerial {
		w.lastSerial = serial
	}
}

// Ack records a client acknowledgement.
func (w *Window) Ack(serial uint32) {
	if serial > w.ackedSerial {
		w.ackedSerial = serial
	}
}

// Configured reports whether the client acknowledged any configure.
func (w *Window) Configured() bool {
	return w.ackedSerial != 0
}

// Settled reports whether the latest configure was acknowledged.
func (w *Window) Settled() bool {
	return w.ackedSerial >= w.lastSerial
}

// LastSent returns the configure most recently sent.
func (w *Window) LastSent() Configure {
	return w.sent
}
