package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Segment is one horizontal run of the title bar filled with a single pixel.
type Segment struct {
	X, Width int
	Pixel    uint32
}

// Frame is the reparenting window that holds a client and its title bar.
type Frame struct {
	conn   *Connection
	win    *xwindow.Window
	Client xproto.Window
	gc     xproto.Gcontext

	mapped bool
}

const frameEvents = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskExposure

// NewFrame creates an unmapped frame around client at the client's current
// position and reparents the client into it below a header of the given height.
func (c *Connection) NewFrame(client xproto.Window, header int) (*Frame, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(client)).Reply()
	if err != nil {
		return nil, fmt.Errorf("client geometry: %w", err)
	}

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("generate frame: %w", err)
	}
	err = win.CreateChecked(c.Root, int(geom.X), int(geom.Y),
		max(int(geom.Width), 1), max(int(geom.Height)+header, 1),
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		c.XUtil.Screen().BlackPixel, 1, uint32(frameEvents))
	if err != nil {
		return nil, fmt.Errorf("create frame: %w", err)
	}

	gc, err := xproto.NewGcontextId(c.XUtil.Conn())
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("allocate gc: %w", err)
	}
	xproto.CreateGC(c.XUtil.Conn(), gc, xproto.Drawable(win.Id), 0, nil)

	conn := c.XUtil.Conn()
	xproto.ChangeSaveSet(conn, xproto.SetModeInsert, client)
	xproto.ChangeWindowAttributes(conn, client, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify})
	xproto.ReparentWindow(conn, client, win.Id, 0, int16(header))
	xproto.MapWindow(conn, client)

	return &Frame{conn: c, win: win, Client: client, gc: gc}, nil
}

// ID is the frame window.
func (f *Frame) ID() xproto.Window { return f.win.Id }

// Resize sizes the client to content and the frame around it.
func (f *Frame) Resize(width, height, header int) {
	width, height = max(width, 1), max(height, 1)
	xproto.ConfigureWindow(f.conn.XUtil.Conn(), f.Client,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{0, uint32(header), uint32(width), uint32(height)})
	f.win.Resize(width, height+header)
}

// Place positions the frame and tells the client where its content ended
// up with a synthetic ConfigureNotify.
func (f *Frame) Place(x, y, width, height, header int) {
	width, height = max(width, 1), max(height, 1)
	f.win.MoveResize(x, y, width, height+header)

	ev := xproto.ConfigureNotifyEvent{
		Event:  f.Client,
		Window: f.Client,
		X:      int16(x),
		Y:      int16(y + header),
		Width:  uint16(width),
		Height: uint16(height),
	}
	xproto.SendEvent(f.conn.XUtil.Conn(), false, f.Client,
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

// StackAbove restacks the frame directly above sibling, or at the bottom
// when sibling is zero.
func (f *Frame) StackAbove(sibling xproto.Window) {
	if sibling == 0 {
		xproto.ConfigureWindow(f.conn.XUtil.Conn(), f.win.Id,
			xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow})
		return
	}
	xproto.ConfigureWindow(f.conn.XUtil.Conn(), f.win.Id,
		xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
		[]uint32{uint32(sibling), xproto.StackModeAbove})
}

// Show maps the frame if it is not mapped yet.
func (f *Frame) Show() {
	if !f.mapped {
		f.win.Map()
		f.mapped = true
	}
}

// Hide unmaps the frame. The client stays mapped inside it.
func (f *Frame) Hide() {
	if f.mapped {
		f.win.Unmap()
		f.mapped = false
	}
}

// Paint fills the title bar segments.
func (f *Frame) Paint(header int, segments []Segment) {
	if header <= 0 {
		return
	}
	conn := f.conn.XUtil.Conn()
	for _, s := range segments {
		if s.Width <= 0 {
			continue
		}
		xproto.ChangeGC(conn, f.gc, xproto.GcForeground, []uint32{s.Pixel})
		xproto.PolyFillRectangle(conn, xproto.Drawable(f.win.Id), f.gc, []xproto.Rectangle{{
			X:      int16(s.X),
			Y:      0,
			Width:  uint16(s.Width),
			Height: uint16(header),
		}})
	}
}

// Release hands the client back to the root window at the frame's position
// and destroys the frame. When the client is already gone only the frame
// is destroyed.
func (f *Frame) Release(clientAlive bool) {
	conn := f.conn.XUtil.Conn()
	if clientAlive {
		if geom, err := f.win.Geometry(); err == nil {
			xproto.ReparentWindow(conn, f.Client, f.conn.Root, int16(geom.X()), int16(geom.Y()))
		}
		xproto.ChangeSaveSet(conn, xproto.SetModeDelete, f.Client)
	}
	xproto.FreeGC(conn, f.gc)
	f.win.Destroy()
}
