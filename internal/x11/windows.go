package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Hints are the size constraints a client advertises in WM_NORMAL_HINTS.
// Zero fields mean no constraint.
type Hints struct {
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	return ""
}

// NormalHints reads the client's min and max size.
func (c *Connection) NormalHints(windowID xproto.Window) Hints {
	nh, err := icccm.WmNormalHintsGet(c.XUtil, windowID)
	if err != nil {
		return Hints{}
	}
	var h Hints
	if nh.Flags&icccm.SizeHintPMinSize != 0 {
		h.MinWidth, h.MinHeight = int(nh.MinWidth), int(nh.MinHeight)
	}
	if nh.Flags&icccm.SizeHintPMaxSize != 0 {
		h.MaxWidth, h.MaxHeight = int(nh.MaxWidth), int(nh.MaxHeight)
	}
	return h
}

// SupportsProtocol reports whether the client lists name in WM_PROTOCOLS.
func (c *Connection) SupportsProtocol(windowID xproto.Window, name string) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == name {
			return true
		}
	}
	return false
}

// CloseWindow asks the client to close via WM_DELETE_WINDOW, or kills its
// connection when it does not take part in that protocol.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	if !c.SupportsProtocol(windowID, "WM_DELETE_WINDOW") {
		return xproto.KillClientChecked(c.XUtil.Conn(), uint32(windowID)).Check()
	}

	deleteReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_DELETE_WINDOW")), "WM_DELETE_WINDOW").Reply()
	if err != nil {
		return err
	}
	protocolsReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_PROTOCOLS")), "WM_PROTOCOLS").Reply()
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteReply.Atom), 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// Alive reports whether the window still exists on the server.
func (c *Connection) Alive(windowID xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// FocusWindow gives the window keyboard focus and publishes it as the
// active window. A zero window returns focus to the root.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	target := windowID
	if target == 0 {
		target = xproto.Window(xproto.InputFocusPointerRoot)
	}
	err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		target, xproto.TimeCurrentTime).Check()
	if err != nil {
		return err
	}
	return ewmh.ActiveWindowSet(c.XUtil, windowID)
}

// PublishClients updates _NET_CLIENT_LIST and _NET_CLIENT_LIST_STACKING.
// stacking is ordered bottom to top.
func (c *Connection) PublishClients(stacking []xproto.Window) error {
	if err := ewmh.ClientListStackingSet(c.XUtil, stacking); err != nil {
		return err
	}
	return ewmh.ClientListSet(c.XUtil, stacking)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err == nil && attrs.OverrideRedirect {
		return false
	}

	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	// Check for normal window type
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// SetFrameExtents publishes the title bar height as _NET_FRAME_EXTENTS.
func (c *Connection) SetFrameExtents(windowID xproto.Window, top int) error {
	return ewmh.FrameExtentsSet(c.XUtil, windowID, &ewmh.FrameExtents{Top: top})
}
