package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ErrAnotherWM is returned by BecomeWM when the root window already has a
// substructure redirect client.
var ErrAnotherWM = errors.New("another window manager is running")

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	support *xwindow.Window
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// keybind and mousebind keep per-connection keymaps and grab tables.
	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// BecomeWM selects substructure redirection on the root window and
// advertises name through the EWMH supporting-window check.
func (c *Connection) BecomeWM(name string) error {
	mask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskPropertyChange |
		xproto.EventMaskStructureNotify)
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root,
		xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		var access xproto.AccessError
		if errors.As(err, &access) {
			return ErrAnotherWM
		}
		return fmt.Errorf("select root events: %w", err)
	}

	support, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return fmt.Errorf("generate supporting window: %w", err)
	}
	support.Create(c.Root, -1, -1, 1, 1, 0)
	c.support = support

	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, support.Id); err != nil {
		return fmt.Errorf("set supporting wm check: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, support.Id, support.Id); err != nil {
		return fmt.Errorf("set supporting wm check: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, support.Id, name); err != nil {
		return fmt.Errorf("set wm name: %w", err)
	}
	return ewmh.SupportedSet(c.XUtil, []string{
		"_NET_SUPPORTED",
		"_NET_SUPPORTING_WM_CHECK",
		"_NET_WM_NAME",
		"_NET_ACTIVE_WINDOW",
		"_NET_CLIENT_LIST",
		"_NET_CLIENT_LIST_STACKING",
		"_NET_WM_MOVERESIZE",
		"_NET_CLOSE_WINDOW",
		"_NET_FRAME_EXTENTS",
	})
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit makes a running EventLoop return.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	if c.support != nil {
		c.support.Destroy()
	}
	c.XUtil.Conn().Close()
}
