//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/tilewm/internal/decoration"
	"github.com/1broseidon/tilewm/internal/grab"
	"github.com/1broseidon/tilewm/internal/hotkeys"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// _NET_WM_MOVERESIZE directions.
const (
	moveResizeTopLeft uint32 = iota
	moveResizeTop
	moveResizeTopRight
	moveResizeRight
	moveResizeBottomRight
	moveResizeBottom
	moveResizeBottomLeft
	moveResizeLeft
	moveResizeMove
)

var moveResizeEdges = [...]grab.Edge{
	moveResizeTopLeft:     grab.EdgeTop | grab.EdgeLeft,
	moveResizeTop:         grab.EdgeTop,
	moveResizeTopRight:    grab.EdgeTop | grab.EdgeRight,
	moveResizeRight:       grab.EdgeRight,
	moveResizeBottomRight: grab.EdgeBottom | grab.EdgeRight,
	moveResizeBottom:      grab.EdgeBottom,
	moveResizeBottomLeft:  grab.EdgeBottom | grab.EdgeLeft,
	moveResizeLeft:        grab.EdgeLeft,
}

// X11Backend runs the compositor as a reparenting X11 window manager. The X
// server still delivers pointer input to clients; the backend reports what
// the compositor needs to see and frames every client with a title bar.
type X11Backend struct {
	conn    *x11.Connection
	keys    *hotkeys.Handler
	opts    Options
	log     *slog.Logger
	events  *eventQueue
	serial  atomic.Uint32
	modMask uint16

	mu          sync.Mutex
	frames      map[xproto.Window]*x11.Frame
	byFrame     map[xproto.Window]xproto.Window
	ignoreUnmap map[xproto.Window]int
	rendered    map[WindowID]RenderItem
	outputs     map[string]Output
}

var (
	_ Backend  = (*X11Backend)(nil)
	_ Liveness = (*X11Backend)(nil)
)

func newX11Backend(opts Options) (Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Modifier == "" {
		opts.Modifier = "Mod4"
	}

	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.BecomeWM("tilewm"); err != nil {
		conn.Close()
		if errors.Is(err, x11.ErrAnotherWM) {
			return nil, ErrAnotherWM
		}
		return nil, err
	}

	b := &X11Backend{
		conn:        conn,
		opts:        opts,
		log:         logger.With("component", "x11"),
		events:      newEventQueue(1024),
		frames:      make(map[xproto.Window]*x11.Frame),
		byFrame:     make(map[xproto.Window]xproto.Window),
		ignoreUnmap: make(map[xproto.Window]int),
		rendered:    make(map[WindowID]RenderItem),
		outputs:     make(map[string]Output),
	}
	b.keys = hotkeys.NewHandler(conn.XUtil, conn.Root, logger, func(seq string) {
		b.emit(Key{Sequence: seq, Pressed: true, Serial: b.nextSerial()})
	})

	if err := b.grabModifierButtons(); err != nil {
		b.log.Warn("failed to grab modifier buttons", "modifier", opts.Modifier, "error", err)
	}
	b.connectRoot()
	if err := conn.WatchScreenChanges(b.refreshOutputs); err != nil {
		b.log.Warn("output hotplug unavailable", "error", err)
	}
	if _, err := b.Outputs(); err != nil {
		b.log.Warn("failed to read outputs", "error", err)
	}
	return b, nil
}

func (b *X11Backend) Name() string     { return KindX11.String() }
func (b *X11Backend) SeatName() string { return "seat0" }
func (b *X11Backend) Events() <-chan Event {
	return b.events.events()
}

// Outputs returns the monitors with dock struts removed.
func (b *X11Backend) Outputs() ([]Output, error) {
	monitors, err := b.conn.Outputs()
	if err != nil {
		return nil, err
	}
	outputs := make([]Output, 0, len(monitors))
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range monitors {
		o := Output{Name: m.Name, Geometry: tiling.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}}
		b.outputs[o.Name] = o
		outputs = append(outputs, o)
	}
	return outputs, nil
}

func (b *X11Backend) refreshOutputs() {
	b.mu.Lock()
	prev := make(map[string]Output, len(b.outputs))
	for k, v := range b.outputs {
		prev[k] = v
	}
	b.outputs = make(map[string]Output)
	b.mu.Unlock()

	outputs, err := b.Outputs()
	if err != nil {
		b.log.Warn("failed to refresh outputs", "error", err)
		return
	}
	for _, o := range outputs {
		if old, ok := prev[o.Name]; ok && old == o {
			delete(prev, o.Name)
			continue
		}
		delete(prev, o.Name)
		b.log.Info("output changed", "output", o.Name, "geometry", o.Geometry)
		b.emit(OutputChanged{Output: o})
	}
	for name := range prev {
		b.log.Info("output removed", "output", name)
		b.emit(OutputRemoved{Name: name})
	}
}

// Configure resizes the client to the proposed content size. X clients have
// no configure handshake, so the ack and the commit follow immediately.
func (b *X11Backend) Configure(id WindowID, c Configure) (uint32, error) {
	b.mu.Lock()
	f, ok := b.frames[xproto.Window(id)]
	b.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("window %d: %w", id, ErrUnknownWindow)
	}

	size := c.Size
	if size.Width <= 0 || size.Height <= 0 {
		geom, err := xwindow.New(b.conn.XUtil, f.Client).Geometry()
		if err != nil {
			return 0, fmt.Errorf("window %d geometry: %w", id, err)
		}
		size = tiling.Size{Width: geom.Width(), Height: geom.Height()}
	}
	f.Resize(size.Width, size.Height, c.HeaderHeight)
	if err := b.conn.SetFrameExtents(f.Client, c.HeaderHeight); err != nil {
		b.log.Debug("failed to set frame extents", "window", id, "error", err)
	}

	serial := b.nextSerial()
	b.emit(AckConfigure{ID: id, Serial: serial})
	b.emit(Commit{ID: id, Size: size})
	return serial, nil
}

// Close asks the client to close.
func (b *X11Backend) Close(id WindowID) error {
	return b.conn.CloseWindow(xproto.Window(id))
}

func (b *X11Backend) SetKeyboardFocus(id WindowID) error {
	return b.conn.FocusWindow(xproto.Window(id))
}

// SetPointerGrab grabs the pointer on the root window so a move or resize
// keeps receiving motion wherever the pointer goes.
func (b *X11Backend) SetPointerGrab(active bool) error {
	conn := b.conn.XUtil.Conn()
	if !active {
		return xproto.UngrabPointerChecked(conn, xproto.TimeCurrentTime).Check()
	}
	reply, err := xproto.GrabPointer(conn, false, b.conn.Root,
		xproto.EventMaskPointerMotion|xproto.EventMaskButtonRelease,
		xproto.GrabModeAsync, xproto.GrabModeAsync,
		xproto.WindowNone, xproto.CursorNone, xproto.TimeCurrentTime).Reply()
	if err != nil {
		return err
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("pointer grab refused (status %d)", reply.Status)
	}
	return nil
}

func (b *X11Backend) BindKeys(sequences []string) error {
	return b.keys.Bind(sequences)
}

// Render places, stacks and paints every frame, and hides frames that are
// not part of the scene.
func (b *X11Backend) Render(frame Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[WindowID]bool, len(frame.Items))
	stacking := make([]xproto.Window, 0, len(frame.Items))
	var below xproto.Window
	for _, it := range frame.Items {
		f, ok := b.frames[xproto.Window(it.ID)]
		if !ok {
			continue
		}
		seen[it.ID] = true
		prev, had := b.rendered[it.ID]
		if !had || prev.Location != it.Location || prev.Size != it.Size || prev.HeaderHeight != it.HeaderHeight {
			f.Place(it.Location.X, it.Location.Y, it.Size.Width, it.Size.Height, it.HeaderHeight)
		}
		f.StackAbove(below)
		below = f.ID()
		f.Show()
		b.paint(f, it)
		b.rendered[it.ID] = it
		stacking = append(stacking, f.Client)
	}
	for client, f := range b.frames {
		if !seen[WindowID(client)] {
			f.Hide()
			delete(b.rendered, WindowID(client))
		}
	}
	return b.conn.PublishClients(stacking)
}

func (b *X11Backend) paint(f *x11.Frame, it RenderItem) {
	if it.HeaderHeight <= 0 {
		return
	}
	header := decoration.Header{Height: it.HeaderHeight, ButtonWidth: b.opts.Header.ButtonWidth}
	if header.ButtonWidth <= 0 {
		header.ButtonWidth = decoration.DefaultButtonWidth
	}
	parts := header.Segments(it.Size.Width)
	segments := make([]x11.Segment, 0, len(parts))
	for _, p := range parts {
		segments = append(segments, x11.Segment{
			X:     p.X,
			Width: p.Width,
			Pixel: b.opts.Palette.Fill(p.Button, it.Hover, it.Activated),
		})
	}
	f.Paint(it.HeaderHeight, segments)
}

// Alive reports whether the client window still exists.
func (b *X11Backend) Alive(id WindowID) bool {
	return b.conn.Alive(xproto.Window(id))
}

// Run adopts already mapped clients and pumps X events until ctx is done.
func (b *X11Backend) Run(ctx context.Context) error {
	b.adoptExisting()

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			b.conn.Quit()
		case <-stopped:
		}
	}()
	b.conn.EventLoop()
	close(stopped)

	if ctx.Err() != nil {
		return nil
	}
	return errors.New("x11 event loop stopped")
}

// Shutdown releases every client back to the root window and disconnects.
func (b *X11Backend) Shutdown() {
	b.mu.Lock()
	frames := b.frames
	b.frames = make(map[xproto.Window]*x11.Frame)
	b.byFrame = make(map[xproto.Window]xproto.Window)
	b.mu.Unlock()

	for _, f := range frames {
		f.Release(b.conn.Alive(f.Client))
	}
	b.events.close()
	b.conn.Close()
}

func (b *X11Backend) nextSerial() uint32 {
	return b.serial.Add(1)
}

// emit queues ev in order without blocking the X event goroutine or the
// compositor.
func (b *X11Backend) emit(ev Event) {
	b.events.push(ev)
}

func (b *X11Backend) connectRoot() {
	xu := b.conn.XUtil
	root := b.conn.Root

	xevent.MapRequestFun(func(xu *xgbutil.XUtil, ev xevent.MapRequestEvent) {
		b.manage(ev.Window, false)
	}).Connect(xu, root)

	xevent.ConfigureRequestFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
		b.configureRequest(ev)
	}).Connect(xu, root)

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		b.clientMessage(ev)
	}).Connect(xu, root)

	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		b.emitMotion(ev.RootX, ev.RootY, ev.Time)
	}).Connect(xu, root)

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		b.emitMotion(ev.RootX, ev.RootY, ev.Time)
		b.emit(PointerButton{
			Button:   uint32(ev.Detail),
			Pressed:  true,
			Serial:   b.nextSerial(),
			Time:     uint32(ev.Time),
			Modified: b.modMask != 0 && ev.State&b.modMask == b.modMask,
		})
	}).Connect(xu, root)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		b.emitRelease(ev.Detail, ev.RootX, ev.RootY, ev.Time)
	}).Connect(xu, root)
}

// grabModifierButtons grabs modifier+left and modifier+right on the root
// window so those clicks reach the compositor instead of the client.
func (b *X11Backend) grabModifierButtons() error {
	xu := b.conn.XUtil
	mask := uint16(xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease | xproto.EventMaskPointerMotion)
	for _, button := range []uint32{ButtonLeft, ButtonRight} {
		mods, btn, err := mousebind.ParseString(xu, fmt.Sprintf("%s-%d", b.opts.Modifier, button))
		if err != nil {
			return err
		}
		b.modMask = mods
		for _, ignore := range xevent.IgnoreMods {
			err := xproto.GrabButtonChecked(xu.Conn(), false, b.conn.Root, mask,
				xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
				byte(btn), mods|ignore).Check()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *X11Backend) emitMotion(x, y int16, t xproto.Timestamp) {
	b.emit(PointerMotion{Location: tiling.PointF{X: float64(x), Y: float64(y)}, Time: uint32(t)})
}

func (b *X11Backend) emitRelease(button xproto.Button, x, y int16, t xproto.Timestamp) {
	b.emitMotion(x, y, t)
	b.emit(PointerButton{Button: uint32(button), Serial: b.nextSerial(), Time: uint32(t)})
}

func (b *X11Backend) adoptExisting() {
	tree, err := xproto.QueryTree(b.conn.XUtil.Conn(), b.conn.Root).Reply()
	if err != nil {
		b.log.Warn("failed to query existing windows", "error", err)
		return
	}
	for _, child := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(b.conn.XUtil.Conn(), child).Reply()
		if err != nil || attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		b.manage(child, true)
	}
}

// manage frames a client and announces it.
func (b *X11Backend) manage(client xproto.Window, mapped bool) {
	b.mu.Lock()
	_, known := b.frames[client]
	_, isFrame := b.byFrame[client]
	b.mu.Unlock()
	if known || isFrame {
		return
	}
	xu := b.conn.XUtil
	if !b.conn.IsNormalWindow(client) {
		xproto.MapWindow(xu.Conn(), client)
		return
	}

	if mapped {
		b.mu.Lock()
		b.ignoreUnmap[client]++
		b.mu.Unlock()
	}
	f, err := b.conn.NewFrame(client, 0)
	if err != nil {
		b.log.Warn("failed to frame window", "window", client, "error", err)
		xproto.MapWindow(xu.Conn(), client)
		return
	}
	b.mu.Lock()
	b.frames[client] = f
	b.byFrame[f.ID()] = client
	b.mu.Unlock()

	if err := icccm.WmStateSet(xu, client, &icccm.WmState{State: icccm.StateNormal}); err != nil {
		b.log.Debug("failed to set WM_STATE", "window", client, "error", err)
	}
	for _, button := range []xproto.Button{1, 2, 3} {
		if err := mousebind.GrabChecked(xu, client, 0, button, true); err != nil {
			b.log.Debug("failed to grab click", "window", client, "button", button, "error", err)
		}
	}
	b.connectClient(client)
	b.connectFrame(f)

	geom, err := xwindow.New(xu, client).Geometry()
	if err != nil {
		b.log.Warn("failed to read geometry", "window", client, "error", err)
		return
	}
	hints := b.conn.NormalHints(client)
	if p, err := xproto.QueryPointer(xu.Conn(), b.conn.Root).Reply(); err == nil {
		b.emitMotion(p.RootX, p.RootY, xproto.TimeCurrentTime)
	}
	b.log.Debug("managing window", "window", client, "frame", f.ID())
	b.emit(NewToplevel{
		ID:        WindowID(client),
		Title:     b.conn.WindowTitle(client),
		Size:      tiling.Size{Width: geom.Width(), Height: geom.Height()},
		MinSize:   tiling.Size{Width: hints.MinWidth, Height: hints.MinHeight},
		MaxSize:   tiling.Size{Width: hints.MaxWidth, Height: hints.MaxHeight},
		Decorated: true,
	})
}

func (b *X11Backend) unmanage(client xproto.Window, alive bool) {
	b.mu.Lock()
	f, ok := b.frames[client]
	if ok {
		delete(b.frames, client)
		delete(b.byFrame, f.ID())
		delete(b.ignoreUnmap, client)
		delete(b.rendered, WindowID(client))
	}
	b.mu.Unlock()
	if !ok {
		return
	}

	xu := b.conn.XUtil
	xevent.Detach(xu, client)
	xevent.Detach(xu, f.ID())
	mousebind.Detach(xu, client)
	if alive {
		if err := icccm.WmStateSet(xu, client, &icccm.WmState{State: icccm.StateWithdrawn}); err != nil {
			b.log.Debug("failed to set WM_STATE", "window", client, "error", err)
		}
	}
	f.Release(alive)
	b.log.Debug("released window", "window", client)
	b.emit(ToplevelDestroyed{ID: WindowID(client)})
}

func (b *X11Backend) connectClient(client xproto.Window) {
	xu := b.conn.XUtil

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		// The click is replayed to the client, which keeps the implicit grab,
		// so the release is reported right away.
		b.emitMotion(ev.RootX, ev.RootY, ev.Time)
		b.emit(PointerButton{Button: uint32(ev.Detail), Pressed: true, Serial: b.nextSerial(), Time: uint32(ev.Time)})
		b.emit(PointerButton{Button: uint32(ev.Detail), Serial: b.nextSerial(), Time: uint32(ev.Time)})
		xproto.AllowEvents(xu.Conn(), xproto.AllowReplayPointer, ev.Time)
	}).Connect(xu, client)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		b.unmanage(ev.Window, false)
	}).Connect(xu, client)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		if ev.Window != client {
			return
		}
		b.mu.Lock()
		if b.ignoreUnmap[client] > 0 {
			b.ignoreUnmap[client]--
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()
		b.unmanage(client, true)
	}).Connect(xu, client)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		switch name {
		case "WM_NAME", "_NET_WM_NAME":
			b.emit(TitleChanged{ID: WindowID(client), Title: b.conn.WindowTitle(client)})
		case "WM_NORMAL_HINTS":
			h := b.conn.NormalHints(client)
			b.emit(SizeHints{
				ID:      WindowID(client),
				MinSize: tiling.Size{Width: h.MinWidth, Height: h.MinHeight},
				MaxSize: tiling.Size{Width: h.MaxWidth, Height: h.MaxHeight},
			})
		}
	}).Connect(xu, client)
}

func (b *X11Backend) connectFrame(f *x11.Frame) {
	xu := b.conn.XUtil
	id := f.ID()

	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		b.emitMotion(ev.RootX, ev.RootY, ev.Time)
	}).Connect(xu, id)

	xevent.LeaveNotifyFun(func(xu *xgbutil.XUtil, ev xevent.LeaveNotifyEvent) {
		b.emitMotion(ev.RootX, ev.RootY, ev.Time)
	}).Connect(xu, id)

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		b.emitMotion(ev.RootX, ev.RootY, ev.Time)
		b.emit(PointerButton{
			Button:   uint32(ev.Detail),
			Pressed:  true,
			Serial:   b.nextSerial(),
			Time:     uint32(ev.Time),
			Modified: b.modMask != 0 && ev.State&b.modMask == b.modMask,
		})
	}).Connect(xu, id)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		b.emitRelease(ev.Detail, ev.RootX, ev.RootY, ev.Time)
	}).Connect(xu, id)

	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count != 0 {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if it, ok := b.rendered[WindowID(f.Client)]; ok {
			b.paint(f, it)
		}
	}).Connect(xu, id)

	xevent.ConfigureRequestFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
		b.configureRequest(ev)
	}).Connect(xu, id)
}

// configureRequest lets unmanaged windows configure themselves. Managed
// clients are told their current geometry instead.
func (b *X11Backend) configureRequest(ev xevent.ConfigureRequestEvent) {
	b.mu.Lock()
	f, managed := b.frames[ev.Window]
	it, rendered := b.rendered[WindowID(ev.Window)]
	b.mu.Unlock()

	if !managed {
		xwindow.New(b.conn.XUtil, ev.Window).Configure(int(ev.ValueMask),
			int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height), ev.Sibling, ev.StackMode)
		return
	}
	if rendered {
		f.Place(it.Location.X, it.Location.Y, it.Size.Width, it.Size.Height, it.HeaderHeight)
	}
}

// clientMessage handles EWMH requests sent to the root window.
func (b *X11Backend) clientMessage(ev xevent.ClientMessageEvent) {
	name, err := xprop.AtomName(b.conn.XUtil, ev.Type)
	if err != nil {
		return
	}
	data := ev.Data.Data32
	switch name {
	case "_NET_CLOSE_WINDOW":
		if err := b.conn.CloseWindow(ev.Window); err != nil {
			b.log.Debug("close request failed", "window", ev.Window, "error", err)
		}
	case "_NET_WM_MOVERESIZE":
		if len(data) < 4 {
			return
		}
		b.moveResize(ev.Window, data[2], data[3])
	}
}

// moveResize turns a client-initiated move or resize into a fresh press the
// compositor can validate, followed by the request carrying its serial.
func (b *X11Backend) moveResize(client xproto.Window, direction, button uint32) {
	b.mu.Lock()
	_, managed := b.frames[client]
	b.mu.Unlock()
	if !managed || direction > moveResizeMove {
		return
	}
	if button == 0 {
		button = ButtonLeft
	}

	p, err := xproto.QueryPointer(b.conn.XUtil.Conn(), b.conn.Root).Reply()
	if err != nil {
		return
	}
	// The button must still be down, otherwise the grab would never see a release.
	if button > 5 || p.Mask&(uint16(xproto.ButtonMask1)<<(button-1)) == 0 {
		return
	}

	serial := b.nextSerial()
	b.emitMotion(p.RootX, p.RootY, xproto.TimeCurrentTime)
	b.emit(PointerButton{Button: button, Pressed: true, Serial: serial})
	if direction == moveResizeMove {
		b.emit(MoveRequest{ID: WindowID(client), Serial: serial})
		return
	}
	b.emit(ResizeRequest{ID: WindowID(client), Serial: serial, Edges: uint8(moveResizeEdges[direction])})
}
