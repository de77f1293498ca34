package compositor

import (
	"testing"

	"github.com/1broseidon/tilewm/internal/grab"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

func motion(s *State, x, y float64) {
	s.HandleEvent(platform.PointerMotion{Location: tiling.PointF{X: x, Y: y}})
}

func press(s *State, button, serial uint32, modified bool) {
	s.HandleEvent(platform.PointerButton{Button: button, Pressed: true, Serial: serial, Modified: modified})
}

func release(s *State, button, serial uint32) {
	s.HandleEvent(platform.PointerButton{Button: button, Serial: serial})
}

// floatingWindow opens a single window and untiles it, leaving it centered at
// full output size.
func floatingWindow(t *testing.T, s *State, hb *platform.Headless, tl platform.NewToplevel) *window.Window {
	t.Helper()
	w := open(t, s, hb, tl)
	if !s.RequestStateChange(w.ID) {
		t.Fatalf("toggle refused")
	}
	settle(t, s, hb)
	if w.State != window.Untiled {
		t.Fatalf("expected untiled, got %s", w.State)
	}
	return w
}

func fixedToplevel(id uint32) platform.NewToplevel {
	tl := toplevel(id)
	tl.Size = tiling.Size{Width: 300, Height: 200}
	tl.MinSize = tl.Size
	tl.MaxSize = tl.Size
	return tl
}

func TestInput_ModifierMoveFollowsPointer(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, fixedToplevel(2))

	motion(s, 900, 500)
	press(s, platform.ButtonLeft, 10, true)
	if !s.Grabbing() || !hb.PointerGrab {
		t.Fatalf("modifier press should start a move grab")
	}
	if s.Focus() != 2 {
		t.Fatalf("press should focus the window, focus=%d", s.Focus())
	}

	motion(s, 950.6, 520.4)
	if loc, _ := s.Space().ElementLocation(2); loc != (tiling.Point{X: 861, Y: 460}) {
		t.Fatalf("unexpected location %+v", loc)
	}

	release(s, platform.ButtonLeft, 11)
	if s.Grabbing() || hb.PointerGrab {
		t.Fatalf("release should end the grab")
	}
	motion(s, 10, 10)
	if loc, _ := s.Space().ElementLocation(2); loc != (tiling.Point{X: 861, Y: 460}) {
		t.Fatalf("window moved after release: %+v", loc)
	}
}

func TestInput_StaleMoveRequestIgnored(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, fixedToplevel(2))

	// No button held.
	s.HandleEvent(platform.MoveRequest{ID: 2, Serial: 1})
	if s.Grabbing() {
		t.Fatalf("move without a held button must be ignored")
	}

	motion(s, 900, 500)
	press(s, platform.ButtonLeft, 10, false)
	s.HandleEvent(platform.MoveRequest{ID: 2, Serial: 9})
	if s.Grabbing() {
		t.Fatalf("move with a stale serial must be ignored")
	}
	s.HandleEvent(platform.MoveRequest{ID: 1, Serial: 10})
	if s.Grabbing() {
		t.Fatalf("move for a window without pointer focus must be ignored")
	}
	s.HandleEvent(platform.MoveRequest{ID: 2, Serial: 10})
	if !s.Grabbing() {
		t.Fatalf("valid move request should start a grab")
	}
}

func TestInput_TiledWindowCannotMove(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))

	motion(s, 100, 100)
	press(s, platform.ButtonLeft, 5, true)
	if s.Grabbing() {
		t.Fatalf("tiled windows must not be moved")
	}
	s.HandleEvent(platform.MoveRequest{ID: 1, Serial: 5})
	if s.Grabbing() {
		t.Fatalf("tiled windows must not be moved by request either")
	}
}

func TestInput_BottomResize(t *testing.T) {
	s, hb := newTestState(t, false)
	w := floatingWindow(t, s, hb, toplevel(1))

	motion(s, 500, 1050)
	press(s, platform.ButtonRight, 7, true)
	if !s.Grabbing() || w.Resize.Edges != grab.EdgeBottom {
		t.Fatalf("expected bottom resize, got edges %s", w.Resize.Edges)
	}

	motion(s, 500, 950)
	c, _ := hb.LastConfigure(1)
	if c.Configure.Size != (tiling.Size{Width: 1920, Height: 980}) || !c.Configure.Resizing {
		t.Fatalf("unexpected resize configure %+v", c.Configure)
	}

	release(s, platform.ButtonRight, 8)
	if w.Resize.Phase != grab.WaitingForLastCommit {
		t.Fatalf("expected trailing commit phase, got %s", w.Resize.Phase)
	}
	if c, _ := hb.LastConfigure(1); c.Configure.Resizing {
		t.Fatalf("release should clear the resizing flag")
	}
	ack(t, s, hb, 1)
	if w.Resize.Phase != grab.Idle {
		t.Fatalf("final commit should finish the resize, got %s", w.Resize.Phase)
	}
	if loc, _ := s.Space().ElementLocation(1); loc != (tiling.Point{}) {
		t.Fatalf("bottom resize must not move the window: %+v", loc)
	}
}

func TestInput_LeftResizeKeepsRightEdge(t *testing.T) {
	s, hb := newTestState(t, false)
	w := floatingWindow(t, s, hb, toplevel(1))

	motion(s, 5, 500)
	press(s, platform.ButtonRight, 7, true)
	if w.Resize.Edges != grab.EdgeLeft {
		t.Fatalf("expected left edge, got %s", w.Resize.Edges)
	}
	motion(s, 105, 530)
	release(s, platform.ButtonRight, 8)
	ack(t, s, hb, 1)

	if w.Size != (tiling.Size{Width: 1820, Height: 1080}) {
		t.Fatalf("unexpected size %s", w.Size)
	}
	if loc, _ := s.Space().ElementLocation(1); loc != (tiling.Point{X: 100}) {
		t.Fatalf("left resize should keep the right edge, location %+v", loc)
	}
}

func TestInput_ResizeOutsideBandsDoesNothing(t *testing.T) {
	s, hb := newTestState(t, false)
	floatingWindow(t, s, hb, toplevel(1))

	motion(s, 900, 500)
	press(s, platform.ButtonRight, 3, true)
	if s.Grabbing() {
		t.Fatalf("resize in the middle of a window should not start")
	}
	release(s, platform.ButtonRight, 4)

	// A client request naming an edge does not override the pointer band.
	press(s, platform.ButtonLeft, 5, false)
	s.HandleEvent(platform.ResizeRequest{ID: 1, Serial: 5, Edges: uint8(grab.EdgeRight)})
	if s.Grabbing() {
		t.Fatalf("requested edge started a resize with the pointer in no band")
	}
	release(s, platform.ButtonLeft, 6)

	motion(s, 1915, 500)
	press(s, platform.ButtonLeft, 7, false)
	s.HandleEvent(platform.ResizeRequest{ID: 1, Serial: 7, Edges: uint8(grab.EdgeBottom)})
	if !s.Grabbing() {
		t.Fatalf("resize request inside the right band should start")
	}
	if w, _ := s.Windows().Get(1); w.Resize.Edges != grab.EdgeRight {
		t.Fatalf("edges should follow the pointer band, got %s", w.Resize.Edges)
	}
}

func TestInput_DecorationButtons(t *testing.T) {
	s, hb := newTestState(t, true)
	tl := toplevel(1)
	tl.Decorated = true
	w := open(t, s, hb, tl)

	motion(s, 1910, 10)
	if !w.Hover.Close {
		t.Fatalf("hover over close not tracked: %+v", w.Hover)
	}

	press(s, platform.ButtonLeft, 1, false)
	release(s, platform.ButtonLeft, 2)
	if len(hb.Closed) != 1 || hb.Closed[0] != 1 {
		t.Fatalf("close button should close the window, got %v", hb.Closed)
	}

	motion(s, 10, 10)
	press(s, platform.ButtonLeft, 3, false)
	release(s, platform.ButtonLeft, 4)
	if w.State != window.Tiled {
		t.Fatalf("toggle must be deferred, state already %s", w.State)
	}
	s.Flush()
	if w.State != window.TiledPendingUntile {
		t.Fatalf("toggle should run at flush, got %s", w.State)
	}
}

func TestInput_DecorationDragMovesFloatingWindow(t *testing.T) {
	s, hb := newTestState(t, true)
	tl := toplevel(1)
	tl.Decorated = true
	floatingWindow(t, s, hb, tl)

	motion(s, 500, 10)
	press(s, platform.ButtonLeft, 20, false)
	if s.Grabbing() {
		t.Fatalf("drag must be deferred")
	}
	s.Flush()
	if !s.Grabbing() {
		t.Fatalf("drag in the title bar should start a move")
	}
	motion(s, 520, 40)
	if loc, _ := s.Space().ElementLocation(1); loc != (tiling.Point{X: 20, Y: 30}) {
		t.Fatalf("unexpected location %+v", loc)
	}
}

func TestInput_ContentCoordinatesSkipHeader(t *testing.T) {
	s, hb := newTestState(t, true)
	tl := toplevel(1)
	tl.Decorated = true
	open(t, s, hb, tl)

	motion(s, 500, 125)
	if len(hb.Forwarded) == 0 {
		t.Fatalf("content motion not forwarded")
	}
	got := hb.Forwarded[len(hb.Forwarded)-1]
	if got.ID != 1 || got.Local != (tiling.PointF{X: 500, Y: 100}) {
		t.Fatalf("unexpected forwarded motion %+v", got)
	}

	n := len(hb.Forwarded)
	motion(s, 500, 10)
	if len(hb.Forwarded) != n {
		t.Fatalf("title bar motion must not reach the client")
	}
}

func TestInput_ClickOnNothingClearsFocus(t *testing.T) {
	s, hb := newTestState(t, false)
	w := open(t, s, hb, toplevel(1))

	motion(s, 100, 100)
	press(s, platform.ButtonLeft, 1, false)
	release(s, platform.ButtonLeft, 2)
	if s.Focus() != 1 || !w.Pending.Activated {
		t.Fatalf("click should focus and activate")
	}

	motion(s, 3000, 3000)
	press(s, platform.ButtonLeft, 3, false)
	if s.Focus() != 0 || hb.Focus != 0 {
		t.Fatalf("click on nothing should clear focus")
	}
	if w.Pending.Activated {
		t.Fatalf("window should be deactivated")
	}
	if c, _ := hb.LastConfigure(1); c.Configure.Activated {
		t.Fatalf("deactivation not sent")
	}
}

func TestInput_FocusingTiledKeepsFloatingOnTop(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, fixedToplevel(2))

	motion(s, 100, 100)
	press(s, platform.ButtonLeft, 1, false)
	stack := s.Space().Stacking()
	if stack[len(stack)-1] != 2 {
		t.Fatalf("floating window should stay on top, got %v", stack)
	}
}

func TestInput_DestroyDuringGrabEndsIt(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, fixedToplevel(2))

	motion(s, 900, 500)
	press(s, platform.ButtonLeft, 10, true)
	s.HandleEvent(platform.ToplevelDestroyed{ID: 2})
	if s.Grabbing() || hb.PointerGrab {
		t.Fatalf("destroy should end the grab")
	}
	motion(s, 950, 550)
}
