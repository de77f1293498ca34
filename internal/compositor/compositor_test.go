package compositor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

var fullHD = tiling.Rect{Width: 1920, Height: 1080}

func newTestState(t *testing.T, decorations bool) (*State, *platform.Headless) {
	t.Helper()
	hb := platform.NewHeadless([]platform.Output{{Name: "OUT-1", Geometry: fullHD}})
	opts := DefaultOptions()
	opts.Decorations = decorations
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(hb, opts)
	s.spawn = func(string) error { return nil }
	return s, hb
}

// ack answers the latest configure sent to id and commits its size.
func ack(t *testing.T, s *State, hb *platform.Headless, id uint32) {
	t.Helper()
	c, ok := hb.LastConfigure(platform.WindowID(id))
	if !ok {
		t.Fatalf("window %d never received a configure", id)
	}
	s.HandleEvent(platform.AckConfigure{ID: c.ID, Serial: c.Serial})
	s.HandleEvent(platform.Commit{ID: c.ID, Size: c.Configure.Size})
}

// settle acks every known window.
func settle(t *testing.T, s *State, hb *platform.Headless) {
	t.Helper()
	for _, w := range s.Windows().All() {
		ack(t, s, hb, uint32(w.ID))
	}
}

// open drives a new toplevel through its initial configure and placement.
func open(t *testing.T, s *State, hb *platform.Headless, tl platform.NewToplevel) *window.Window {
	t.Helper()
	s.HandleEvent(tl)
	s.HandleEvent(platform.Commit{ID: tl.ID, Size: tl.Size})
	ack(t, s, hb, uint32(tl.ID))
	settle(t, s, hb)
	w, ok := s.Windows().Get(window.ID(tl.ID))
	if !ok {
		t.Fatalf("window %d not registered", tl.ID)
	}
	if !w.Initialized {
		t.Fatalf("window %d not initialized", tl.ID)
	}
	return w
}

func toplevel(id uint32) platform.NewToplevel {
	return platform.NewToplevel{ID: platform.WindowID(id), Size: tiling.Size{Width: 640, Height: 480}}
}

func cellOf(t *testing.T, s *State, id uint32) tiling.Rect {
	t.Helper()
	w, ok := s.Windows().Get(window.ID(id))
	if !ok {
		t.Fatalf("window %d missing", id)
	}
	return w.Cell()
}

func tiledCells(s *State) []tiling.Rect {
	var cells []tiling.Rect
	for _, w := range s.Windows().All() {
		if w.State.OccupiesCell() {
			cells = append(cells, w.Cell())
		}
	}
	return cells
}

func TestState_SplitAndReclaimScenario(t *testing.T) {
	s, hb := newTestState(t, false)

	w1 := open(t, s, hb, toplevel(1))
	if w1.State != window.Tiled {
		t.Fatalf("first window should tile, got %s", w1.State)
	}
	if got := cellOf(t, s, 1); got != fullHD {
		t.Fatalf("first window cell = %s, want %s", got, fullHD)
	}

	open(t, s, hb, toplevel(2))
	if got, want := cellOf(t, s, 1), (tiling.Rect{Width: 960, Height: 1080}); got != want {
		t.Fatalf("W1 cell = %s, want %s", got, want)
	}
	if got, want := cellOf(t, s, 2), (tiling.Rect{X: 960, Width: 960, Height: 1080}); got != want {
		t.Fatalf("W2 cell = %s, want %s", got, want)
	}
	if err := tiling.CheckPartition(fullHD, tiledCells(s)); err != nil {
		t.Fatalf("partition broken after split: %v", err)
	}

	if !s.RequestStateChange(2) {
		t.Fatalf("toggle of settled tiled window refused")
	}
	w2, _ := s.Windows().Get(2)
	if w2.State != window.TiledPendingUntile {
		t.Fatalf("expected pending untile, got %s", w2.State)
	}
	settle(t, s, hb)
	if w2.State != window.Untiled {
		t.Fatalf("expected untiled after commit, got %s", w2.State)
	}
	if got := cellOf(t, s, 1); got != fullHD {
		t.Fatalf("W1 should reclaim the output, got %s", got)
	}

	s.HandleEvent(platform.ToplevelDestroyed{ID: 1})
	w3 := open(t, s, hb, toplevel(3))
	if w3.State != window.Tiled || cellOf(t, s, 3) != fullHD {
		t.Fatalf("next window should get the full output, got %s %s", w3.State, cellOf(t, s, 3))
	}
}

func TestState_PartitionHoldsAcrossSplitsAndCloses(t *testing.T) {
	s, hb := newTestState(t, true)
	axes := []tiling.SplitAxis{tiling.Horizontal, tiling.Vertical, tiling.Horizontal, tiling.Vertical, tiling.Horizontal}
	for i, axis := range axes {
		s.SetSplit(axis)
		open(t, s, hb, toplevel(uint32(i+1)))
		if err := tiling.CheckPartition(fullHD, tiledCells(s)); err != nil {
			t.Fatalf("after opening %d: %v", i+1, err)
		}
	}

	for _, id := range []uint32{3, 5, 1} {
		s.HandleEvent(platform.ToplevelDestroyed{ID: platform.WindowID(id)})
		settle(t, s, hb)
		if err := tiling.CheckPartition(fullHD, tiledCells(s)); err != nil {
			t.Fatalf("after closing %d: %v", id, err)
		}
	}
}

func TestState_DecoratedCellsIncludeHeader(t *testing.T) {
	s, hb := newTestState(t, true)
	tl := toplevel(1)
	tl.Decorated = true
	w := open(t, s, hb, tl)

	want := tiling.Size{Width: 1920, Height: 1080 - s.opts.Header.Height}
	if w.Size != want {
		t.Fatalf("content size = %s, want %s", w.Size, want)
	}
	if w.WindowSize() != fullHD.Size() {
		t.Fatalf("window size = %s, want %s", w.WindowSize(), fullHD.Size())
	}
	c, _ := hb.LastConfigure(1)
	if c.Configure.HeaderHeight != s.opts.Header.Height {
		t.Fatalf("configure should carry the header height, got %d", c.Configure.HeaderHeight)
	}
}

func TestState_FixedSizeWindowStaysUntiled(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))

	fixed := toplevel(2)
	fixed.Size = tiling.Size{Width: 300, Height: 200}
	fixed.MinSize = fixed.Size
	fixed.MaxSize = fixed.Size
	w := open(t, s, hb, fixed)

	if !w.Fixed || w.State != window.Untiled {
		t.Fatalf("fixed window should be untiled, got fixed=%v state=%s", w.Fixed, w.State)
	}
	if got := cellOf(t, s, 1); got != fullHD {
		t.Fatalf("fixed window must not split the layout, W1 = %s", got)
	}
	loc, _ := s.Space().ElementLocation(2)
	if loc != (tiling.Point{X: 810, Y: 440}) {
		t.Fatalf("fixed window should be centered, got %+v", loc)
	}
	if s.RequestStateChange(2) {
		t.Fatalf("fixed window must refuse tiling")
	}
}

func TestState_TooSmallCellFallsBackToUntiled(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))

	big := toplevel(2)
	big.MinSize = tiling.Size{Width: 1200, Height: 100}
	w := open(t, s, hb, big)
	if w.State != window.Untiled || w.Fixed {
		t.Fatalf("expected non-fixed untiled fallback, got state=%s fixed=%v", w.State, w.Fixed)
	}
	if got := cellOf(t, s, 1); got != fullHD {
		t.Fatalf("failed placement must not touch W1, got %s", got)
	}
}

func TestState_OversizedForMaxHintFallsBackToUntiled(t *testing.T) {
	s, hb := newTestState(t, false)

	capped := toplevel(1)
	capped.Size = tiling.Size{Width: 400, Height: 300}
	capped.MaxSize = capped.Size
	w := open(t, s, hb, capped)
	if w.State != window.Untiled || w.Fixed {
		t.Fatalf("expected non-fixed untiled fallback, got state=%s fixed=%v", w.State, w.Fixed)
	}
	if loc, _ := s.Space().ElementLocation(1); loc != (tiling.Point{X: 760, Y: 390}) {
		t.Fatalf("fallback should be centered at its own size, got %+v size %s", loc, w.Size)
	}

	open(t, s, hb, toplevel(2))
	wide := toplevel(3)
	wide.MaxSize = tiling.Size{Width: 500}
	w3 := open(t, s, hb, wide)
	if w3.State != window.Untiled {
		t.Fatalf("half-width cell exceeds max width, got %s", w3.State)
	}
	if got := cellOf(t, s, 2); got != fullHD {
		t.Fatalf("failed placement must not touch W2, got %s", got)
	}

	roomy := toplevel(4)
	roomy.MaxSize = tiling.Size{Width: 1000, Height: 1080}
	if w4 := open(t, s, hb, roomy); w4.State != window.Tiled {
		t.Fatalf("cell within max should tile, got %s", w4.State)
	}
	if err := tiling.CheckPartition(fullHD, tiledCells(s)); err != nil {
		t.Fatalf("partition broken: %v", err)
	}
}

func TestState_SplitsWindowThatEnteredLayoutLast(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, toplevel(2))

	s.RequestStateChange(1)
	settle(t, s, hb)
	s.RequestStateChange(1)
	settle(t, s, hb)
	w1, _ := s.Windows().Get(1)
	if w1.State != window.Tiled {
		t.Fatalf("expected W1 tiled again, got %s", w1.State)
	}
	s.setKeyboardFocus(0)

	open(t, s, hb, toplevel(3))
	if got := cellOf(t, s, 2); got != (tiling.Rect{Width: 960, Height: 1080}) {
		t.Fatalf("W2 should be untouched, got %s", got)
	}
	if got := cellOf(t, s, 1); got != (tiling.Rect{X: 960, Width: 480, Height: 1080}) {
		t.Fatalf("W1 should be split, got %s", got)
	}
	if got := cellOf(t, s, 3); got != (tiling.Rect{X: 1440, Width: 480, Height: 1080}) {
		t.Fatalf("W3 should take the second half of W1, got %s", got)
	}
}

func TestState_ReconfigureKeepsRuntimeSplit(t *testing.T) {
	s, _ := newTestState(t, false)
	s.SetSplit(tiling.Vertical)

	opts := DefaultOptions()
	opts.Split = tiling.Horizontal
	opts.Tolerance = 3
	s.Reconfigure(opts)
	if s.Split() != tiling.Vertical {
		t.Fatalf("reload should keep the split axis, got %s", s.Split())
	}
	if s.opts.Tolerance != 3 {
		t.Fatalf("reload should apply other settings, tolerance=%d", s.opts.Tolerance)
	}
}

func TestState_UntiledStaysAboveTiled(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, toplevel(2))
	s.RequestStateChange(2)
	settle(t, s, hb)

	// Opening another tiled window must keep the floating one on top.
	open(t, s, hb, toplevel(3))
	stack := s.Space().Stacking()
	if stack[len(stack)-1] != 2 {
		t.Fatalf("floating window should be on top, got %v", stack)
	}

	before := s.Space().Stacking()
	s.raiseUntiled()
	s.raiseUntiled()
	after := s.Space().Stacking()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("re-raise not idempotent: %v -> %v", before, after)
		}
	}
}

func TestState_RetileSplitsFocusedWindow(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, toplevel(2))
	s.RequestStateChange(2)
	settle(t, s, hb)

	s.RequestStateChange(2)
	settle(t, s, hb)
	w2, _ := s.Windows().Get(2)
	if w2.State != window.Tiled {
		t.Fatalf("expected W2 tiled again, got %s", w2.State)
	}
	if err := tiling.CheckPartition(fullHD, tiledCells(s)); err != nil {
		t.Fatalf("partition broken after re-tile: %v", err)
	}
}

func TestState_PendingStatesIgnoreRequests(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	if !s.RequestStateChange(1) {
		t.Fatalf("first request should be accepted")
	}
	if s.RequestStateChange(1) {
		t.Fatalf("request while pending must be ignored")
	}
	if s.RequestStateChange(99) {
		t.Fatalf("unknown window must be ignored")
	}
}

func TestState_ReclaimUsesPendingSize(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, toplevel(2))

	// Window 3 splits window 2, but nobody acks before window 3 closes again.
	s.SetSplit(tiling.Vertical)
	s.HandleEvent(toplevel(3))
	s.HandleEvent(platform.Commit{ID: 3, Size: tiling.Size{Width: 640, Height: 480}})
	ack(t, s, hb, 3)
	ack(t, s, hb, 3)

	s.HandleEvent(platform.ToplevelDestroyed{ID: 3})
	if got, want := cellOf(t, s, 2), (tiling.Rect{X: 960, Width: 960, Height: 1080}); got != want {
		t.Fatalf("W2 should reclaim the lower half, got %s", got)
	}
}

func TestState_OutputRescale(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, toplevel(2))

	small := tiling.Rect{Width: 1366, Height: 768}
	s.HandleEvent(platform.OutputChanged{Output: platform.Output{Name: "OUT-1", Geometry: small}})
	if err := tiling.CheckPartition(small, tiledCells(s)); err != nil {
		t.Fatalf("rescaled layout broken: %v", err)
	}
	if got := cellOf(t, s, 1); got.Width != 683 || got.Height != 768 {
		t.Fatalf("unexpected W1 cell %s", got)
	}
}

func TestState_FrameMirrorsStacking(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, toplevel(2))
	s.Activate(1)
	s.Flush()

	f := hb.LastFrame
	if len(f.Items) != 2 || f.Items[1].ID != 1 {
		t.Fatalf("expected W1 last in frame, got %+v", f.Items)
	}
	if f.Focus != 1 || !f.Items[1].Activated || f.Items[0].Activated {
		t.Fatalf("activation not reflected: %+v", f)
	}
	if !f.Items[0].Tiled {
		t.Fatalf("tiled flag missing")
	}
}

func TestState_SizeHintsBecomingFixedUntile(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, toplevel(2))

	fixed := tiling.Size{Width: 400, Height: 300}
	s.HandleEvent(platform.SizeHints{ID: 2, MinSize: fixed, MaxSize: fixed})
	w2, _ := s.Windows().Get(2)
	if !w2.Fixed || w2.State != window.Untiled {
		t.Fatalf("expected fixed untiled, got fixed=%v state=%s", w2.Fixed, w2.State)
	}
	if got := cellOf(t, s, 1); got != fullHD {
		t.Fatalf("W1 should reclaim, got %s", got)
	}
	if c, _ := hb.LastConfigure(2); c.Configure.Size != fixed {
		t.Fatalf("expected configure at fixed size, got %s", c.Configure.Size)
	}
}
