package compositor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

type recordTask struct {
	log  *[]int
	n    int
	then Deferred
}

func (r recordTask) apply(s *State) {
	*r.log = append(*r.log, r.n)
	if r.then != nil {
		s.Defer(r.then)
	}
}

func TestQueue_DrainsInSubmissionOrder(t *testing.T) {
	s, _ := newTestState(t, false)
	var got []int
	s.Defer(recordTask{log: &got, n: 1, then: recordTask{log: &got, n: 3}})
	s.Defer(recordTask{log: &got, n: 2})
	if s.queue.Len() != 2 {
		t.Fatalf("expected 2 queued tasks, got %d", s.queue.Len())
	}

	s.Flush()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if s.queue.Len() != 0 {
		t.Fatalf("queue not empty after flush")
	}
}

func TestQueue_TasksForVanishedWindowsAreHarmless(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	s.Defer(ToggleTile{ID: 1})
	s.Defer(CloseWindow{ID: 1})
	s.HandleEvent(platform.ToplevelDestroyed{ID: 1})
	s.Flush()
	if len(hb.Closed) != 0 {
		t.Fatalf("close for a destroyed window should be dropped, got %v", hb.Closed)
	}
}

func TestKeys_Actions(t *testing.T) {
	s, hb := newTestState(t, false)
	var spawned []string
	s.spawn = func(cmd string) error {
		spawned = append(spawned, cmd)
		return nil
	}
	w := open(t, s, hb, toplevel(1))

	key := func(seq string) {
		s.HandleEvent(platform.Key{Sequence: seq, Pressed: true})
	}

	key("Mod4-v")
	if s.Split() != tiling.Vertical {
		t.Fatalf("expected vertical split")
	}
	key("Mod4-b")
	if s.Split() != tiling.Horizontal {
		t.Fatalf("expected horizontal split")
	}

	key("Mod4-t")
	s.Flush()
	if w.State.Pending() {
		t.Fatalf("toggle without focus should do nothing")
	}

	s.Activate(1)
	key("Mod4-t")
	s.Flush()
	if !w.State.Pending() {
		t.Fatalf("toggle should act on the focused window, got %s", w.State)
	}

	key("Mod4-w")
	s.Flush()
	if len(hb.Closed) != 1 {
		t.Fatalf("close should act on the focused window")
	}

	key("Mod4-Return")
	if len(spawned) != 1 || spawned[0] != s.opts.Terminal {
		t.Fatalf("unexpected spawns %v", spawned)
	}

	key("Mod4-x")
	if s.Quitting() {
		t.Fatalf("unbound key must not quit")
	}
	key("Mod4-q")
	if !s.Quitting() {
		t.Fatalf("quit binding ignored")
	}
}

func TestParseAction(t *testing.T) {
	for _, name := range ActionNames() {
		a, err := ParseAction(name)
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", name, err)
		}
		if a.String() != name {
			t.Fatalf("round trip mismatch: %q -> %s", name, a)
		}
	}
	if _, err := ParseAction("fly"); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestLoop_ServeWithCooperativeClient(t *testing.T) {
	s, hb := newTestState(t, false)
	hb.AutoAck = true
	loop := NewLoop(s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Serve(ctx) }()

	hb.Inject(platform.NewToplevel{ID: 1, Size: tiling.Size{Width: 640, Height: 480}})
	hb.Inject(platform.Commit{ID: 1, Size: tiling.Size{Width: 640, Height: 480}})
	hb.Inject(platform.NewToplevel{ID: 2, Size: tiling.Size{Width: 640, Height: 480}})
	hb.Inject(platform.Commit{ID: 2, Size: tiling.Size{Width: 640, Height: 480}})

	deadline := time.Now().Add(3 * time.Second)
	for {
		infos, err := loop.Windows(ctx)
		if err != nil {
			t.Fatalf("Windows: %v", err)
		}
		if len(infos) == 2 && infos[0].State == "tiled" && infos[1].State == "tiled" &&
			infos[0].Size.Width == 960 && infos[1].Size.Width == 960 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("windows never settled: %+v", infos)
		}
		time.Sleep(10 * time.Millisecond)
	}

	st, err := loop.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Tiled != 2 || st.Backend != "headless" {
		t.Fatalf("unexpected status %+v", st)
	}

	if err := loop.ToggleTiling(ctx, 99); !errors.Is(err, ErrNoSuchWindow) {
		t.Fatalf("expected ErrNoSuchWindow, got %v", err)
	}
	if err := loop.SetSplit(ctx, tiling.Vertical); err != nil {
		t.Fatalf("SetSplit: %v", err)
	}

	hb.Drop(2)
	pruned, err := loop.Prune(ctx, func(id uint32) bool { return hb.Alive(platform.WindowID(id)) })
	if err != nil || len(pruned) != 1 || pruned[0] != 2 {
		t.Fatalf("expected window 2 pruned, got %v err=%v", pruned, err)
	}

	hb.Inject(platform.Key{Sequence: "Mod4-q", Pressed: true})
	select {
	case err := <-errCh:
		if !errors.Is(err, ErrQuit) {
			t.Fatalf("expected ErrQuit, got %v", err)
		}
	case <-ctx.Done():
		t.Fatalf("loop did not stop")
	}

	if err := loop.SetSplit(context.Background(), tiling.Horizontal); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("expected ErrLoopStopped, got %v", err)
	}
}

func TestKeys_FocusNeighbour(t *testing.T) {
	s, hb := newTestState(t, false)
	open(t, s, hb, toplevel(1))
	open(t, s, hb, toplevel(2))

	left, right := uint32(1), uint32(2)
	if cellOf(t, s, 1).X > cellOf(t, s, 2).X {
		left, right = right, left
	}

	key := func(seq string) {
		s.HandleEvent(platform.Key{Sequence: seq, Pressed: true})
	}

	s.Activate(window.ID(left))
	key("Mod4-Right")
	if s.Focus() != window.ID(right) {
		t.Fatalf("expected focus on %d, got %d", right, s.Focus())
	}
	key("Mod4-Right")
	if s.Focus() != window.ID(left) {
		t.Fatalf("expected focus to wrap to %d, got %d", left, s.Focus())
	}
	key("Mod4-Left")
	if s.Focus() != window.ID(right) {
		t.Fatalf("expected left to wrap to %d, got %d", right, s.Focus())
	}
}
