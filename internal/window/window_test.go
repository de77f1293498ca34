package window

import (
	"testing"

	"github.com/1broseidon/tilewm/internal/tiling"
)

func TestTilingState_AdvanceCycle(t *testing.T) {
	tests := []struct {
		from TilingState
		to   TilingState
	}{
		{Tiled, TiledPendingUntile},
		{TiledPendingUntile, Untiled},
		{Untiled, UntiledPendingTile},
		{UntiledPendingTile, Tiled},
	}
	for _, tt := range tests {
		if got := tt.from.Advance(); got != tt.to {
			t.Fatalf("%s.Advance() = %s, want %s", tt.from, got, tt.to)
		}
	}
}

func TestTilingState_AdvancePanicsOnInvalidTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for invalid state")
		}
	}()
	TilingState(42).Advance()
}

func TestRegistry_RequestStateChange(t *testing.T) {
	r := NewRegistry()
	w, _ := r.Add(1)
	w.Initialized = true
	w.State = Tiled

	if !r.RequestStateChange(1) {
		t.Fatalf("expected state change")
	}
	if w.State != TiledPendingUntile {
		t.Fatalf("state = %s, want %s", w.State, TiledPendingUntile)
	}
	if r.RequestStateChange(1) {
		t.Fatalf("pending window must not advance again before commit")
	}
	if r.RequestStateChange(99) {
		t.Fatalf("unknown id must be a no-op")
	}
}

func TestRegistry_RequestStateChangeIgnoresFixed(t *testing.T) {
	r := NewRegistry()
	w, _ := r.Add(7)
	w.Initialized = true
	w.Fixed = true
	w.State = Untiled

	for i := 0; i < 3; i++ {
		if r.RequestStateChange(7) {
			t.Fatalf("fixed window changed state")
		}
	}
	if w.State != Untiled {
		t.Fatalf("fixed window state = %s", w.State)
	}
}

func TestRegistry_OrderAndRemove(t *testing.T) {
	r := NewRegistry()
	for _, id := range []ID{5, 3, 9} {
		r.Add(id)
	}
	if _, fresh := r.Add(3); fresh {
		t.Fatalf("re-adding an id must return the existing record")
	}
	r.Remove(3)
	r.Remove(42)

	all := r.All()
	if len(all) != 2 || all[0].ID != 5 || all[1].ID != 9 {
		t.Fatalf("unexpected order %+v", all)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d", r.Len())
	}
}

func TestWindow_ConfigureBookkeeping(t *testing.T) {
	w := &Window{ID: 1}
	if !w.NeedsConfigure() {
		t.Fatalf("first configure is always needed")
	}
	w.Pending.Size = tiling.Size{Width: 100, Height: 50}
	w.MarkSent(4)
	if w.NeedsConfigure() {
		t.Fatalf("unchanged pending state should not need a configure")
	}
	if w.Settled() || w.Configured() {
		t.Fatalf("unacked configure reported as settled")
	}
	w.Ack(4)
	if !w.Settled() || !w.Configured() {
		t.Fatalf("acked configure not settled")
	}
	w.Pending.Activated = true
	if !w.NeedsConfigure() {
		t.Fatalf("activation change should need a configure")
	}
}

func TestWindow_CellUsesPendingReclaimSize(t *testing.T) {
	w := &Window{ID: 1, Size: tiling.Size{Width: 10, Height: 10}}
	w.SetDecorated(true, 25)
	if got := w.WindowSize(); got != (tiling.Size{Width: 10, Height: 35}) {
		t.Fatalf("WindowSize() = %s", got)
	}

	w.AssignCell(tiling.Rect{X: 960, Y: 0, Width: 960, Height: 1080}, tiling.Rect{Width: 1920, Height: 1080})
	if w.Cell() != (tiling.Rect{X: 960, Y: 0, Width: 960, Height: 1080}) {
		t.Fatalf("Cell() = %s", w.Cell())
	}
	if w.ElementSize != (tiling.Size{Width: 960, Height: 1055}) {
		t.Fatalf("ElementSize = %s", w.ElementSize)
	}
	if w.Pending.Size != w.ElementSize {
		t.Fatalf("pending configure size %s, want %s", w.Pending.Size, w.ElementSize)
	}
}
