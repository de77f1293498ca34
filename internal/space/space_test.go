package space

import (
	"testing"

	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

func newWindow(id window.ID, w, h int) *window.Window {
	return &window.Window{ID: id, Size: tiling.Size{Width: w, Height: h}}
}

func TestSpace_ElementUnderPrefersTopmost(t *testing.T) {
	s := New()
	a := newWindow(1, 500, 500)
	b := newWindow(2, 200, 200)
	s.MapElement(a, tiling.Point{}, true)
	s.MapElement(b, tiling.Point{X: 100, Y: 100}, true)

	got, loc, ok := s.ElementUnder(tiling.PointF{X: 150, Y: 150})
	if !ok || got.ID != 2 {
		t.Fatalf("expected window 2 under pointer, got %+v ok=%v", got, ok)
	}
	if loc != (tiling.Point{X: 100, Y: 100}) {
		t.Fatalf("unexpected location %+v", loc)
	}

	s.RaiseElement(1, true)
	if got, _, _ := s.ElementUnder(tiling.PointF{X: 150, Y: 150}); got.ID != 1 {
		t.Fatalf("raised window should be hit first, got %d", got.ID)
	}
	if _, _, ok := s.ElementUnder(tiling.PointF{X: 600, Y: 10}); ok {
		t.Fatalf("expected no element outside all bounds")
	}
}

func TestSpace_DecorationCountsTowardsBounds(t *testing.T) {
	s := New()
	w := newWindow(1, 100, 100)
	w.SetDecorated(true, 25)
	s.MapElement(w, tiling.Point{}, false)

	if _, _, ok := s.ElementUnder(tiling.PointF{X: 50, Y: 110}); !ok {
		t.Fatalf("point inside the title-bar-extended bounds should hit")
	}
}

func TestSpace_MapAssignsZOrderAndUnmap(t *testing.T) {
	s := New()
	a := newWindow(1, 10, 10)
	b := newWindow(2, 10, 10)
	s.MapElement(a, tiling.Point{}, false)
	s.MapElement(b, tiling.Point{}, false)
	if a.ZOrder >= b.ZOrder {
		t.Fatalf("later mapping should have a higher z order: %d vs %d", a.ZOrder, b.ZOrder)
	}

	before := a.ZOrder
	s.MapElement(a, tiling.Point{X: 5}, false)
	if a.ZOrder != before {
		t.Fatalf("moving without reorder must not change z order")
	}
	if got := s.Stacking(); got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected stacking %v", got)
	}

	s.RaiseElement(1, false)
	if a.ZOrder != before {
		t.Fatalf("raise without bump must keep z order")
	}
	if got := s.Stacking(); got[1] != 1 {
		t.Fatalf("expected window 1 on top, got %v", got)
	}

	s.UnmapElement(1)
	s.UnmapElement(1)
	if s.Contains(1) || len(s.Elements()) != 1 {
		t.Fatalf("unmap did not remove window 1")
	}
}

func TestSpace_Outputs(t *testing.T) {
	s := New()
	s.SetOutput(Output{Name: "A", Geometry: tiling.Rect{Width: 1920, Height: 1080}})
	s.SetOutput(Output{Name: "B", Geometry: tiling.Rect{X: 1920, Width: 1280, Height: 1024}})

	o, ok := s.OutputUnder(tiling.PointF{X: 2000, Y: 10})
	if !ok || o.Name != "B" {
		t.Fatalf("expected output B, got %+v", o)
	}

	prev, existed := s.SetOutput(Output{Name: "A", Geometry: tiling.Rect{Width: 1280, Height: 720}})
	if !existed || prev.Width != 1920 {
		t.Fatalf("expected previous geometry, got %s existed=%v", prev, existed)
	}
	if g, _ := s.OutputGeometry("A"); g.Width != 1280 {
		t.Fatalf("geometry not updated: %s", g)
	}

	s.RemoveOutput("B")
	if len(s.Outputs()) != 1 {
		t.Fatalf("expected one output after removal")
	}
}
