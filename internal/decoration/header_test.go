package decoration

import "testing"

func TestHeader_HitTest(t *testing.T) {
	h := DefaultHeader()
	const width = 400

	tests := []struct {
		x    float64
		want Button
	}{
		{0, Toggle},
		{25, Toggle},
		{26, Drag},
		{200, Drag},
		{350, Drag},
		{351, Indicator},
		{375, Indicator},
		{376, Close},
		{399, Close},
		{400, None},
		{-1, None},
	}
	for _, tt := range tests {
		if got := h.HitTest(tt.x, width); got != tt.want {
			t.Fatalf("HitTest(%v) = %s, want %s", tt.x, got, tt.want)
		}
	}
}

func TestHeader_HoverAt(t *testing.T) {
	h := DefaultHeader()
	if got := h.HoverAt(390, 10, 400); got != (Hover{Close: true}) {
		t.Fatalf("expected close hover, got %+v", got)
	}
	if got := h.HoverAt(10, 10, 400); got != (Hover{Toggle: true}) {
		t.Fatalf("expected toggle hover, got %+v", got)
	}
	if got := h.HoverAt(200, 10, 400); got != (Hover{}) {
		t.Fatalf("drag region must not hover, got %+v", got)
	}
	if got := h.HoverAt(390, 30, 400); got != (Hover{}) {
		t.Fatalf("below the bar must not hover, got %+v", got)
	}
}

func TestHeader_ContentY(t *testing.T) {
	h := DefaultHeader()
	if got := h.ContentY(100); got != 75 {
		t.Fatalf("ContentY(100) = %v", got)
	}
}

func TestHeader_SegmentsCoverWidth(t *testing.T) {
	h := DefaultHeader()
	segs := h.Segments(400)
	if len(segs) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(segs))
	}
	total := 0
	for _, s := range segs {
		total += s.Width
	}
	if total != 400 {
		t.Fatalf("segments cover %d px, want 400", total)
	}
	if segs[3].Button != Close || segs[3].X != 375 {
		t.Fatalf("close button misplaced: %+v", segs[3])
	}
}

func TestParseColorAndFill(t *testing.T) {
	c, err := ParseColor("#bf616a")
	if err != nil || c != 0xbf616a {
		t.Fatalf("ParseColor = %x, %v", c, err)
	}
	if _, err := ParseColor("red"); err == nil {
		t.Fatalf("expected error for named color")
	}

	p := DefaultPalette()
	if got := p.Fill(Close, Hover{Close: true}, false); got != p.Close {
		t.Fatalf("hovered close should use close color")
	}
	if got := p.Fill(Drag, Hover{}, true); got != p.Active {
		t.Fatalf("active drag region should use active color")
	}
}
