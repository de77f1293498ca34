package tiling

// DefaultTolerance is the edge alignment slack used by neighbour searches.
const DefaultTolerance = 5

// Cell is a tiled window's decoration-inclusive rectangle.
type Cell struct {
	ID   uint32
	Rect Rect
}

// Direction describes one neighbour search around a freed cell.
// Extend is the axis along which matched neighbours grow. Sign is -1 when
// neighbours sit before the freed cell on that axis (up, left) and +1 when
// they sit after it (down, right); the latter also move their origin.
type Direction struct {
	Name   string
	Extend Axis
	Sign   int
}

var (
	Up    = Direction{Name: "up", Extend: AxisY, Sign: -1}
	Down  = Direction{Name: "down", Extend: AxisY, Sign: +1}
	Left  = Direction{Name: "left", Extend: AxisX, Sign: -1}
	Right = Direction{Name: "right", Extend: AxisX, Sign: +1}
)

// ReclaimOrder is the fixed search priority. The first fully covering
// direction wins even when a later one would also match.
var ReclaimOrder = []Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	return d.Name
}

// meets reports whether sibling touches closing on d's side.
func (d Direction) meets(closing, sibling Rect, tol int) bool {
	a := d.Extend
	if d.Sign < 0 {
		return abs(sibling.Hi(a)-closing.Lo(a)) <= tol
	}
	return abs(sibling.Lo(a)-closing.Hi(a)) <= tol
}

// Match returns the siblings adjacent to closing in direction d whose span
// lies within the closing span, or nil unless they are flush with both ends
// of that span.
func (d Direction) Match(closing Rect, siblings []Cell, tol int) []Cell {
	span := d.Extend.Other()
	lo, hi := closing.Lo(span), closing.Hi(span)

	var matched []Cell
	flushLo, flushHi := false, false
	for _, s := range siblings {
		if !d.meets(closing, s.Rect, tol) {
			continue
		}
		if s.Rect.Lo(span) < lo-tol || s.Rect.Hi(span) > hi+tol {
			continue
		}
		matched = append(matched, s)
		if abs(s.Rect.Lo(span)-lo) <= tol {
			flushLo = true
		}
		if abs(s.Rect.Hi(span)-hi) <= tol {
			flushHi = true
		}
	}
	if !flushLo || !flushHi {
		return nil
	}
	return matched
}

// Grow returns sibling enlarged to absorb closing along d.
func (d Direction) Grow(closing, sibling Rect) Rect {
	a := d.Extend
	ext := sibling.Extent(a) + closing.Extent(a)
	lo := sibling.Lo(a)
	if d.Sign > 0 {
		lo = closing.Lo(a)
	}
	return sibling.withSpan(a, lo, ext)
}

// Reclamation is the outcome of a successful neighbour search.
type Reclamation struct {
	Direction Direction
	// Grown holds the matched siblings with their enlarged rectangles.
	Grown []Cell
}

// Reclaim hands the area of closing to its neighbours. Directions are tried
// in ReclaimOrder. It returns false when no direction fully covers the freed
// edge; the area is then left unassigned and no sibling is touched.
func Reclaim(closing Rect, siblings []Cell, tol int) (Reclamation, bool) {
	for _, d := range ReclaimOrder {
		matched := d.Match(closing, siblings, tol)
		if len(matched) == 0 {
			continue
		}
		grown := make([]Cell, len(matched))
		for i, m := range matched {
			grown[i] = Cell{ID: m.ID, Rect: d.Grow(closing, m.Rect)}
		}
		return Reclamation{Direction: d, Grown: grown}, true
	}
	return Reclamation{}, false
}
