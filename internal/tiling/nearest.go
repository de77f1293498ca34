package tiling

// center returns the midpoint of r on axis a.
func center(r Rect, a Axis) int {
	return r.Lo(a) + r.Extent(a)/2
}

// Nearest picks the cell to move to from `from` in direction d. Cells whose
// centre lies beyond from's centre in d compete on Manhattan distance between
// centres. When none does, the search wraps to the far edge of the opposite
// side, preferring cells aligned with from on the cross axis. Cells equal to
// from are skipped.
func Nearest(from Rect, cells []Cell, d Direction) (Cell, bool) {
	along, cross := d.Extend, d.Extend.Other()
	ca, cc := center(from, along), center(from, cross)

	best, bestDist := -1, 0
	for i, c := range cells {
		if c.Rect == from {
			continue
		}
		delta := center(c.Rect, along) - ca
		if delta*d.Sign <= 0 {
			continue
		}
		dist := abs(delta) + abs(center(c.Rect, cross)-cc)
		if best == -1 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best >= 0 {
		return cells[best], true
	}

	// Wrap: furthest along the opposite side, then closest on the cross axis.
	bestScore := 0
	for i, c := range cells {
		if c.Rect == from {
			continue
		}
		score := -d.Sign*center(c.Rect, along)*10000 - abs(center(c.Rect, cross)-cc)
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return cells[best], true
	}
	return Cell{}, false
}
