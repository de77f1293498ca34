package decoration

import (
	"fmt"
	"strconv"
	"strings"
)

// Palette holds 0xRRGGBB pixel values for painting the bar.
type Palette struct {
	Active   uint32
	Inactive uint32
	Hover    uint32
	Close    uint32
}

// DefaultPalette is a muted dark theme.
func DefaultPalette() Palette {
	return Palette{
		Active:   0x3b4252,
		Inactive: 0x2e3440,
		Hover:    0x5e81ac,
		Close:    0xbf616a,
	}
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(s string) (uint32, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) != 6 {
		return 0, fmt.Errorf("invalid color %q (expected #rrggbb)", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(n), nil
}

// Fill returns the color for a segment.
func (p Palette) Fill(b Button, hover Hover, activated bool) uint32 {
	base := p.Inactive
	if activated {
		base = p.Active
	}
	switch b {
	case Toggle:
		if hover.Toggle {
			return p.Hover
		}
	case Indicator:
		if hover.Indicator {
			return p.Hover
		}
	case Close:
		if hover.Close {
			return p.Close
		}
	}
	return base
}
