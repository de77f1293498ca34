package window

import "fmt"

// TilingState is the per-window tiling status.
type TilingState int

const (
	Tiled TilingState = iota
	TiledPendingUntile
	Untiled
	UntiledPendingTile
)

func (s TilingState) String() string {
	switch s {
	case Tiled:
		return "tiled"
	case TiledPendingUntile:
		return "tiled-pending-untile"
	case Untiled:
		return "untiled"
	case UntiledPendingTile:
		return "untiled-pending-tile"
	default:
		return fmt.Sprintf("TilingState(%d)", int(s))
	}
}

// Advance returns the next state. Requests move a settled state to its
// pending variant; commits resolve a pending variant to its target.
func (s TilingState) Advance() TilingState {
	switch s {
	case Tiled:
		return TiledPendingUntile
	case TiledPendingUntile:
		return Untiled
	case Untiled:
		return UntiledPendingTile
	case UntiledPendingTile:
		return Tiled
	default:
		panic(fmt.Sprintf("window: invalid tiling state %d", int(s)))
	}
}

// Pending reports whether s waits for a commit to resolve.
func (s TilingState) Pending() bool {
	return s == TiledPendingUntile || s == UntiledPendingTile
}

// OccupiesCell reports whether a window in state s holds a tiled cell.
// A window pending untile keeps its cell until the transition resolves.
func (s TilingState) OccupiesCell() bool {
	return s == Tiled || s == TiledPendingUntile
}

// Floating reports whether a window in state s stacks above tiled windows.
func (s TilingState) Floating() bool {
	return s == Untiled || s == UntiledPendingTile
}
