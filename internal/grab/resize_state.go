package grab

import "github.com/1broseidon/tilewm/internal/tiling"

// ResizePhase tracks a window through a resize and its trailing commit.
type ResizePhase int

const (
	// Idle means the window is not being resized
	Idle ResizePhase = iota
	// Resizing means a resize grab is active
	Resizing
	// WaitingForLastCommit means the grab ended but the final size has not been committed
	WaitingForLastCommit
)

// String returns the string representation of the phase
func (p ResizePhase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Resizing:
		return "resizing"
	case WaitingForLastCommit:
		return "waiting-for-last-commit"
	default:
		return "unknown"
	}
}

// ResizeState is stored on the window so commits can finish a resize.
type ResizeState struct {
	Phase   ResizePhase
	Edges   Edge
	Initial tiling.Rect
}

// Release moves an active resize into its trailing-commit phase.
func (s *ResizeState) Release() {
	if s.Phase == Resizing {
		s.Phase = WaitingForLastCommit
	}
}

// Reset returns the state to idle
func (s *ResizeState) Reset() {
	*s = ResizeState{}
}

// Commit computes where the element must sit now that the client committed
// the given content size. Left and top resizes keep the opposite edge fixed,
// so the location shifts by the size change. It reports false when the
// location does not change.
func (s *ResizeState) Commit(current tiling.Point, committed tiling.Size) (tiling.Point, bool) {
	if s.Phase == Idle {
		return current, false
	}
	loc := current
	if s.Edges&EdgeLeft != 0 {
		loc.X = s.Initial.X + s.Initial.Width - committed.Width
	}
	if s.Edges&EdgeTop != 0 {
		loc.Y = s.Initial.Y + s.Initial.Height - committed.Height
	}
	if s.Phase == WaitingForLastCommit {
		s.Reset()
	}
	return loc, loc != current
}
