package compositor

import "github.com/1broseidon/tilewm/internal/window"

// Deferred is work that must not run while an input dispatch is still on the
// stack. It runs after the current event batch and before the next frame.
type Deferred interface {
	apply(s *State)
}

// ToggleTile flips a window between tiled and untiled.
type ToggleTile struct {
	ID window.ID
}

// StartMove starts a move grab with the serial of the press that asked for it.
type StartMove struct {
	ID     window.ID
	Serial uint32
}

// CloseWindow asks a client to close.
type CloseWindow struct {
	ID window.ID
}

func (t ToggleTile) apply(s *State) { s.RequestStateChange(t.ID) }

func (t StartMove) apply(s *State) { s.StartMove(t.ID, t.Serial) }

func (t CloseWindow) apply(s *State) { s.closeWindow(t.ID) }

// Queue is a FIFO of deferred tasks.
type Queue struct {
	items []Deferred
}

// Push appends a task.
func (q *Queue) Push(d Deferred) {
	q.items = append(q.items, d)
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	return len(q.items)
}

// Drain runs tasks in submission order until the queue is empty. Tasks queued
// by a running task run in the same drain, after everything queued before them.
func (q *Queue) Drain(s *State) {
	for len(q.items) > 0 {
		d := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
		d.apply(s)
	}
	q.items = nil
}
