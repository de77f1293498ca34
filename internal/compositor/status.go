package compositor

import (
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

// WindowInfo is a read-only snapshot of one window.
type WindowInfo struct {
	ID        uint32      `json:"id"`
	Title     string      `json:"title"`
	State     string      `json:"state"`
	Fixed     bool        `json:"fixed"`
	Decorated bool        `json:"decorated"`
	Focused   bool        `json:"focused"`
	Mapped    bool        `json:"mapped"`
	Bounds    tiling.Rect `json:"bounds"`
	Size      tiling.Size `json:"size"`
	ZOrder    uint64      `json:"z_order"`
}

// OutputInfo is a read-only snapshot of one output.
type OutputInfo struct {
	Name     string      `json:"name"`
	Geometry tiling.Rect `json:"geometry"`
}

// Status summarizes the compositor.
type Status struct {
	Backend     string       `json:"backend"`
	Split       string       `json:"split"`
	Windows     int          `json:"windows"`
	Tiled       int          `json:"tiled"`
	Untiled     int          `json:"untiled"`
	Focus       uint32       `json:"focus"`
	Grabbing    bool         `json:"grabbing"`
	Outputs     []OutputInfo `json:"outputs"`
	Deferred    int          `json:"deferred"`
	UptimeSecs  int64        `json:"uptime_seconds"`
	DaemonAlive bool         `json:"daemon_running"`
}

// WindowInfos lists every known window, bottom of the stack first, with
// unmapped windows last.
func (s *State) WindowInfos() []WindowInfo {
	var infos []WindowInfo
	seen := make(map[window.ID]bool)
	for _, w := range s.space.Elements() {
		seen[w.ID] = true
		infos = append(infos, s.info(w))
	}
	for _, w := range s.windows.All() {
		if !seen[w.ID] {
			infos = append(infos, s.info(w))
		}
	}
	return infos
}

func (s *State) info(w *window.Window) WindowInfo {
	bounds, mapped := s.space.ElementBounds(w)
	return WindowInfo{
		ID:        uint32(w.ID),
		Title:     w.Title,
		State:     w.State.String(),
		Fixed:     w.Fixed,
		Decorated: w.Decorated,
		Focused:   w.ID == s.focus,
		Mapped:    mapped,
		Bounds:    bounds,
		Size:      w.Size,
		ZOrder:    w.ZOrder,
	}
}

// Status returns a summary snapshot. Uptime is filled in by the Loop.
func (s *State) Status() Status {
	st := Status{
		Backend:     s.backend.Name(),
		Split:       s.split.String(),
		Windows:     s.windows.Len(),
		Focus:       uint32(s.focus),
		Grabbing:    s.Grabbing(),
		Deferred:    s.queue.Len(),
		DaemonAlive: true,
	}
	for _, w := range s.windows.All() {
		if w.State.OccupiesCell() {
			st.Tiled++
		} else {
			st.Untiled++
		}
	}
	for _, o := range s.space.Outputs() {
		st.Outputs = append(st.Outputs, OutputInfo{Name: o.Name, Geometry: o.Geometry})
	}
	return st
}
