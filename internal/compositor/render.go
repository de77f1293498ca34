package compositor

import "github.com/1broseidon/tilewm/internal/platform"

// Frame describes the scene back to front for the backend to draw.
func (s *State) Frame() platform.Frame {
	elements := s.space.Elements()
	items := make([]platform.RenderItem, 0, len(elements))
	for _, w := range elements {
		loc, ok := s.space.ElementLocation(w.ID)
		if !ok {
			continue
		}
		items = append(items, platform.RenderItem{
			ID:           platform.WindowID(w.ID),
			Title:        w.Title,
			Location:     loc,
			Size:         w.Size,
			HeaderHeight: w.Header,
			Activated:    w.ID == s.focus,
			Tiled:        w.State.OccupiesCell(),
			Hover:        w.Hover,
		})
	}
	return platform.Frame{Items: items, Focus: platform.WindowID(s.focus)}
}
