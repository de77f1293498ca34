package palette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tilewm/internal/compositor"
)

// Commander runs the commands a palette selection can trigger. ipc.Client
// implements it.
type Commander interface {
	SetSplit(axis string) error
	ToggleTiling(id uint32) error
	CloseWindow(id uint32) error
	FocusWindow(id uint32) error
	Reload() error
}

// Items lists every window followed by the commands for the focused window
// and the global commands. The focused window is marked active.
func Items(windows []compositor.WindowInfo, focus uint32) []Item {
	items := make([]Item, 0, len(windows)+6)
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		if !w.Mapped {
			continue
		}
		title := w.Title
		if title == "" {
			title = fmt.Sprintf("window %d", w.ID)
		}
		items = append(items, Item{
			Label:    fmt.Sprintf("%s  [%s]", title, w.State),
			Action:   "focus:" + strconv.FormatUint(uint64(w.ID), 10),
			Icon:     "window",
			Meta:     w.State,
			IsActive: w.ID == focus,
		})
	}
	if focus != 0 {
		id := strconv.FormatUint(uint64(focus), 10)
		items = append(items,
			Item{Label: "Toggle tiling of focused window", Action: "toggle:" + id, Icon: "view-grid"},
			Item{Label: "Close focused window", Action: "close:" + id, Icon: "window-close"},
		)
	}
	items = append(items,
		Item{Label: "Split next window side by side", Action: "split:horizontal", Icon: "view-split-left-right"},
		Item{Label: "Split next window stacked", Action: "split:vertical", Icon: "view-split-top-bottom"},
		Item{Label: "Reload config", Action: "reload", Icon: "view-refresh"},
	)
	return items
}

// Execute runs the command encoded in action.
func Execute(c Commander, action string) error {
	verb, arg, _ := strings.Cut(action, ":")
	switch verb {
	case "split":
		return c.SetSplit(arg)
	case "reload":
		return c.Reload()
	case "focus", "toggle", "close":
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil || id == 0 {
			return fmt.Errorf("palette: invalid window in %q", action)
		}
		switch verb {
		case "focus":
			return c.FocusWindow(uint32(id))
		case "toggle":
			return c.ToggleTiling(uint32(id))
		default:
			return c.CloseWindow(uint32(id))
		}
	default:
		return fmt.Errorf("palette: unknown action %q", action)
	}
}
