package compositor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/tilewm/internal/decoration"
	"github.com/1broseidon/tilewm/internal/grab"
	"github.com/1broseidon/tilewm/internal/tiling"
)

// Action is something a key binding can trigger.
type Action int

const (
	ActionNone Action = iota
	ActionSplitHorizontal
	ActionSplitVertical
	ActionToggleTiling
	ActionCloseWindow
	ActionSpawnTerminal
	ActionQuit
	ActionFocusLeft
	ActionFocusRight
	ActionFocusUp
	ActionFocusDown
)

var actionNames = map[Action]string{
	ActionSplitHorizontal: "split_horizontal",
	ActionSplitVertical:   "split_vertical",
	ActionToggleTiling:    "toggle_tiling",
	ActionCloseWindow:     "close_window",
	ActionSpawnTerminal:   "spawn_terminal",
	ActionQuit:            "quit",
	ActionFocusLeft:       "focus_left",
	ActionFocusRight:      "focus_right",
	ActionFocusUp:         "focus_up",
	ActionFocusDown:       "focus_down",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction maps a config name such as "toggle_tiling" to an Action.
func ParseAction(s string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// ActionNames lists every bindable action name.
func ActionNames() []string {
	return []string{
		ActionSplitHorizontal.String(),
		ActionSplitVertical.String(),
		ActionToggleTiling.String(),
		ActionCloseWindow.String(),
		ActionSpawnTerminal.String(),
		ActionQuit.String(),
		ActionFocusLeft.String(),
		ActionFocusRight.String(),
		ActionFocusUp.String(),
		ActionFocusDown.String(),
	}
}

// Options configures a State.
type Options struct {
	Header decoration.Header
	Bands  grab.Bands
	// Tolerance is the edge slack, in logical pixels, for reclamation matches.
	Tolerance int
	Split     tiling.SplitAxis
	// Decorations enables server-side title bars for clients that accept them.
	Decorations bool
	// Bindings maps key sequences to actions.
	Bindings map[string]Action
	// Terminal is the shell command run by ActionSpawnTerminal.
	Terminal string
	Logger   *slog.Logger
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		Header:      decoration.DefaultHeader(),
		Bands:       grab.DefaultBands(),
		Tolerance:   tiling.DefaultTolerance,
		Split:       tiling.Horizontal,
		Decorations: true,
		Bindings:    DefaultBindings(),
		Terminal:    "xterm",
	}
}

// DefaultBindings returns the stock key bindings.
func DefaultBindings() map[string]Action {
	return map[string]Action{
		"Mod4-b":      ActionSplitHorizontal,
		"Mod4-v":      ActionSplitVertical,
		"Mod4-t":      ActionToggleTiling,
		"Mod4-w":      ActionCloseWindow,
		"Mod4-Return": ActionSpawnTerminal,
		"Mod4-q":      ActionQuit,
		"Mod4-Left":   ActionFocusLeft,
		"Mod4-Right":  ActionFocusRight,
		"Mod4-Up":     ActionFocusUp,
		"Mod4-Down":   ActionFocusDown,
	}
}
