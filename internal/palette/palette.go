// Package palette shows a rofi or dmenu window switcher fed from the running
// compositor and runs the chosen command over IPC.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label    string // Display text
	Action   string // Action identifier returned on selection
	Icon     string // Icon name for rofi -show-icons
	Meta     string // Hidden search keywords (rofi meta field)
	IsActive bool   // Highlighted as current
}

// Launcher shows items to the user and returns the selected one.
type Launcher interface {
	Show(prompt string, items []Item) (Item, error)
}

// DetectLauncher returns the first launcher found in PATH: rofi, then dmenu.
func DetectLauncher() (string, error) {
	for _, name := range []string{"rofi", "dmenu"} {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette launcher found in PATH (looked for: rofi, dmenu)")
}

// NewLauncher creates a launcher by name: auto, rofi or dmenu.
func NewLauncher(name string) (Launcher, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectLauncher()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	switch name {
	case "rofi", "dmenu":
		if _, err := exec.LookPath(name); err != nil {
			return nil, fmt.Errorf("palette launcher %q not found in PATH", name)
		}
		return &dmenuLauncher{command: name, rofi: name == "rofi"}, nil
	default:
		return nil, fmt.Errorf("unknown palette launcher: %q (expected: auto, rofi, dmenu)", name)
	}
}
