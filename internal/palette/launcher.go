package palette

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// dmenuLauncher drives rofi in dmenu mode or dmenu itself. rofi reports the
// selected row index; dmenu echoes the label, so labels are made unique.
type dmenuLauncher struct {
	command string
	rofi    bool
}

func (l *dmenuLauncher) Show(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}
	shown := append([]Item(nil), items...)
	input, active := l.formatInput(shown)

	cmd := exec.Command(l.command, l.args(prompt, active)...)
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parseSelection(selection, shown)
}

func (l *dmenuLauncher) args(prompt string, active int) []string {
	if !l.rofi {
		args := []string{"-i", "-l", "20"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}
	args := []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-show-icons"}
	if prompt != "" {
		args = append(args, "-p", prompt)
	}
	if active >= 0 {
		idx := strconv.Itoa(active)
		args = append(args, "-a", idx, "-selected-row", idx)
	}
	return args
}

// formatInput renders one line per item and returns the index of the first
// active item, or -1.
func (l *dmenuLauncher) formatInput(items []Item) (string, int) {
	if !l.rofi {
		seen := make(map[string]int)
		for i := range items {
			key := sanitizeLabel(items[i].Label)
			if n := seen[key]; n > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
			}
			seen[key]++
		}
	}

	active := -1
	lines := make([]string, 0, len(items))
	for i, item := range items {
		if item.IsActive && active == -1 {
			active = i
		}
		lines = append(lines, l.formatItem(item))
	}
	return strings.Join(lines, "\n"), active
}

// formatItem appends rofi row properties after a single NUL, separated by \x1f.
func (l *dmenuLauncher) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if !l.rofi {
		return display
	}
	var attrs []string
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if item.Meta != "" {
		attrs = append(attrs, "meta", sanitizeRofiField(item.Meta))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *dmenuLauncher) parseSelection(selection string, items []Item) (Item, error) {
	if l.rofi {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

// isCancelExit reports the "no selection" (1) and Ctrl+C (130) exits.
func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
