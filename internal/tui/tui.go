// Package tui implements "tilewm top": a live view of the managed windows
// with a minimap of their placement.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/tilewm/internal/ipc"
)

// Source is the daemon surface the view polls. ipc.Client implements it.
type Source interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	ToggleTiling(id uint32) error
	FocusWindow(id uint32) error
	CloseWindow(id uint32) error
}

// Run starts the view, blocking until the user quits.
func Run(src Source, interval time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("top requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(src, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
