package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tilewm/internal/compositor"
)

type tickMsg time.Time

type snapshotMsg struct {
	status  *compositor.Status
	windows []compositor.WindowInfo
	err     error
}

type actionMsg struct {
	err error
}

// model is the root bubbletea model for top.
type model struct {
	src      Source
	interval time.Duration

	status   *compositor.Status
	windows  []compositor.WindowInfo
	selected int
	lastErr  string

	width  int
	height int
}

func newModel(src Source, interval time.Duration) model {
	if interval <= 0 {
		interval = time.Second
	}
	return model{src: src, interval: interval}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) fetch() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		st, err := src.GetStatus()
		if err != nil {
			return snapshotMsg{err: err}
		}
		data, err := src.ListWindows()
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{status: st, windows: data.Windows}
	}
}

func (m model) act(fn func(uint32) error) tea.Cmd {
	if m.selected < 0 || m.selected >= len(m.windows) {
		return nil
	}
	id := m.windows[m.selected].ID
	return func() tea.Msg { return actionMsg{err: fn(id)} }
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.windows)-1 {
				m.selected++
			}
		case "t":
			return m, m.act(m.src.ToggleTiling)
		case "f", "enter":
			return m, m.act(m.src.FocusWindow)
		case "x":
			return m, m.act(m.src.CloseWindow)
		case "r":
			return m, m.fetch()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())

	case snapshotMsg:
		if msg.err != nil {
			m.status = nil
			m.windows = nil
			m.lastErr = msg.err.Error()
			return m, nil
		}
		m.lastErr = ""
		m.status = msg.status
		m.windows = msg.windows
		if m.selected >= len(m.windows) {
			m.selected = max(len(m.windows)-1, 0)
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		return m, m.fetch()
	}
	return m, nil
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	helpBar := renderHelpBar(m.width)
	var errLine string
	if m.lastErr != "" {
		errLine = errStyle.Render(truncate(m.lastErr, m.width))
	}

	used := lipgloss.Height(statusBar) + lipgloss.Height(helpBar)
	if errLine != "" {
		used += lipgloss.Height(errLine)
	}
	contentHeight := max(m.height-used, 1)

	tableWidth := m.width
	var mapLines []string
	if m.status != nil && len(m.status.Outputs) > 0 && m.width >= 80 {
		mapWidth := m.width / 3
		tableWidth = m.width - mapWidth - 1
		mapLines = renderMinimap(m.status.Outputs[0].Geometry, m.windows, m.selectedID(), mapWidth, min(contentHeight, mapWidth/2))
	}
	table := renderTable(m.windows, m.selected, tableWidth, contentHeight)

	content := table
	if mapLines != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, table, " ", strings.Join(mapLines, "\n"))
	}
	content = lipgloss.NewStyle().Height(contentHeight).Render(content)

	parts := []string{statusBar, content}
	if errLine != "" {
		parts = append(parts, errLine)
	}
	parts = append(parts, helpBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m model) selectedID() uint32 {
	if m.selected < 0 || m.selected >= len(m.windows) {
		return 0
	}
	return m.windows[m.selected].ID
}

func renderStatusBar(st *compositor.Status, width int) string {
	var status string
	if st != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		status = fmt.Sprintf("%s %s  split:%s  windows:%d (tiled %d, untiled %d)  focus:%d",
			dot, st.Backend, st.Split, st.Windows, st.Tiled, st.Untiled, st.Focus)
		if st.Grabbing {
			status += "  grab"
		}
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

func renderHelpBar(width int) string {
	help := "j/k: select  t: toggle tiling  f: focus  x: close  r: refresh  q: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

func renderTable(windows []compositor.WindowInfo, selected, width, height int) string {
	if len(windows) == 0 {
		return dimStyle.Render("no windows")
	}
	rows := []string{headerStyle.Render(fmt.Sprintf("%-8s %-22s %-20s %s", "ID", "STATE", "BOUNDS", "TITLE"))}
	start := 0
	if visible := height - 1; visible > 0 && selected >= visible {
		start = selected - visible + 1
	}
	for i := start; i < len(windows) && len(rows) < height; i++ {
		w := windows[i]
		state := w.State
		if w.Fixed {
			state += " fixed"
		}
		bounds := fmt.Sprintf("%dx%d+%d+%d", w.Bounds.Width, w.Bounds.Height, w.Bounds.X, w.Bounds.Y)
		line := truncate(fmt.Sprintf("%-8d %-22s %-20s %s", w.ID, state, bounds, w.Title), width)
		switch {
		case i == selected:
			line = selectedStyle.Render(line)
		case w.Focused:
			line = focusStyle.Render(line)
		case !w.Mapped:
			line = dimStyle.Render(line)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
