// Package mcp serves the compositor controls as Model Context Protocol tools
// over stdio. It talks to a running daemon through the IPC socket.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tilewm/internal/ipc"
)

const (
	ServerName    = "tilewm"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools use. ipc.Client
// implements it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	SetSplit(axis string) error
	ToggleTiling(id uint32) error
	CloseWindow(id uint32) error
	FocusWindow(id uint32) error
}

// Server is the MCP server for tilewm.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	log       *slog.Logger
}

// NewServer creates a server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		log:    logger.With("component", "mcp"),
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves a single session on t.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Summarize the compositor: backend, split axis for the next placement, window counts, focused window and outputs.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows bottom of the stack first, with state, bounds and focus. Optionally filter by state.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_split",
		Description: "Set the axis used to split the cell of the next tiled window: horizontal (side by side) or vertical (stacked).",
	}, s.handleSetSplit)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_tiling",
		Description: "Flip a window between tiled and untiled. Fails for fixed-size windows and windows with a change already pending.",
	}, s.windowTool("toggled tiling", func(d Daemon, id uint32) error { return d.ToggleTiling(id) }))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Ask a window to close. The client may refuse or prompt.",
	}, s.windowTool("asked to close", func(d Daemon, id uint32) error { return d.CloseWindow(id) }))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Raise a window and give it keyboard focus.",
	}, s.windowTool("focused", func(d Daemon, id uint32) error { return d.FocusWindow(id) }))
}
