package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tilewm/internal/compositor"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/google/uuid"
)

// Controller is the compositor surface the server drives. compositor.Loop
// implements it.
type Controller interface {
	Status(ctx context.Context) (compositor.Status, error)
	Windows(ctx context.Context) ([]compositor.WindowInfo, error)
	SetSplit(ctx context.Context, axis tiling.SplitAxis) error
	ToggleTiling(ctx context.Context, id uint32) error
	CloseWindow(ctx context.Context, id uint32) error
	FocusWindow(ctx context.Context, id uint32) error
}

// ReloadFunc reloads the configuration and applies it.
type ReloadFunc func(ctx context.Context) error

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	ctrl       Controller
	reload     ReloadFunc
	log        *slog.Logger
	timeout    time.Duration

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a server bound to socketPath. reload may be nil, in
// which case RELOAD is refused.
func NewServer(socketPath string, ctrl Controller, reload ReloadFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		reload:     reload,
		log:        logger.With("component", "ipc"),
		timeout:    5 * time.Second,
	}
}

func (s *Server) String() string { return "ipc" }

// Serve listens on the socket until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	// Remove a stale socket left by a previous run.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.log.Info("listening", "socket", s.socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	defer os.Remove(s.socketPath)

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return ctx.Err()
			}
			s.log.Warn("accept failed", "error", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// Addr returns the socket path once Serve is listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.socketPath
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	log := s.log.With("conn", uuid.NewString())
	conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Debug("read failed", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.write(log, conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}
	log.Debug("request", "command", req.Command)

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.write(log, conn, s.handleCommand(reqCtx, req))
}

func (s *Server) write(log *slog.Logger, conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		log.Warn("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Debug("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		st, err := s.ctrl.Status(ctx)
		return respond(st, err)
	case CommandListWindows:
		windows, err := s.ctrl.Windows(ctx)
		return respond(WindowsData{Windows: windows}, err)
	case CommandSetSplit:
		var p SetSplitPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid split payload: %v", err))
		}
		axis, err := tiling.ParseSplitAxis(p.Axis)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return respond(nil, s.ctrl.SetSplit(ctx, axis))
	case CommandToggle, CommandClose, CommandFocus:
		var p WindowPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
		}
		if p.ID == 0 {
			return NewErrorResponse("id is required")
		}
		return respond(nil, s.windowCommand(ctx, req.Command, p.ID))
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) windowCommand(ctx context.Context, cmd CommandType, id uint32) error {
	switch cmd {
	case CommandToggle:
		return s.ctrl.ToggleTiling(ctx, id)
	case CommandClose:
		return s.ctrl.CloseWindow(ctx, id)
	default:
		return s.ctrl.FocusWindow(ctx, id)
	}
}

func (s *Server) handleReload(ctx context.Context) *Response {
	if s.reload == nil {
		return NewErrorResponse("reload is not available")
	}
	s.log.Info("reload requested")
	if err := s.reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func respond(data interface{}, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}
