// Package httpapi exposes the compositor controls over a small JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/1broseidon/tilewm/internal/compositor"
	"github.com/1broseidon/tilewm/internal/ipc"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the API on a TCP address.
type Server struct {
	addr   string
	ctrl   ipc.Controller
	log    *slog.Logger
	router chi.Router

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a server for addr, e.g. "127.0.0.1:7878".
func NewServer(addr string, ctrl ipc.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr: addr,
		ctrl: ctrl,
		log:  logger.With("component", "http"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) String() string { return "http" }

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&logFormatter{log: s.log}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.getStatus)
		r.Get("/windows", s.getWindows)
		r.Post("/split/{axis}", s.postSplit)
		r.Route("/windows/{id}", func(r chi.Router) {
			r.Post("/toggle", s.windowAction(s.ctrl.ToggleTiling))
			r.Post("/close", s.windowAction(s.ctrl.CloseWindow))
			r.Post("/focus", s.windowAction(s.ctrl.FocusWindow))
		})
	})
	return r
}

// Serve listens until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.log.Info("listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		return ctx.Err()
	}
}

// Addr returns the bound address once Serve is listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.ctrl.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) getWindows(w http.ResponseWriter, r *http.Request) {
	windows, err := s.ctrl.Windows(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ipc.WindowsData{Windows: windows})
}

func (s *Server) postSplit(w http.ResponseWriter, r *http.Request) {
	axis, err := tiling.ParseSplitAxis(chi.URLParam(r, "axis"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if err := s.ctrl.SetSplit(r.Context(), axis); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) windowAction(fn func(context.Context, uint32) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil || id == 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid window id"})
			return
		}
		if err := fn(r.Context(), uint32(id)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, compositor.ErrNoSuchWindow):
		code = http.StatusNotFound
	case errors.Is(err, compositor.ErrNotToggleable):
		code = http.StatusConflict
	case errors.Is(err, compositor.ErrLoopStopped):
		code = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
