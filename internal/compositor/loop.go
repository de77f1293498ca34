package compositor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/window"
)

var (
	// ErrQuit is returned by Run after a quit action.
	ErrQuit = errors.New("quit requested")
	// ErrBackendClosed is returned by Run when the backend stops delivering events.
	ErrBackendClosed = errors.New("backend event stream closed")
	// ErrNoSuchWindow is returned for commands naming an unknown window.
	ErrNoSuchWindow = errors.New("no such window")
	// ErrNotToggleable is returned when a window cannot change tiling state now.
	ErrNotToggleable = errors.New("window cannot change tiling state")
	// ErrLoopStopped is returned by commands issued after Run returned.
	ErrLoopStopped = errors.New("compositor loop is not running")
)

// Loop runs a State on a single goroutine. Other goroutines reach the state
// only through commands executed between event dispatches.
type Loop struct {
	state   *State
	backend platform.Backend
	log     *slog.Logger
	cmds    chan func(*State)
	done    chan struct{}
	started time.Time
}

// NewLoop wraps state for use from Run.
func NewLoop(state *State) *Loop {
	return &Loop{
		state:   state,
		backend: state.backend,
		log:     state.log,
		cmds:    make(chan func(*State)),
		done:    make(chan struct{}),
		started: time.Now(),
	}
}

func (l *Loop) String() string { return "compositor" }

// Serve runs the loop until ctx is done, a quit action fires or the backend
// closes its event stream.
func (l *Loop) Serve(ctx context.Context) error {
	defer close(l.done)

	if err := l.backend.BindKeys(l.state.BoundSequences()); err != nil {
		l.log.Warn("failed to bind keys", "error", err)
	}
	l.state.Flush()
	events := l.backend.Events()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrBackendClosed
			}
			l.state.HandleEvent(ev)
			l.drainEvents(events)
		case fn := <-l.cmds:
			fn(l.state)
		}
		l.state.Flush()
		if l.state.Quitting() {
			l.log.Info("quit requested")
			return ErrQuit
		}
	}
}

// drainEvents dispatches the events already queued so one frame covers the batch.
func (l *Loop) drainEvents(events <-chan platform.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			l.state.HandleEvent(ev)
		default:
			return
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*State)) error {
	finished := make(chan struct{})
	cmd := func(s *State) {
		defer close(finished)
		fn(s)
	}
	select {
	case l.cmds <- cmd:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns a summary snapshot.
func (l *Loop) Status(ctx context.Context) (Status, error) {
	var st Status
	err := l.Do(ctx, func(s *State) {
		st = s.Status()
	})
	st.UptimeSecs = int64(time.Since(l.started).Seconds())
	return st, err
}

// Windows returns a snapshot of every window.
func (l *Loop) Windows(ctx context.Context) ([]WindowInfo, error) {
	var infos []WindowInfo
	err := l.Do(ctx, func(s *State) {
		infos = s.WindowInfos()
	})
	return infos, err
}

// SetSplit changes the split axis.
func (l *Loop) SetSplit(ctx context.Context, axis tiling.SplitAxis) error {
	return l.Do(ctx, func(s *State) {
		s.SetSplit(axis)
	})
}

// ToggleTiling requests a tiling state change for id.
func (l *Loop) ToggleTiling(ctx context.Context, id uint32) error {
	var result error
	err := l.Do(ctx, func(s *State) {
		if _, ok := s.windows.Get(window.ID(id)); !ok {
			result = fmt.Errorf("window %d: %w", id, ErrNoSuchWindow)
			return
		}
		if !s.RequestStateChange(window.ID(id)) {
			result = fmt.Errorf("window %d: %w", id, ErrNotToggleable)
		}
	})
	if err != nil {
		return err
	}
	return result
}

// CloseWindow asks the client owning id to close.
func (l *Loop) CloseWindow(ctx context.Context, id uint32) error {
	var result error
	err := l.Do(ctx, func(s *State) {
		if !s.closeWindow(window.ID(id)) {
			result = fmt.Errorf("window %d: %w", id, ErrNoSuchWindow)
		}
	})
	if err != nil {
		return err
	}
	return result
}

// FocusWindow raises and focuses id.
func (l *Loop) FocusWindow(ctx context.Context, id uint32) error {
	var result error
	err := l.Do(ctx, func(s *State) {
		if !s.Activate(window.ID(id)) {
			result = fmt.Errorf("window %d: %w", id, ErrNoSuchWindow)
		}
	})
	if err != nil {
		return err
	}
	return result
}

// Prune forgets windows whose clients vanished without a destroy event. It
// returns the pruned ids.
func (l *Loop) Prune(ctx context.Context, alive func(uint32) bool) ([]uint32, error) {
	var pruned []uint32
	err := l.Do(ctx, func(s *State) {
		for _, w := range s.windows.All() {
			if !alive(uint32(w.ID)) {
				pruned = append(pruned, uint32(w.ID))
				s.handleDestroyed(w.ID)
			}
		}
	})
	return pruned, err
}

// Configure applies new settings from a reloaded config. Existing windows
// keep their geometry; the new values apply to later placements.
func (l *Loop) Configure(ctx context.Context, opts Options) error {
	return l.Do(ctx, func(s *State) {
		s.Reconfigure(opts)
	})
}
