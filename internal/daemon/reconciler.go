// Package daemon holds the background services that run next to the
// compositor loop: the liveness reconciler, the config watcher and the
// supervisor that keeps them running.
package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Pruner forgets windows for which alive reports false and returns their ids.
// compositor.Loop.Prune implements it.
type Pruner func(ctx context.Context, alive func(uint32) bool) ([]uint32, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops windows whose clients vanished without a
// destroy notification.
type Reconciler struct {
	interval time.Duration
	prune    Pruner
	alive    func(uint32) bool
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
// alive is asked about every known window on each pass.
func NewReconciler(cfg ReconcilerConfig, prune Pruner, alive func(uint32) bool) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		prune:    prune,
		alive:    alive,
		logger:   logger.With("component", "reconciler"),
	}
}

func (r *Reconciler) String() string { return "reconciler" }

// Serve starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) []uint32 {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	pruned, err := r.prune(ctx, r.alive)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("reconciler: prune failed", "error", err)
		}
		return nil
	}
	for _, id := range pruned {
		r.logger.Info("reconciler: dropped vanished window", "window_id", id)
	}
	return pruned
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) []uint32 {
	return r.reconcile(ctx)
}
