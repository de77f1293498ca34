package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher calls onChange after the config file is written, created or
// replaced. Bursts of events within the debounce window collapse into one call.
type ConfigWatcher struct {
	path     string
	onChange func(ctx context.Context) error
	debounce time.Duration
	logger   *slog.Logger
}

// NewConfigWatcher creates a watcher for path.
func NewConfigWatcher(path string, onChange func(ctx context.Context) error, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		path:     path,
		onChange: onChange,
		debounce: 200 * time.Millisecond,
		logger:   logger.With("component", "config-watcher"),
	}
}

func (w *ConfigWatcher) String() string { return "config-watcher" }

// Serve watches until ctx is done. The parent directory is watched so that
// editors which replace the file by rename are noticed.
func (w *ConfigWatcher) Serve(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Debug("watching config", "path", w.path)

	target := filepath.Clean(w.path)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-fire:
			fire = nil
			w.logger.Info("config changed", "path", w.path)
			if err := w.onChange(ctx); err != nil {
				w.logger.Warn("config reload failed", "error", err)
			}
		}
	}
}
