package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tilewm/internal/compositor"
	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/daemon"
	"github.com/1broseidon/tilewm/internal/httpapi"
	"github.com/1broseidon/tilewm/internal/ipc"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/runtimepath"
)

func newRunCmd() *cobra.Command {
	var backendName string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the compositor in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), backendName)
		},
	}
	cmd.Flags().StringVar(&backendName, "backend", "", "Backend: x11 or headless (overrides config)")
	return cmd
}

func runDaemon(parent context.Context, backendName string) error {
	if parent == nil {
		parent = context.Background()
	}
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	cfg := res.Config
	if backendName != "" {
		cfg.Backend = backendName
	}
	if logLevel == "" {
		logLevelVar.Set(cfg.SlogLevel())
	}
	logger := slog.Default()
	if res.File == "" {
		logger.Info("no config file, using defaults", "path", path)
	}

	kind, err := platform.ParseKind(cfg.Backend)
	if err != nil {
		return err
	}
	backend, err := platform.New(kind, cfg.PlatformOptions(logger))
	if err != nil {
		return fmt.Errorf("failed to start %s backend: %w", kind, err)
	}
	defer backend.Shutdown()

	loop := compositor.NewLoop(compositor.New(backend, cfg.CompositorOptions(logger)))

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reload := func(ctx context.Context) error {
		res, err := config.LoadFromPath(path)
		if err != nil {
			return err
		}
		if logLevel == "" {
			logLevelVar.Set(res.Config.SlogLevel())
		}
		return loop.Configure(ctx, res.Config.CompositorOptions(logger))
	}

	sup := daemon.NewSupervisor("tilewm", logger)

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return err
	}
	daemon.Add(sup, ipc.NewServer(socketPath, loop, reload, logger))

	if cfg.HTTP.Enabled {
		daemon.Add(sup, httpapi.NewServer(cfg.HTTP.Listen, loop, logger))
	}

	if info, err := os.Stat(filepath.Dir(path)); err == nil && info.IsDir() {
		daemon.Add(sup, daemon.NewConfigWatcher(path, reload, logger))
	}

	if lv, ok := backend.(platform.Liveness); ok && cfg.ReconcileInterval > 0 {
		alive := func(id uint32) bool { return lv.Alive(platform.WindowID(id)) }
		daemon.Add(sup, daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: cfg.ReconcileInterval,
			Logger:   logger,
		}, loop.Prune, alive))
	}

	daemon.Add(sup, daemon.NewServiceFunc("sighup", func(ctx context.Context) error {
		return reloadOnHangup(ctx, reload, logger)
	}))

	supErr := sup.ServeBackground(ctx)

	go func() {
		if err := backend.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("backend stopped", "backend", backend.Name(), "error", err)
			cancel()
		}
	}()

	logger.Info("tilewm started", "backend", backend.Name(), "socket", socketPath, "version", version)
	err = loop.Serve(ctx)
	cancel()
	<-supErr

	switch {
	case err == nil, errors.Is(err, compositor.ErrQuit), errors.Is(err, context.Canceled):
		logger.Info("tilewm stopped")
		return nil
	default:
		return err
	}
}

// reloadOnHangup reloads the config on every SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, reload ipc.ReloadFunc, logger *slog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sigCh:
			logger.Info("SIGHUP received, reloading config")
			if err := reload(ctx); err != nil {
				logger.Warn("config reload failed", "error", err)
			}
		}
	}
}
