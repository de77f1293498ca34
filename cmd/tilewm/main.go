// Command tilewm runs the tiling compositor and talks to a running instance.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/tilewm/internal/config"
)

var version = "dev"

// Global flags
var (
	configPath string
	logLevel   string
)

// logLevelVar lets a config reload change the level of the installed handler.
var logLevelVar = new(slog.LevelVar)

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "tilewm",
		Short: "Tiling window manager for X11",
		Long: `tilewm - a tiling window manager

New windows split the cell of the focused tiled window in half. Closed
windows hand their cell back to a neighbour. Windows can be toggled between
tiled and untiled, and moved or resized with modifier+drag.`,
		Example: `  # Run as the window manager of the current X display
  tilewm run

  # Run without a display for testing
  tilewm run --backend headless

  # Split the next window top/bottom
  tilewm split vertical`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := os.Getenv("TILEWM_LOG_LEVEL")
			if logLevel != "" {
				level = logLevel
			}
			initLogger(config.ParseLevel(level))
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default $TILEWM_CONFIG or $XDG_CONFIG_HOME/tilewm/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warning, error")

	rootCmd.AddCommand(
		newRunCmd(),
		newStatusCmd(),
		newWindowsCmd(),
		newSplitCmd(),
		newWindowCmd("toggle", "Toggle a window between tiled and untiled", func(c ipcClient, id uint32) error { return c.ToggleTiling(id) }),
		newWindowCmd("close", "Ask a window to close", func(c ipcClient, id uint32) error { return c.CloseWindow(id) }),
		newWindowCmd("focus", "Raise and focus a window", func(c ipcClient, id uint32) error { return c.FocusWindow(id) }),
		newReloadCmd(),
		newConfigCmd(),
		newMCPCmd(),
		newTopCmd(),
		newPaletteCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initLogger(level slog.Level) {
	logLevelVar.Set(level)
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level:   logLevelVar,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	})))
}

// resolveConfigPath returns --config, else the default location.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultConfigPath()
}
