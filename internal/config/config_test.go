package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/tilewm/internal/compositor"
	"github.com/1broseidon/tilewm/internal/tiling"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if len(cfg.KeyBindings) != len(compositor.ActionNames()) {
		t.Fatalf("expected a binding per action, got %v", cfg.KeyBindings)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.Tiling.Tolerance != tiling.DefaultTolerance {
		t.Fatalf("expected default tolerance, got %d", res.Config.Tiling.Tolerance)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Backend != "x11" || res.Config.ReconcileInterval != 5*time.Second {
		t.Fatalf("unexpected config %+v", res.Config)
	}
}

func TestLoadFromPath_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"backend: headless",
		"tiling:",
		"  default_split: vertical",
		"decorations:",
		"  header_height: 30",
		"keybindings:",
		"  quit: Mod4-Shift-q",
		"reconcile_interval: 2s",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Backend != "headless" || cfg.Tiling.DefaultSplit != "vertical" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Tiling.Tolerance != tiling.DefaultTolerance {
		t.Fatalf("tolerance default lost: %d", cfg.Tiling.Tolerance)
	}
	if cfg.Decorations.HeaderHeight != 30 || cfg.Decorations.ButtonWidth != 25 || !cfg.Decorations.Enabled {
		t.Fatalf("unexpected decorations %+v", cfg.Decorations)
	}
	if cfg.KeyBindings["quit"] != "Mod4-Shift-q" || cfg.KeyBindings["split_vertical"] != "Mod4-v" {
		t.Fatalf("bindings not merged: %v", cfg.KeyBindings)
	}
	if cfg.ReconcileInterval != 2*time.Second {
		t.Fatalf("expected 2s, got %s", cfg.ReconcileInterval)
	}

	opts := cfg.CompositorOptions(nil)
	if opts.Split != tiling.Vertical || opts.Header.Height != 30 {
		t.Fatalf("unexpected compositor options %+v", opts)
	}
	if opts.Bindings["Mod4-Shift-q"] != compositor.ActionQuit {
		t.Fatalf("quit binding missing: %v", opts.Bindings)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	if _, err := LoadFromPath(writeConfig(t, "gap_size: 4\n")); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, "log_level: info\ntiling:\n  tolerance: -1\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "tiling.tolerance" {
		t.Fatalf("unexpected path %q", verr.Path)
	}
	if verr.Source.File != path || verr.Source.Line != 3 {
		t.Fatalf("unexpected source %+v", verr.Source)
	}
	if !strings.Contains(err.Error(), path+":3:") {
		t.Fatalf("error should carry the position: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"backend", func(c *Config) { c.Backend = "wayland" }, "backend"},
		{"terminal", func(c *Config) { c.Terminal = " " }, "terminal"},
		{"split", func(c *Config) { c.Tiling.DefaultSplit = "diagonal" }, "tiling.default_split"},
		{"header", func(c *Config) { c.Decorations.HeaderHeight = 0 }, "decorations.header_height"},
		{"color", func(c *Config) { c.Decorations.Colors.Hover = "blue" }, "decorations.colors.hover"},
		{"band", func(c *Config) { c.Grab.LeftRightBand = -1 }, "grab.left_right_band"},
		{"modifier", func(c *Config) { c.Grab.Modifier = "Super" }, "grab.modifier"},
		{"action", func(c *Config) { c.KeyBindings["fly"] = "Mod4-f" }, "keybindings.fly"},
		{"duplicate binding", func(c *Config) { c.KeyBindings["quit"] = "Mod4-b" }, "keybindings.split_horizontal"},
		{"output size", func(c *Config) { c.Outputs.Headless[0].Width = 0 }, "outputs.headless[0]"},
		{"http listen", func(c *Config) { c.HTTP.Enabled = true; c.HTTP.Listen = "" }, "http.listen"},
		{"interval", func(c *Config) { c.ReconcileInterval = -time.Second }, "reconcile_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q (%v)", tt.path, verr.Path, err)
			}
		})
	}
}

func TestPlatformOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Decorations.Colors.Active = "#112233"
	opts := cfg.PlatformOptions(nil)
	if opts.Palette.Active != 0x112233 {
		t.Fatalf("unexpected active color %#x", opts.Palette.Active)
	}
	if len(opts.Outputs) != 1 || opts.Outputs[0].Geometry.Width != 1920 {
		t.Fatalf("unexpected outputs %+v", opts.Outputs)
	}
	if opts.Modifier != "Mod4" {
		t.Fatalf("unexpected modifier %q", opts.Modifier)
	}
}

func TestSaveTo_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Terminal = "alacritty"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Terminal != "alacritty" || res.Config.ReconcileInterval != 5*time.Second {
		t.Fatalf("unexpected reloaded config %+v", res.Config)
	}
}

func TestDefaultConfigPath_Env(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	path, err := DefaultConfigPath()
	if err != nil || path != "/tmp/custom.yaml" {
		t.Fatalf("expected env override, got %q err=%v", path, err)
	}
}
