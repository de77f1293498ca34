package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/tilewm/internal/compositor"
	"github.com/1broseidon/tilewm/internal/decoration"
	"github.com/1broseidon/tilewm/internal/grab"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"gopkg.in/yaml.v3"
)

// TilingConfig controls placement of new windows.
type TilingConfig struct {
	DefaultSplit string `yaml:"default_split"`
	Tolerance    int    `yaml:"tolerance"`
}

// Colors are #rrggbb title bar colors.
type Colors struct {
	Active   string `yaml:"active"`
	Inactive string `yaml:"inactive"`
	Hover    string `yaml:"hover"`
	Close    string `yaml:"close"`
}

// DecorationsConfig controls server-side title bars.
type DecorationsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	HeaderHeight int    `yaml:"header_height"`
	ButtonWidth  int    `yaml:"button_width"`
	Colors       Colors `yaml:"colors"`
}

// GrabConfig controls interactive move and resize.
type GrabConfig struct {
	TopBottomBand int    `yaml:"top_bottom_band"`
	LeftRightBand int    `yaml:"left_right_band"`
	Modifier      string `yaml:"modifier"`
}

// OutputConfig describes a fixed output for the headless backend.
type OutputConfig struct {
	Name   string `yaml:"name"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// OutputsConfig lists outputs per backend. Only headless reads them; X11
// discovers its monitors.
type OutputsConfig struct {
	Headless []OutputConfig `yaml:"headless"`
}

// HTTPConfig controls the optional HTTP API.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Config holds the application configuration.
type Config struct {
	LogLevel          string            `yaml:"log_level"`
	Backend           string            `yaml:"backend"`
	Terminal          string            `yaml:"terminal"`
	Tiling            TilingConfig      `yaml:"tiling"`
	Decorations       DecorationsConfig `yaml:"decorations"`
	Grab              GrabConfig        `yaml:"grab"`
	KeyBindings       map[string]string `yaml:"keybindings"`
	Outputs           OutputsConfig     `yaml:"outputs"`
	HTTP              HTTPConfig        `yaml:"http"`
	ReconcileInterval time.Duration     `yaml:"reconcile_interval"`
}

// ValidationError reports an invalid key. Source is filled in when the key
// came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func DefaultConfig() *Config {
	palette := decoration.DefaultPalette()
	bands := grab.DefaultBands()
	return &Config{
		LogLevel: "info",
		Backend:  "x11",
		Terminal: "xterm",
		Tiling: TilingConfig{
			DefaultSplit: "horizontal",
			Tolerance:    tiling.DefaultTolerance,
		},
		Decorations: DecorationsConfig{
			Enabled:      true,
			HeaderHeight: decoration.DefaultHeaderHeight,
			ButtonWidth:  decoration.DefaultButtonWidth,
			Colors: Colors{
				Active:   formatColor(palette.Active),
				Inactive: formatColor(palette.Inactive),
				Hover:    formatColor(palette.Hover),
				Close:    formatColor(palette.Close),
			},
		},
		Grab: GrabConfig{
			TopBottomBand: bands.TopBottom,
			LeftRightBand: bands.LeftRight,
			Modifier:      "Mod4",
		},
		KeyBindings: defaultKeyBindings(),
		Outputs: OutputsConfig{
			Headless: []OutputConfig{{Name: "HEADLESS-1", Width: 1920, Height: 1080}},
		},
		HTTP: HTTPConfig{
			Listen: "127.0.0.1:7878",
		},
		ReconcileInterval: 5 * time.Second,
	}
}

func defaultKeyBindings() map[string]string {
	out := make(map[string]string)
	for seq, action := range compositor.DefaultBindings() {
		out[action.String()] = seq
	}
	return out
}

func formatColor(pixel uint32) string {
	return fmt.Sprintf("#%06x", pixel)
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if _, err := platform.ParseKind(c.Backend); err != nil {
		return &ValidationError{Path: "backend", Err: err}
	}
	if strings.TrimSpace(c.Terminal) == "" {
		return &ValidationError{Path: "terminal", Err: fmt.Errorf("terminal must not be empty")}
	}
	if _, err := tiling.ParseSplitAxis(c.Tiling.DefaultSplit); err != nil {
		return &ValidationError{Path: "tiling.default_split", Err: err}
	}
	if c.Tiling.Tolerance < 0 {
		return &ValidationError{Path: "tiling.tolerance", Err: fmt.Errorf("tolerance must be >= 0")}
	}
	if c.Decorations.HeaderHeight < 1 {
		return &ValidationError{Path: "decorations.header_height", Err: fmt.Errorf("header_height must be >= 1")}
	}
	if c.Decorations.ButtonWidth < 1 {
		return &ValidationError{Path: "decorations.button_width", Err: fmt.Errorf("button_width must be >= 1")}
	}
	colors := []struct {
		key, value string
	}{
		{"active", c.Decorations.Colors.Active},
		{"inactive", c.Decorations.Colors.Inactive},
		{"hover", c.Decorations.Colors.Hover},
		{"close", c.Decorations.Colors.Close},
	}
	for _, col := range colors {
		if _, err := decoration.ParseColor(col.value); err != nil {
			return &ValidationError{Path: "decorations.colors." + col.key, Err: err}
		}
	}
	if c.Grab.TopBottomBand < 0 {
		return &ValidationError{Path: "grab.top_bottom_band", Err: fmt.Errorf("top_bottom_band must be >= 0")}
	}
	if c.Grab.LeftRightBand < 0 {
		return &ValidationError{Path: "grab.left_right_band", Err: fmt.Errorf("left_right_band must be >= 0")}
	}
	switch c.Grab.Modifier {
	case "Shift", "Control", "Mod1", "Mod2", "Mod3", "Mod4", "Mod5":
	default:
		return &ValidationError{Path: "grab.modifier", Err: fmt.Errorf("modifier must be one of: Shift, Control, Mod1..Mod5")}
	}
	seen := make(map[string]string)
	for _, action := range sortedKeys(c.KeyBindings) {
		seq := c.KeyBindings[action]
		if _, err := compositor.ParseAction(action); err != nil {
			return &ValidationError{Path: "keybindings." + action, Err: err}
		}
		if strings.TrimSpace(seq) == "" {
			return &ValidationError{Path: "keybindings." + action, Err: fmt.Errorf("key sequence must not be empty")}
		}
		if other, dup := seen[seq]; dup {
			return &ValidationError{Path: "keybindings." + action, Err: fmt.Errorf("%q is already bound to %s", seq, other)}
		}
		seen[seq] = action
	}
	names := make(map[string]bool)
	for i, o := range c.Outputs.Headless {
		path := fmt.Sprintf("outputs.headless[%d]", i)
		if strings.TrimSpace(o.Name) == "" {
			return &ValidationError{Path: path, Err: fmt.Errorf("output name is required")}
		}
		if names[o.Name] {
			return &ValidationError{Path: path, Err: fmt.Errorf("duplicate output %q", o.Name)}
		}
		names[o.Name] = true
		if o.Width < 1 || o.Height < 1 {
			return &ValidationError{Path: path, Err: fmt.Errorf("width and height must be >= 1")}
		}
	}
	if c.HTTP.Enabled && strings.TrimSpace(c.HTTP.Listen) == "" {
		return &ValidationError{Path: "http.listen", Err: fmt.Errorf("listen address is required when http is enabled")}
	}
	if c.ReconcileInterval < 0 {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 0")}
	}
	return nil
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps debug, info, warning and error to slog levels. Anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Palette converts the configured colors. Validate must have passed.
func (c *Config) Palette() decoration.Palette {
	p := decoration.DefaultPalette()
	if v, err := decoration.ParseColor(c.Decorations.Colors.Active); err == nil {
		p.Active = v
	}
	if v, err := decoration.ParseColor(c.Decorations.Colors.Inactive); err == nil {
		p.Inactive = v
	}
	if v, err := decoration.ParseColor(c.Decorations.Colors.Hover); err == nil {
		p.Hover = v
	}
	if v, err := decoration.ParseColor(c.Decorations.Colors.Close); err == nil {
		p.Close = v
	}
	return p
}

// CompositorOptions builds the compositor settings. Validate must have passed.
func (c *Config) CompositorOptions(logger *slog.Logger) compositor.Options {
	opts := compositor.DefaultOptions()
	opts.Header = decoration.Header{Height: c.Decorations.HeaderHeight, ButtonWidth: c.Decorations.ButtonWidth}
	opts.Bands = grab.Bands{TopBottom: c.Grab.TopBottomBand, LeftRight: c.Grab.LeftRightBand}
	opts.Tolerance = c.Tiling.Tolerance
	if axis, err := tiling.ParseSplitAxis(c.Tiling.DefaultSplit); err == nil {
		opts.Split = axis
	}
	opts.Decorations = c.Decorations.Enabled
	opts.Terminal = c.Terminal
	opts.Logger = logger

	opts.Bindings = make(map[string]compositor.Action, len(c.KeyBindings))
	for name, seq := range c.KeyBindings {
		if action, err := compositor.ParseAction(name); err == nil {
			opts.Bindings[seq] = action
		}
	}
	return opts
}

// PlatformOptions builds the backend settings. Validate must have passed.
func (c *Config) PlatformOptions(logger *slog.Logger) platform.Options {
	outputs := make([]platform.Output, 0, len(c.Outputs.Headless))
	for _, o := range c.Outputs.Headless {
		outputs = append(outputs, platform.Output{
			Name:     o.Name,
			Geometry: tiling.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height},
		})
	}
	return platform.Options{
		Header:   decoration.Header{Height: c.Decorations.HeaderHeight, ButtonWidth: c.Decorations.ButtonWidth},
		Palette:  c.Palette(),
		Outputs:  outputs,
		Modifier: c.Grab.Modifier,
		Logger:   logger,
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveTo writes the configuration to path, creating parent directories.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
