package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/tilewm/internal/decoration"
	"github.com/1broseidon/tilewm/internal/tiling"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

var (
	// ErrUnknownWindow is returned for operations on windows the backend does not manage.
	ErrUnknownWindow = errors.New("unknown window")
	// ErrAnotherWM is returned when another window manager owns the display.
	ErrAnotherWM = errors.New("another window manager is already running")
)

// Output describes a physical display.
type Output struct {
	Name     string
	Geometry tiling.Rect
}

// Configure is the state proposed to a client.
type Configure struct {
	Size      tiling.Size
	Activated bool
	Resizing  bool
	// HeaderHeight is the title bar drawn above the content, zero for none.
	HeaderHeight int
}

// RenderItem is one drawable element, already positioned.
type RenderItem struct {
	ID           WindowID
	Title        string
	Location     tiling.Point
	Size         tiling.Size
	HeaderHeight int
	Activated    bool
	Tiled        bool
	Hover        decoration.Hover
}

// Frame is the full scene for one redraw, back to front.
type Frame struct {
	Items []RenderItem
	Focus WindowID
}

// Backend is the capability set the compositor needs from a display system.
type Backend interface {
	// Name identifies the variant ("x11", "headless").
	Name() string
	SeatName() string
	Outputs() ([]Output, error)
	// Events delivers decoded transport and input events.
	Events() <-chan Event
	// Configure proposes a new state and returns its serial.
	Configure(id WindowID, c Configure) (uint32, error)
	Close(id WindowID) error
	SetKeyboardFocus(id WindowID) error
	// SetPointerGrab routes all pointer input to the compositor while active.
	SetPointerGrab(active bool) error
	BindKeys(sequences []string) error
	Render(frame Frame) error
	// Run pumps events until ctx is done or the display connection fails.
	Run(ctx context.Context) error
	Shutdown()
}

// PointerForwarder is implemented by backends that deliver pointer input to
// clients themselves instead of relying on the display server.
type PointerForwarder interface {
	ForwardMotion(id WindowID, local tiling.PointF, time uint32)
	ForwardButton(id WindowID, button uint32, pressed bool, serial, time uint32)
	ForwardAxis(id WindowID, horizontal, vertical float64, time uint32)
	ClearPointerFocus()
}

// Liveness is implemented by backends that can check whether a client is still around.
type Liveness interface {
	Alive(id WindowID) bool
}

// Kind selects a backend variant at startup.
type Kind int

const (
	KindX11 Kind = iota
	KindHeadless
)

func (k Kind) String() string {
	switch k {
	case KindX11:
		return "x11"
	case KindHeadless:
		return "headless"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a config or flag value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "x11":
		return KindX11, nil
	case "headless":
		return KindHeadless, nil
	default:
		return KindX11, fmt.Errorf("unknown backend %q (expected x11 or headless)", s)
	}
}

// Options carries the settings backend variants need.
type Options struct {
	Header  decoration.Header
	Palette decoration.Palette
	// Outputs seeds the headless backend.
	Outputs []Output
	// Modifier is the X11 modifier that turns a click into a move or resize.
	Modifier string
	Logger   *slog.Logger
}

// New creates the backend variant for kind.
func New(kind Kind, opts Options) (Backend, error) {
	switch kind {
	case KindX11:
		return newX11Backend(opts)
	case KindHeadless:
		return NewHeadless(opts.Outputs), nil
	default:
		return nil, fmt.Errorf("unsupported backend %s", kind)
	}
}
