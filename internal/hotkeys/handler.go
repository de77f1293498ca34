// Package hotkeys grabs global key sequences on the X11 root window.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Handler manages global keyboard shortcuts
type Handler struct {
	xu    *xgbutil.XUtil
	root  xproto.Window
	log   *slog.Logger
	fire  func(sequence string)
	bound []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler that calls fire with the sequence
// string of every bound key press.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, logger *slog.Logger, fire func(sequence string)) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		xu:   xu,
		root: root,
		log:  logger.With("component", "hotkeys"),
		fire: fire,
	}
}

// Bind replaces every key grab on the root window with sequences. A sequence
// that fails to grab is logged and skipped; the rest stay bound.
func (h *Handler) Bind(sequences []string) error {
	xproto.UngrabKey(h.xu.Conn(), xproto.GrabAny, h.root, xproto.ModMaskAny)
	keybind.Detach(h.xu, h.root)
	h.bound = h.bound[:0]

	var failed int
	for _, seq := range sequences {
		if err := h.RegisterFunc(seq); err != nil {
			h.log.Warn("failed to bind key", "sequence", seq, "error", err)
			failed++
			continue
		}
		h.bound = append(h.bound, seq)
	}
	if failed > 0 && failed == len(sequences) {
		return fmt.Errorf("none of %d key sequences could be bound", failed)
	}
	h.log.Debug("keys bound", "count", len(h.bound))
	return nil
}

// RegisterFunc grabs one key sequence.
func (h *Handler) RegisterFunc(keySequence string) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.fire(keySequence)
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
