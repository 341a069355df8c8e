// Package ime switches keyboard layouts and IME conversion modes of the
// foreground window.
package ime

import (
	"errors"
	"fmt"
	"log/slog"
)

const (
	// DefaultLocaleEN is en-US.
	DefaultLocaleEN uint32 = 1033
	// DefaultLocaleZH is zh-CN.
	DefaultLocaleZH uint32 = 2052

	// ModeNative is the conversion-mode bit for native (e.g. Chinese) input.
	ModeNative = 0x01
)

var (
	// ErrNoForeground means there is no foreground window to address.
	ErrNoForeground = errors.New("no foreground window")
	// ErrNoIMEWindow means the foreground window has no default IME window.
	ErrNoIMEWindow = errors.New("foreground window has no IME window")
	// ErrUnsupported is returned by the host off Windows.
	ErrUnsupported = errors.New("input method control is only supported on Windows")
)

// Host is the OS surface for input-method control. Every call addresses the
// current foreground window.
type Host interface {
	Foreground() uintptr
	// Layout returns the low word of the foreground thread's keyboard layout.
	Layout() (uint16, error)
	// RequestLayout posts WM_INPUTLANGCHANGEREQUEST; delivery does not
	// guarantee the target application switches.
	RequestLayout(locale uint32) error
	ConversionMode() (int, error)
	SetConversionMode(mode int) error
}

// Toggler flips the foreground window between two locales.
type Toggler struct {
	host Host
	en   uint32
	zh   uint32
}

// NewToggler returns a toggler between en and zh. Zero locales take the
// defaults.
func NewToggler(host Host, en, zh uint32) *Toggler {
	if en == 0 {
		en = DefaultLocaleEN
	}
	if zh == 0 {
		zh = DefaultLocaleZH
	}
	return &Toggler{host: host, en: en, zh: zh}
}

// Toggle requests zh when the current layout is en, and en otherwise
// (including when the layout cannot be read).
func (t *Toggler) Toggle() error {
	target := t.en
	current, err := t.host.Layout()
	if err != nil {
		slog.Debug("[DEBUG-IME] cannot read current layout", "error", err)
	} else if uint32(current) == t.en {
		target = t.zh
	}

	if err := t.host.RequestLayout(target); err != nil {
		return fmt.Errorf("request layout %d: %w", target, err)
	}
	slog.Info("[DEBUG-IME] posted layout change request", "from", current, "to", target)
	return nil
}

// ResetToEnglish requests the en locale.
func (t *Toggler) ResetToEnglish() error {
	if err := t.host.RequestLayout(t.en); err != nil {
		return fmt.Errorf("request layout %d: %w", t.en, err)
	}
	return nil
}

// EnsureNativeMode sets the native conversion bit when the foreground
// layout is zh and the IME currently sits in alphanumeric mode. It reports
// whether a change was requested.
func (t *Toggler) EnsureNativeMode() (bool, error) {
	layout, err := t.host.Layout()
	if err != nil || uint32(layout) != t.zh {
		return false, nil
	}
	mode, err := t.host.ConversionMode()
	if err != nil {
		return false, nil
	}
	if mode&ModeNative != 0 {
		return false, nil
	}
	if err := t.host.SetConversionMode(ModeNative); err != nil {
		return false, fmt.Errorf("set conversion mode: %w", err)
	}
	return true, nil
}
