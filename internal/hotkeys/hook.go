package hotkeys

import "errors"

// ErrUnsupported is returned by Hook.Start on platforms without a
// system-wide keyboard hook.
var ErrUnsupported = errors.New("system-wide keyboard hook is only supported on Windows")

// ErrHookActive is returned when another Hook in this process is installed.
var ErrHookActive = errors.New("a keyboard hook is already installed in this process")

// KeyEvent is one key transition delivered by the hook.
type KeyEvent struct {
	Key     Key
	Pressed bool
	// Injected marks events synthesized by SendInput/keybd_event, including our own.
	Injected bool
}

// HandlerFunc inspects an event and reports whether it must be suppressed.
// It runs on the hook thread and blocks keyboard input system-wide while it
// executes.
type HandlerFunc func(ev KeyEvent) (suppress bool)
