//go:build !windows

package hotkeys

import (
	"errors"
	"log/slog"
)

// Hook is inert on non-Windows targets.
type Hook struct{}

// NewHook creates an idle hook.
func NewHook() *Hook {
	return &Hook{}
}

// Start always fails with ErrUnsupported.
func (h *Hook) Start(handler HandlerFunc) error {
	if handler == nil {
		return errors.New("hook handler is required")
	}
	slog.Warn("[DEBUG-HOOK] low-level keyboard hooks are not supported on this platform")
	return ErrUnsupported
}

// Done returns nil; the hook never runs.
func (h *Hook) Done() <-chan struct{} {
	return nil
}

// Stop is a no-op.
func (h *Hook) Stop() error {
	return nil
}
