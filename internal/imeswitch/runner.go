// Package imeswitch runs the background input-method daemon: it resets the
// layout to English on focus changes and on Ctrl+Esc / Ctrl+[, and keeps a
// Chinese IME in native conversion mode.
package imeswitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fncaps/internal/hotkeys"
	"fncaps/internal/workerutil"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	MinPollInterval     = 10 * time.Millisecond
)

// Options toggles the daemon's loops.
type Options struct {
	IMEResetting     bool
	EscapeSwitching  bool
	EnsureNativeMode bool
	PollInterval     time.Duration
}

// Switcher is the subset of ime.Toggler the daemon drives.
type Switcher interface {
	ResetToEnglish() error
	EnsureNativeMode() (bool, error)
}

// KeyHook delivers system-wide key events; hotkeys.Hook satisfies it.
type KeyHook interface {
	Start(handler hotkeys.HandlerFunc) error
	Stop() error
}

// Runner owns the daemon loops.
type Runner struct {
	opts       Options
	switcher   Switcher
	foreground func() uintptr
	hook       KeyHook

	detectorMu sync.Mutex
	detector   EscapeDetector
	escapes    chan struct{}
}

// NewRunner clamps the poll interval to MinPollInterval. hook may be nil
// when escape switching is disabled.
func NewRunner(opts Options, switcher Switcher, foreground func() uintptr, hook KeyHook) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	return &Runner{
		opts:       opts,
		switcher:   switcher,
		foreground: foreground,
		hook:       hook,
		escapes:    make(chan struct{}, 1),
	}
}

// Run blocks until ctx is done. It fails only when the escape hook cannot
// be installed; the polling loops start regardless.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()

	started := 0
	if r.opts.EnsureNativeMode {
		workerutil.RunWithPanicRecovery(ctx, "ime-native-guard", &wg, r.runNativeModeGuard, workerutil.RecoveryOptions{})
		started++
	}
	if r.opts.IMEResetting {
		workerutil.RunWithPanicRecovery(ctx, "ime-focus-reset", &wg, r.runFocusReset, workerutil.RecoveryOptions{})
		started++
	}

	var hookErr error
	if r.opts.EscapeSwitching {
		if r.hook == nil {
			hookErr = errors.New("escape switching requires a keyboard hook")
		} else if err := r.hook.Start(r.handleKey); err != nil {
			hookErr = fmt.Errorf("start escape listener: %w", err)
		} else {
			defer func() {
				if err := r.hook.Stop(); err != nil {
					slog.Warn("[DEBUG-IME] escape listener stop failed", "error", err)
				}
			}()
			workerutil.RunWithPanicRecovery(ctx, "ime-escape", &wg, r.runEscapeConsumer, workerutil.RecoveryOptions{})
			started++
		}
	}

	if started == 0 {
		slog.Error("[DEBUG-IME] imeswitch has no active loops")
	}
	if hookErr != nil {
		slog.Error("[DEBUG-IME] escape switching disabled", "error", hookErr)
	}

	<-ctx.Done()
	return hookErr
}

// handleKey runs on the hook thread and never suppresses.
func (r *Runner) handleKey(ev hotkeys.KeyEvent) bool {
	r.detectorMu.Lock()
	fired := r.detector.Observe(ev.Key, ev.Pressed)
	r.detectorMu.Unlock()
	if fired {
		select {
		case r.escapes <- struct{}{}:
		default:
		}
	}
	return false
}

func (r *Runner) runNativeModeGuard(ctx context.Context) {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed, err := r.switcher.EnsureNativeMode()
			if err != nil {
				slog.Debug("[DEBUG-IME] ensure native mode failed", "error", err)
			} else if changed {
				slog.Debug("[DEBUG-IME] switched IME to native mode")
			}
		}
	}
}

func (r *Runner) runFocusReset(ctx context.Context) {
	prev := r.foreground()
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := r.foreground()
			if now == prev {
				continue
			}
			prev = now
			slog.Info("[DEBUG-IME] foreground changed, reset to english ime")
			if err := r.switcher.ResetToEnglish(); err != nil {
				slog.Debug("[DEBUG-IME] reset to english failed", "error", err)
			}
		}
	}
}

func (r *Runner) runEscapeConsumer(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.escapes:
			slog.Info("[DEBUG-IME] escape chord, reset to english ime")
			if err := r.switcher.ResetToEnglish(); err != nil {
				slog.Debug("[DEBUG-IME] reset to english failed", "error", err)
			}
		}
	}
}
