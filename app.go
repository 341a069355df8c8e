package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fncaps/internal/config"
	"fncaps/internal/hotkeys"
	"fncaps/internal/keystate"
	"fncaps/internal/notify"
	"fncaps/internal/workerutil"
)

const shutdownWaitTimeout = 3 * time.Second

// KeyMachine turns key transitions into decisions.
type KeyMachine interface {
	OnEvent(key hotkeys.Key, pressed bool) keystate.Decision
}

// ActionExecutor runs the side effect of a decision.
type ActionExecutor interface {
	Execute(action hotkeys.Action) error
}

// KeyHook installs the system-wide keyboard hook.
type KeyHook interface {
	Start(handler hotkeys.HandlerFunc) error
	Done() <-chan struct{}
	Stop() error
}

// App ties the hook, the key-event machine and the dispatcher together.
type App struct {
	machine  KeyMachine
	executor ActionExecutor
	hook     KeyHook
	notifier *notify.Notifier

	configPath string

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
	watcher  *config.Watcher
}

// NewApp wires the engine. configPath may be empty to skip the watcher.
func NewApp(machine KeyMachine, executor ActionExecutor, hook KeyHook, notifier *notify.Notifier, configPath string) *App {
	return &App{
		machine:    machine,
		executor:   executor,
		hook:       hook,
		notifier:   notifier,
		configPath: configPath,
	}
}

// handleKeyEvent runs on the hook thread. Injected events, including the
// ones the dispatcher synthesizes, never reach the machine.
func (a *App) handleKeyEvent(ev hotkeys.KeyEvent) bool {
	if ev.Injected {
		return false
	}
	decision := a.machine.OnEvent(ev.Key, ev.Pressed)
	if !decision.Action.IsNone() {
		slog.Debug("[DEBUG-DISPATCH] rule matched",
			"action", decision.Action.String(),
			"rule", decision.Rule,
		)
		// Execute logs its own failures; the suppress decision stands either way.
		_ = a.executor.Execute(decision.Action)
	}
	return decision.Suppress
}

// startup installs the hook and starts background workers. A hook failure
// is returned and nothing is left running.
func (a *App) startup(parent context.Context) error {
	if err := a.hook.Start(a.handleKeyEvent); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	a.bgCancel = cancel
	if a.configPath != "" {
		a.startConfigWatcher(ctx)
	}
	return nil
}

func (a *App) startConfigWatcher(ctx context.Context) {
	watcher, err := config.NewWatcher(a.configPath, func(path string) {
		slog.Warn("[WARN-CONFIG] config file changed, restart to apply", "path", path)
		a.notifier.ConfigChanged(path)
	})
	if err != nil {
		slog.Warn("[WARN-CONFIG] config watcher unavailable", "path", a.configPath, "error", err)
		return
	}
	a.watcher = watcher
	workerutil.RunWithPanicRecovery(ctx, "config-watcher", &a.bgWG, watcher.Run, workerutil.RecoveryOptions{
		IsShutdown: func() bool { return ctx.Err() != nil },
	})
}

// wait blocks until ctx is done or the hook message loop exits on its own.
func (a *App) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
		slog.Info("[DEBUG-HOOK] shutdown requested")
	case <-a.hook.Done():
		slog.Warn("[DEBUG-HOOK] hook message loop exited unexpectedly")
	}
}

func (a *App) shutdown() {
	if a.bgCancel != nil {
		a.bgCancel()
	}
	if err := a.hook.Stop(); err != nil {
		slog.Warn("[DEBUG-HOOK] hook stop failed", "error", err)
	}
	if !waitWithTimeout(a.bgWG.Wait, shutdownWaitTimeout) {
		slog.Warn("[DEBUG-PANIC] timed out waiting for background workers during shutdown")
	}
	// Run closes the watcher on cancellation; this covers a worker that gave up.
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			slog.Debug("[DEBUG-CONFIG] close watcher failed", "error", err)
		}
	}
}

func waitWithTimeout(waitFn func(), timeout time.Duration) bool {
	// The waiting goroutine may outlive timeout; this is only used at exit.
	done := make(chan struct{})
	go func() {
		waitFn()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
