// Package dispatch executes the side effect of a resolved hotkey action.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"

	"fncaps/internal/hotkeys"
	"fncaps/internal/workerutil"
)

// WheelDelta is one wheel notch.
const WheelDelta = 120

// WindowSwitcher focuses windows by direction or title.
type WindowSwitcher interface {
	SwitchDirection(dir hotkeys.Direction) error
	SwitchToTitle(title string) error
	SwitchOrOpen(title, program string) error
}

// IMEToggler flips the foreground input locale.
type IMEToggler interface {
	Toggle() error
}

// ProgramLauncher starts a program without waiting for it.
type ProgramLauncher interface {
	Open(program string) error
}

// Input synthesizes keyboard and wheel events and reads OS key state.
type Input interface {
	IsDown(key hotkeys.Key) bool
	KeyDown(key hotkeys.Key) error
	KeyUp(key hotkeys.Key) error
	Wheel(delta int) error
}

// Deps are the collaborators behind each action kind. Nil members make the
// matching actions fail with an error instead of panicking.
type Deps struct {
	Windows  WindowSwitcher
	IME      IMEToggler
	Launcher ProgramLauncher
	Input    Input
	// Secondary is the key released around synthesized wheel events.
	Secondary hotkeys.Key
}

// Dispatcher maps actions to side effects. Each Execute call is isolated:
// a panic or error is logged and returned, never propagated further.
type Dispatcher struct {
	deps Deps
}

// New creates a dispatcher over deps.
func New(deps Deps) *Dispatcher {
	if deps.Secondary == 0 {
		deps.Secondary = hotkeys.KeyLShift
	}
	return &Dispatcher{deps: deps}
}

var errNoCollaborator = errors.New("no collaborator configured")

// Execute runs action once. ActionNone is a no-op.
func (d *Dispatcher) Execute(action hotkeys.Action) error {
	if action.IsNone() {
		return nil
	}
	err := workerutil.Guard("dispatch:"+action.String(), func() error {
		return d.execute(action)
	})
	if err != nil {
		slog.Warn("[DEBUG-DISPATCH] action failed", "action", action.String(), "error", err)
		return err
	}
	slog.Debug("[DEBUG-DISPATCH] action executed", "action", action.String())
	return nil
}

func (d *Dispatcher) execute(action hotkeys.Action) error {
	switch action.Kind {
	case hotkeys.ActionSwitchDirection:
		if d.deps.Windows == nil {
			return errNoCollaborator
		}
		return d.deps.Windows.SwitchDirection(action.Direction)
	case hotkeys.ActionScroll:
		return d.scroll(action.Delta)
	case hotkeys.ActionSwitchIME:
		if d.deps.IME == nil {
			return errNoCollaborator
		}
		return d.deps.IME.Toggle()
	case hotkeys.ActionOpenProgram:
		if d.deps.Launcher == nil {
			return errNoCollaborator
		}
		return d.deps.Launcher.Open(action.Program)
	case hotkeys.ActionSwitchWindow:
		if d.deps.Windows == nil {
			return errNoCollaborator
		}
		return d.deps.Windows.SwitchToTitle(action.Title)
	case hotkeys.ActionSwitchOrOpen:
		if d.deps.Windows == nil {
			return errNoCollaborator
		}
		return d.deps.Windows.SwitchOrOpen(action.Title, action.Program)
	}
	return fmt.Errorf("unknown action kind %d", action.Kind)
}

// scroll emits a vertical wheel event. Applications read shift+wheel as a
// horizontal scroll, so a held secondary modifier is released around it
// and restored afterwards.
func (d *Dispatcher) scroll(delta int) error {
	in := d.deps.Input
	if in == nil {
		return errNoCollaborator
	}
	key := d.deps.Secondary
	held := in.IsDown(key)

	if held {
		if err := in.KeyUp(key); err != nil {
			return fmt.Errorf("release %s: %w", key, err)
		}
	}
	wheelErr := in.Wheel(delta * WheelDelta)
	if held {
		if err := in.KeyDown(key); err != nil {
			return errors.Join(wheelErr, fmt.Errorf("restore %s: %w", key, err))
		}
	}
	if wheelErr != nil {
		return fmt.Errorf("wheel: %w", wheelErr)
	}
	slog.Debug("[DEBUG-DISPATCH] scroll wheel sent", "delta", delta, "secondaryHeld", held)
	return nil
}
