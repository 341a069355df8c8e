package hotkeys

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is a compass direction for window switching.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Angle returns the canonical screen-space angle in degrees (y grows down).
func (d Direction) Angle() float64 {
	switch d {
	case DirUp:
		return -90
	case DirDown:
		return 90
	case DirLeft:
		return 180
	default:
		return 0
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ActionKind tags the variant held by an Action.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSwitchDirection
	ActionScroll
	ActionSwitchIME
	ActionOpenProgram
	ActionSwitchWindow
	ActionSwitchOrOpen
)

// Action is the effect bound to a rule or to the modifier tap.
// Only the fields relevant to Kind are set.
type Action struct {
	Kind      ActionKind
	Direction Direction // ActionSwitchDirection
	Delta     int       // ActionScroll, in wheel notches
	Title     string    // ActionSwitchWindow, ActionSwitchOrOpen
	Program   string    // ActionOpenProgram, ActionSwitchOrOpen
}

func NoAction() Action { return Action{} }

func SwitchDirection(d Direction) Action {
	return Action{Kind: ActionSwitchDirection, Direction: d}
}

func Scroll(delta int) Action { return Action{Kind: ActionScroll, Delta: delta} }

func SwitchIME() Action { return Action{Kind: ActionSwitchIME} }

func OpenProgram(program string) Action {
	return Action{Kind: ActionOpenProgram, Program: program}
}

func SwitchWindow(title string) Action {
	return Action{Kind: ActionSwitchWindow, Title: title}
}

func SwitchOrOpen(title, program string) Action {
	return Action{Kind: ActionSwitchOrOpen, Title: title, Program: program}
}

// IsNone reports whether a carries no effect.
func (a Action) IsNone() bool { return a.Kind == ActionNone }

// String renders a in the configuration syntax accepted by ParseAction.
func (a Action) String() string {
	switch a.Kind {
	case ActionNone:
		return "none"
	case ActionSwitchDirection:
		return "switch_" + a.Direction.String()
	case ActionScroll:
		switch a.Delta {
		case 1:
			return "scroll_up"
		case -1:
			return "scroll_down"
		}
		return "scroll:" + strconv.Itoa(a.Delta)
	case ActionSwitchIME:
		return "switch_ime"
	case ActionOpenProgram:
		return "open_program:" + a.Program
	case ActionSwitchWindow:
		return "switch_window:" + a.Title
	case ActionSwitchOrOpen:
		return "switch_or_open:" + a.Title + "|" + a.Program
	default:
		return fmt.Sprintf("action(%d)", int(a.Kind))
	}
}

var simpleActions = map[string]Action{
	"none":         NoAction(),
	"switch_ime":   SwitchIME(),
	"switch_left":  SwitchDirection(DirLeft),
	"switch_right": SwitchDirection(DirRight),
	"switch_up":    SwitchDirection(DirUp),
	"switch_down":  SwitchDirection(DirDown),
	"scroll_up":    Scroll(1),
	"scroll_down":  Scroll(-1),
}

// ParseAction parses a bare keyword ("switch_left") or a parameterized
// "name:params" form. Only the keyword is case-folded.
func ParseAction(raw string) (Action, error) {
	value := strings.TrimSpace(raw)
	if action, ok := simpleActions[strings.ToLower(value)]; ok {
		return action, nil
	}

	name, params, found := strings.Cut(value, ":")
	if !found {
		return Action{}, fmt.Errorf("unsupported action: %q", value)
	}
	name = strings.ToLower(strings.TrimSpace(name))

	switch name {
	case "open_program", "open_app":
		program := strings.TrimSpace(params)
		if program == "" {
			return Action{}, fmt.Errorf("%s requires a program name", name)
		}
		return OpenProgram(program), nil
	case "switch_window", "switch_win":
		title := strings.TrimSpace(params)
		if title == "" {
			return Action{}, fmt.Errorf("%s requires a window title", name)
		}
		return SwitchWindow(title), nil
	case "switch_or_open", "switch_or_launch":
		return parseSwitchOrOpen(name, params)
	case "scroll":
		delta, err := strconv.Atoi(strings.TrimSpace(params))
		if err != nil || delta == 0 {
			return Action{}, fmt.Errorf("scroll requires a non-zero integer delta, got %q", params)
		}
		return Scroll(delta), nil
	}
	return Action{}, fmt.Errorf("unsupported parameterized action %q", name)
}

// parseSwitchOrOpen splits "title|program" or "title:program". A pipe wins
// over a colon so that program paths like C:\bin\x.exe survive. Further
// pipes in the program part become colons, so "a|C|\x.exe" names C:\x.exe.
func parseSwitchOrOpen(name, params string) (Action, error) {
	sep := ":"
	if strings.Contains(params, "|") {
		sep = "|"
	}
	title, program, found := strings.Cut(params, sep)
	if sep == "|" {
		program = strings.ReplaceAll(program, "|", ":")
	}
	if !found {
		return Action{}, fmt.Errorf("%s requires: %s:window_title:program_path", name, name)
	}
	title = strings.TrimSpace(title)
	program = strings.TrimSpace(program)
	if title == "" || program == "" {
		return Action{}, fmt.Errorf("%s requires non-empty window_title and program", name)
	}
	return SwitchOrOpen(title, program), nil
}
