package hotkeys

import (
	"fmt"
	"strings"
)

// ShiftRequirement constrains a rule on the secondary modifier state.
type ShiftRequirement int

const (
	ShiftAny ShiftRequirement = iota
	ShiftDown
	ShiftUp
)

func (s ShiftRequirement) String() string {
	switch s {
	case ShiftDown:
		return "down"
	case ShiftUp:
		return "up"
	default:
		return "any"
	}
}

// Satisfied reports whether the requirement holds for the given secondary
// modifier state.
func (s ShiftRequirement) Satisfied(secondaryPressed bool) bool {
	switch s {
	case ShiftDown:
		return secondaryPressed
	case ShiftUp:
		return !secondaryPressed
	default:
		return true
	}
}

// ParseShift parses "any", "down"/"pressed" or "up"/"released". An empty
// token means ShiftAny.
func ParseShift(raw string) (ShiftRequirement, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "any":
		return ShiftAny, nil
	case "down", "pressed":
		return ShiftDown, nil
	case "up", "released":
		return ShiftUp, nil
	}
	return ShiftAny, fmt.Errorf("unsupported shift mode %q, expected any/down/up", raw)
}

// Rule binds modifier+Key to an Action.
// Rules are values; a Config never hands out pointers into its table.
type Rule struct {
	Key    Key
	Shift  ShiftRequirement
	Action Action
	// Suppress drops the triggering key event instead of forwarding it.
	Suppress bool
	// Pending swallows key-repeat presses and the release of the triggering key.
	Pending     bool
	Description string
}

// Config is the immutable rule table consulted by the key-event machine.
type Config struct {
	TapAction Action
	Rules     []Rule
}

// Resolve returns the first rule, in declaration order, whose key matches and
// whose shift requirement holds. Earlier rules always win.
func (c *Config) Resolve(key Key, secondaryPressed bool) (Rule, bool) {
	if c == nil {
		return Rule{}, false
	}
	for _, rule := range c.Rules {
		if rule.Key == key && rule.Shift.Satisfied(secondaryPressed) {
			return rule, true
		}
	}
	return Rule{}, false
}

func rule(key Key, shift ShiftRequirement, action Action, pending bool, description string) Rule {
	return Rule{
		Key:         key,
		Shift:       shift,
		Action:      action,
		Suppress:    true,
		Pending:     pending,
		Description: description,
	}
}

// DefaultRules returns the built-in rule table. Scroll rules precede the
// matching switch rules so that shift+up/down scrolls.
func DefaultRules() []Rule {
	return []Rule{
		rule(KeyLeft, ShiftAny, SwitchDirection(DirLeft), true, "caps+left"),
		rule(Letter('h'), ShiftAny, SwitchDirection(DirLeft), true, "caps+h"),
		rule(KeyRight, ShiftAny, SwitchDirection(DirRight), true, "caps+right"),
		rule(Letter('l'), ShiftAny, SwitchDirection(DirRight), true, "caps+l"),
		rule(KeyUp, ShiftDown, Scroll(1), false, "caps+shift+up"),
		rule(Letter('k'), ShiftDown, Scroll(1), false, "caps+shift+k"),
		rule(KeyUp, ShiftUp, SwitchDirection(DirUp), true, "caps+up"),
		rule(Letter('k'), ShiftUp, SwitchDirection(DirUp), true, "caps+k"),
		rule(KeyDown, ShiftDown, Scroll(-1), false, "caps+shift+down"),
		rule(Letter('j'), ShiftDown, Scroll(-1), false, "caps+shift+j"),
		rule(KeyDown, ShiftUp, SwitchDirection(DirDown), true, "caps+down"),
		rule(Letter('j'), ShiftUp, SwitchDirection(DirDown), true, "caps+j"),
		rule(Letter('e'), ShiftAny, OpenProgram("notepad.exe"), true, "caps+e"),
		rule(Letter('v'), ShiftAny, SwitchOrOpen("Code", "Code.exe"), true, "caps+v"),
		rule(Letter('p'), ShiftAny, SwitchOrOpen("PowerShell", "pwsh.exe"), true, "caps+p"),
	}
}

// DefaultConfig returns the built-in table with tap as the tap action.
func DefaultConfig(tap Action) Config {
	return Config{
		TapAction: tap,
		Rules:     DefaultRules(),
	}
}
