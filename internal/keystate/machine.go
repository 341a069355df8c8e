// Package keystate classifies keyboard events against the rule table while a
// modifier key is held.
package keystate

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"fncaps/internal/hotkeys"
)

// State is the modifier/pending bookkeeping shared across events.
type State struct {
	ModifierPressed  bool
	SecondaryPressed bool
	PendingKey       hotkeys.Key
	HasPending       bool
	// ActionTaken is set once anything happened since the modifier went
	// down; the tap action fires only when it is still false on release.
	ActionTaken bool
}

// Decision is the outcome for one event. Action is executed by the caller
// after OnEvent returns; Suppress tells the hook to drop the event.
type Decision struct {
	Action   hotkeys.Action
	Suppress bool
	// Rule names the matched rule, or "tap" for the modifier tap.
	Rule string
}

// resolveRule is a test seam.
var resolveRule = (*hotkeys.Config).Resolve

// Machine is safe for concurrent use, though the hook delivers events serially.
type Machine struct {
	mu        sync.Mutex
	state     State
	poisoned  bool
	cfg       *hotkeys.Config
	modifier  hotkeys.Key
	secondary hotkeys.Key
}

// New builds a machine over cfg. cfg is read-only for the machine's lifetime.
func New(cfg *hotkeys.Config, modifier, secondary hotkeys.Key) *Machine {
	if cfg == nil {
		cfg = &hotkeys.Config{}
	}
	return &Machine{
		cfg:       cfg,
		modifier:  modifier,
		secondary: secondary,
	}
}

// OnEvent consumes one physical key transition. A panic while the state lock
// is held poisons the machine; from then on every event passes through
// untouched and no action runs.
func (m *Machine) OnEvent(key hotkeys.Key, pressed bool) (decision Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return Decision{}
	}

	defer func() {
		if r := recover(); r != nil {
			m.poisoned = true
			slog.Error("[DEBUG-KEYSTATE] state machine poisoned, passing all keys through",
				"key", key.String(),
				"pressed", pressed,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			decision = Decision{}
		}
	}()

	return m.step(key, pressed)
}

func (m *Machine) step(key hotkeys.Key, pressed bool) Decision {
	st := &m.state

	if st.HasPending && st.PendingKey == key {
		if pressed {
			// Key repeat of the trigger key: swallow while the chord is held.
			return Decision{Suppress: st.ModifierPressed}
		}
		st.HasPending = false
		st.PendingKey = 0
		slog.Debug("[DEBUG-KEYSTATE] suppress pending key release", "key", key.String())
		return Decision{Suppress: true}
	}

	if key == m.modifier {
		decision := Decision{Suppress: true}
		if st.ModifierPressed != pressed {
			st.ModifierPressed = pressed
			slog.Debug("[DEBUG-KEYSTATE] modifier state changed", "pressed", pressed)
			if pressed {
				st.ActionTaken = false
			} else if !st.ActionTaken {
				decision.Action = m.cfg.TapAction
				decision.Rule = "tap"
			}
		}
		return decision
	}

	if key == m.secondary {
		st.SecondaryPressed = pressed
		st.ActionTaken = true
		return Decision{}
	}

	if !st.ModifierPressed || !pressed {
		return Decision{}
	}

	rule, ok := resolveRule(m.cfg, key, st.SecondaryPressed)
	if !ok {
		return Decision{}
	}
	if rule.Pending {
		st.PendingKey = key
		st.HasPending = true
	}
	st.ActionTaken = true
	return Decision{
		Action:   rule.Action,
		Suppress: rule.Suppress,
		Rule:     rule.Description,
	}
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Poisoned reports whether the machine has failed open.
func (m *Machine) Poisoned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.poisoned
}
