package config

import (
	"fmt"
	"log/slog"
	"strings"

	"fncaps/internal/hotkeys"
	"fncaps/internal/ime"
)

// Settings is the validated runtime view of a File.
type Settings struct {
	Hotkeys   hotkeys.Config
	Modifier  hotkeys.Key
	Secondary hotkeys.Key
	LocaleEN  uint32
	LocaleZH  uint32
	LogLevel  slog.Level
	LogFile   string
	Notify    bool
}

// DefaultFile returns the starter configuration written when no file exists.
func DefaultFile() File {
	rules := hotkeys.DefaultRules()
	bindings := make([]Binding, 0, len(rules))
	for _, r := range rules {
		b := Binding{
			Key:    r.Key.String(),
			Action: r.Action.String(),
		}
		if r.Shift != hotkeys.ShiftAny {
			b.Shift = r.Shift.String()
		}
		if !r.Pending {
			b.Pending = new(false)
		}
		bindings = append(bindings, b)
	}
	return File{
		Caps: CapsSection{
			TapAction:         hotkeys.SwitchIME().String(),
			Modifier:          hotkeys.KeyCapsLock.String(),
			SecondaryModifier: hotkeys.KeyLShift.String(),
			Bindings:          bindings,
		},
		IME: IMESection{
			LocaleEN: ime.DefaultLocaleEN,
			LocaleZH: ime.DefaultLocaleZH,
		},
		Log: LogSection{Level: "info"},
	}
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Hotkeys:   hotkeys.DefaultConfig(hotkeys.SwitchIME()),
		Modifier:  hotkeys.KeyCapsLock,
		Secondary: hotkeys.KeyLShift,
		LocaleEN:  ime.DefaultLocaleEN,
		LocaleZH:  ime.DefaultLocaleZH,
		LogLevel:  slog.LevelInfo,
		Notify:    true,
	}
}

// Build validates f. The first invalid field aborts the build; an empty
// bindings list selects the default rules with f's tap action.
func Build(f File) (Settings, error) {
	s := DefaultSettings()

	if raw := strings.TrimSpace(f.Caps.TapAction); raw != "" {
		tap, err := hotkeys.ParseAction(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("caps.tap_action %w", err)
		}
		s.Hotkeys.TapAction = tap
	}
	if raw := strings.TrimSpace(f.Caps.Modifier); raw != "" {
		key, err := hotkeys.ParseKey(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("caps.modifier %w", err)
		}
		s.Modifier = key
	}
	if raw := strings.TrimSpace(f.Caps.SecondaryModifier); raw != "" {
		key, err := hotkeys.ParseKey(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("caps.secondary_modifier %w", err)
		}
		s.Secondary = key
	}
	if s.Modifier == s.Secondary {
		return Settings{}, fmt.Errorf("caps.secondary_modifier must differ from caps.modifier (%s)", s.Modifier)
	}

	if len(f.Caps.Bindings) > 0 {
		rules := make([]hotkeys.Rule, 0, len(f.Caps.Bindings))
		for i, b := range f.Caps.Bindings {
			r, err := buildRule(b)
			if err != nil {
				return Settings{}, fmt.Errorf("bindings[%d] %w", i, err)
			}
			rules = append(rules, r)
		}
		s.Hotkeys.Rules = rules
	}

	if f.IME.LocaleEN != 0 {
		s.LocaleEN = f.IME.LocaleEN
	}
	if f.IME.LocaleZH != 0 {
		s.LocaleZH = f.IME.LocaleZH
	}

	if raw := strings.TrimSpace(f.Log.Level); raw != "" {
		if err := s.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return Settings{}, fmt.Errorf("log.level %w", err)
		}
	}
	s.LogFile = strings.TrimSpace(f.Log.File)
	s.Notify = boolOr(f.Notify, true)
	return s, nil
}

func buildRule(b Binding) (hotkeys.Rule, error) {
	key, err := hotkeys.ParseKey(b.Key)
	if err != nil {
		return hotkeys.Rule{}, err
	}
	action, err := hotkeys.ParseAction(b.Action)
	if err != nil {
		return hotkeys.Rule{}, err
	}
	shift, err := hotkeys.ParseShift(b.Shift)
	if err != nil {
		return hotkeys.Rule{}, err
	}
	return hotkeys.Rule{
		Key:         key,
		Shift:       shift,
		Action:      action,
		Suppress:    boolOr(b.Suppress, true),
		Pending:     boolOr(b.Pending, true),
		Description: "caps+" + strings.TrimSpace(b.Key),
	}, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// LoadSettings never fails: any problem is logged at error level and the
// built-in settings are returned. A missing file gets a starter copy.
func LoadSettings(path string) Settings {
	f, err := EnsureFile(path)
	if err != nil {
		slog.Error("[WARN-CONFIG] config load failed, using defaults", "path", path, "error", err)
	}
	s, err := Build(f)
	if err != nil {
		slog.Error("[WARN-CONFIG] invalid config, using defaults", "path", path, "error", err)
		return DefaultSettings()
	}
	slog.Info("[DEBUG-CONFIG] config loaded",
		"path", path,
		"rules", len(s.Hotkeys.Rules),
		"tapAction", s.Hotkeys.TapAction.String(),
		"modifier", s.Modifier.String(),
	)
	return s
}
