package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fncaps/internal/hotkeys"
	"fncaps/internal/testutil"
)

func TestDefaultPath(t *testing.T) {
	t.Run("explicit env wins", func(t *testing.T) {
		want := filepath.Join(t.TempDir(), "custom.toml")
		t.Setenv(EnvConfigPath, "  "+want+"  ")
		if got := DefaultPath(); got != want {
			t.Fatalf("DefaultPath() = %q, want %q", got, want)
		}
	})

	t.Run("appdata", func(t *testing.T) {
		base := t.TempDir()
		t.Setenv(EnvConfigPath, "")
		t.Setenv("APPDATA", base)
		t.Setenv("LOCALAPPDATA", "")
		want := filepath.Join(base, "fncaps", "config.yaml")
		if got := DefaultPath(); got != want {
			t.Fatalf("DefaultPath() = %q, want %q", got, want)
		}
	})

	t.Run("localappdata fallback", func(t *testing.T) {
		base := t.TempDir()
		t.Setenv(EnvConfigPath, "")
		t.Setenv("APPDATA", "")
		t.Setenv("LOCALAPPDATA", base)
		want := filepath.Join(base, "fncaps", "config.yaml")
		if got := DefaultPath(); got != want {
			t.Fatalf("DefaultPath() = %q, want %q", got, want)
		}
	})

	t.Run("home fallback", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(EnvConfigPath, "")
		t.Setenv("APPDATA", "")
		t.Setenv("LOCALAPPDATA", "")
		orig := userHomeDirFn
		userHomeDirFn = func() (string, error) { return home, nil }
		t.Cleanup(func() { userHomeDirFn = orig })

		want := filepath.Join(home, ".config", "fncaps", "config.yaml")
		if got := DefaultPath(); got != want {
			t.Fatalf("DefaultPath() = %q, want %q", got, want)
		}
	})

	t.Run("temp fallback", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		t.Setenv("APPDATA", "")
		t.Setenv("LOCALAPPDATA", "")
		orig := userHomeDirFn
		userHomeDirFn = func() (string, error) { return "", errors.New("no home") }
		t.Cleanup(func() { userHomeDirFn = orig })

		want := filepath.Join(os.TempDir(), "fncaps", "config.yaml")
		if got := DefaultPath(); got != want {
			t.Fatalf("DefaultPath() = %q, want %q", got, want)
		}
	})
}

func TestEnsureFileWritesStarterThatRoundTrips(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			if _, err := EnsureFile(path); err != nil {
				t.Fatalf("EnsureFile() error = %v", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("starter file not written: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			s, err := Build(loaded)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			assertDefaultRules(t, s.Hotkeys.Rules)
			if s.Hotkeys.TapAction != hotkeys.SwitchIME() {
				t.Fatalf("TapAction = %v, want switch_ime", s.Hotkeys.TapAction)
			}
			if s.Modifier != hotkeys.KeyCapsLock || s.Secondary != hotkeys.KeyLShift {
				t.Fatalf("modifiers = %v/%v, want capslock/lshift", s.Modifier, s.Secondary)
			}
		})
	}
}

func TestEnsureFileKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "caps:\n  tap_action: none\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := EnsureFile(path)
	if err != nil {
		t.Fatalf("EnsureFile() error = %v", err)
	}
	if f.Caps.TapAction != "none" {
		t.Fatalf("TapAction = %q, want none", f.Caps.TapAction)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != content {
		t.Fatalf("existing file was rewritten:\n%s", raw)
	}
}

func assertDefaultRules(t *testing.T, got []hotkeys.Rule) {
	t.Helper()
	want := hotkeys.DefaultRules()
	if len(got) != len(want) {
		t.Fatalf("rule count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Key != w.Key || g.Shift != w.Shift || g.Action != w.Action ||
			g.Suppress != w.Suppress || g.Pending != w.Pending {
			t.Fatalf("rule[%d] = %+v, want %+v", i, g, w)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
caps:
  tap_action: none
  bindings:
    - { key: H, action: switch_left }
    - { key: k, action: scroll_up, shift: down, pending: false }
    - { key: v, action: "switch_or_open:Code|C:\\Apps\\Code.exe" }
    - { key: x, action: "open_app:calc.exe", suppress: false }
ime:
  locale_en: 2057
log:
  level: debug
  file: fncaps.log
notify: false
unknown_section: ignored
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s, err := Build(f)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !s.Hotkeys.TapAction.IsNone() {
		t.Fatalf("TapAction = %v, want none", s.Hotkeys.TapAction)
	}
	want := []hotkeys.Rule{
		{Key: hotkeys.Letter('h'), Action: hotkeys.SwitchDirection(hotkeys.DirLeft), Suppress: true, Pending: true, Description: "caps+H"},
		{Key: hotkeys.Letter('k'), Shift: hotkeys.ShiftDown, Action: hotkeys.Scroll(1), Suppress: true, Pending: false, Description: "caps+k"},
		{Key: hotkeys.Letter('v'), Action: hotkeys.SwitchOrOpen("Code", `C:\Apps\Code.exe`), Suppress: true, Pending: true, Description: "caps+v"},
		{Key: hotkeys.Letter('x'), Action: hotkeys.OpenProgram("calc.exe"), Suppress: false, Pending: true, Description: "caps+x"},
	}
	if len(s.Hotkeys.Rules) != len(want) {
		t.Fatalf("rules = %d, want %d", len(s.Hotkeys.Rules), len(want))
	}
	for i := range want {
		if s.Hotkeys.Rules[i] != want[i] {
			t.Errorf("rule[%d] = %+v, want %+v", i, s.Hotkeys.Rules[i], want[i])
		}
	}
	if s.LocaleEN != 2057 || s.LocaleZH != 2052 {
		t.Fatalf("locales = %d/%d, want 2057/2052", s.LocaleEN, s.LocaleZH)
	}
	if s.LogLevel != slog.LevelDebug || s.LogFile != "fncaps.log" {
		t.Fatalf("log = %v/%q, want debug/fncaps.log", s.LogLevel, s.LogFile)
	}
	if s.Notify {
		t.Fatal("Notify = true, want false")
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[caps]
tap_action = "switch_ime"
modifier = "f13"

[[caps.bindings]]
key = "left"
action = "switch_window:Slack"
shift = "up"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := LoadSettings(path)
	if s.Modifier != hotkeys.FunctionKey(13) {
		t.Fatalf("Modifier = %v, want f13", s.Modifier)
	}
	if len(s.Hotkeys.Rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(s.Hotkeys.Rules))
	}
	r := s.Hotkeys.Rules[0]
	if r.Key != hotkeys.KeyLeft || r.Shift != hotkeys.ShiftUp || r.Action != hotkeys.SwitchWindow("Slack") {
		t.Fatalf("rule = %+v", r)
	}
}

func TestBuildEmptyBindingsUsesDefaultsWithFileTap(t *testing.T) {
	s, err := Build(File{Caps: CapsSection{TapAction: "scroll_down"}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if s.Hotkeys.TapAction != hotkeys.Scroll(-1) {
		t.Fatalf("TapAction = %v, want scroll_down", s.Hotkeys.TapAction)
	}
	assertDefaultRules(t, s.Hotkeys.Rules)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    File
		wantErr string
	}{
		{
			name: "unknown key",
			file: File{Caps: CapsSection{Bindings: []Binding{
				{Key: "h", Action: "switch_left"},
				{Key: "xx", Action: "switch_left"},
			}}},
			wantErr: `bindings[1] unknown key: "xx"`,
		},
		{
			name:    "unsupported action",
			file:    File{Caps: CapsSection{Bindings: []Binding{{Key: "h", Action: "fly"}}}},
			wantErr: `bindings[0] unsupported action: "fly"`,
		},
		{
			name:    "bad shift",
			file:    File{Caps: CapsSection{Bindings: []Binding{{Key: "h", Action: "none", Shift: "sideways"}}}},
			wantErr: "bindings[0] unsupported shift mode",
		},
		{
			name:    "bad tap action",
			file:    File{Caps: CapsSection{TapAction: "open_program:"}},
			wantErr: "caps.tap_action",
		},
		{
			name:    "bad modifier",
			file:    File{Caps: CapsSection{Modifier: "hyper"}},
			wantErr: "caps.modifier",
		},
		{
			name:    "same modifiers",
			file:    File{Caps: CapsSection{Modifier: "lshift"}},
			wantErr: "must differ",
		},
		{
			name:    "bad log level",
			file:    File{Log: LogSection{Level: "loud"}},
			wantErr: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.file)
			if err == nil {
				t.Fatal("Build() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Build() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildExplicitBools(t *testing.T) {
	s, err := Build(File{Caps: CapsSection{Bindings: []Binding{
		{Key: "j", Action: "scroll_down", Suppress: testutil.Ptr(false), Pending: testutil.Ptr(false)},
	}}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	r := s.Hotkeys.Rules[0]
	if r.Suppress || r.Pending {
		t.Fatalf("rule = %+v, want suppress=false pending=false", r)
	}
}

func TestLoadSettingsFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantLog string
	}{
		{
			name:    "invalid binding",
			content: "caps:\n  tap_action: none\n  bindings:\n    - { key: xx, action: switch_left }\n",
			wantLog: `bindings[0] unknown key`,
		},
		{
			name:    "malformed yaml",
			content: "caps: [unterminated\n",
			wantLog: "config load failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := testutil.CaptureLogBuffer(t, slog.LevelError)
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			s := LoadSettings(path)
			if s.Hotkeys.TapAction != hotkeys.SwitchIME() {
				t.Fatalf("TapAction = %v, want default switch_ime", s.Hotkeys.TapAction)
			}
			assertDefaultRules(t, s.Hotkeys.Rules)
			if !logs.Contains(tt.wantLog) {
				t.Fatalf("log missing %q:\n%s", tt.wantLog, logs.String())
			}
		})
	}
}

func TestLoadRejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	big := strings.Repeat("#", int(maxConfigFileBytes)+1)
	if err := os.WriteFile(path, []byte(big), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("Load() error = %v, want size error", err)
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(f.Caps.Bindings) != len(hotkeys.DefaultRules()) {
		t.Fatalf("bindings = %d, want defaults", len(f.Caps.Bindings))
	}
}

func TestSaveRequiresPath(t *testing.T) {
	if err := Save(" ", DefaultFile()); err == nil {
		t.Fatal("Save() expected error for blank path")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := Save(path, DefaultFile()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.yaml" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("dir entries = %v, want only config.yaml", names)
	}
}
