// Package config loads the hotkey configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

const (
	// EnvConfigPath overrides DefaultPath.
	EnvConfigPath = "FNCAPS_CONFIG"

	maxConfigFileBytes int64 = 1 << 20 // 1MB
	maxRenameRetry           = 10
	// Windows file lock releases (antivirus/indexing) typically settle quickly.
	renameRetryBaseDelay = 10 * time.Millisecond
)

var userHomeDirFn = os.UserHomeDir

// File is the on-disk shape shared by the YAML and TOML encodings.
type File struct {
	Caps CapsSection `yaml:"caps" toml:"caps"`
	IME  IMESection  `yaml:"ime,omitempty" toml:"ime,omitempty"`
	Log  LogSection  `yaml:"log,omitempty" toml:"log,omitempty"`

	// Notify enables desktop notifications; nil means true.
	Notify *bool `yaml:"notify,omitempty" toml:"notify,omitempty"`
}

type CapsSection struct {
	TapAction         string    `yaml:"tap_action,omitempty" toml:"tap_action,omitempty"`
	Modifier          string    `yaml:"modifier,omitempty" toml:"modifier,omitempty"`
	SecondaryModifier string    `yaml:"secondary_modifier,omitempty" toml:"secondary_modifier,omitempty"`
	Bindings          []Binding `yaml:"bindings,omitempty" toml:"bindings,omitempty"`
}

// Binding is one rule as written by the user. Nil Suppress/Pending mean true.
type Binding struct {
	Key      string `yaml:"key" toml:"key"`
	Action   string `yaml:"action" toml:"action"`
	Shift    string `yaml:"shift,omitempty" toml:"shift,omitempty"`
	Suppress *bool  `yaml:"suppress,omitempty" toml:"suppress,omitempty"`
	Pending  *bool  `yaml:"pending,omitempty" toml:"pending,omitempty"`
}

type IMESection struct {
	LocaleEN uint32 `yaml:"locale_en,omitempty" toml:"locale_en,omitempty"`
	LocaleZH uint32 `yaml:"locale_zh,omitempty" toml:"locale_zh,omitempty"`
}

type LogSection struct {
	Level string `yaml:"level,omitempty" toml:"level,omitempty"`
	File  string `yaml:"file,omitempty" toml:"file,omitempty"`
}

// DefaultPath resolves the config file path: FNCAPS_CONFIG when set,
// otherwise APPDATA, then LOCALAPPDATA, then ~/.config, then os.TempDir().
// The temp-dir fallback is not a stable persistence location.
func DefaultPath() string {
	if explicit := strings.TrimSpace(os.Getenv(EnvConfigPath)); explicit != "" {
		return explicit
	}
	base := strings.TrimSpace(os.Getenv("APPDATA"))
	if base == "" {
		base = strings.TrimSpace(os.Getenv("LOCALAPPDATA"))
	}
	if base == "" {
		home, err := userHomeDirFn()
		if err != nil {
			slog.Warn("[WARN-CONFIG] using temp dir as config path fallback", "error", err)
			base = os.TempDir()
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "fncaps", "config.yaml")
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Decode parses raw as TOML when path ends in .toml and as YAML otherwise.
// Unknown fields are ignored.
func Decode(path string, raw []byte) (File, error) {
	var f File
	if isTOML(path) {
		if err := toml.Unmarshal(raw, &f); err != nil {
			return File{}, fmt.Errorf("parse toml %s: %w", path, err)
		}
		return f, nil
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("parse yaml %s: %w", path, err)
	}
	return f, nil
}

// Encode renders f in the format chosen by path's extension.
func Encode(path string, f File) ([]byte, error) {
	if isTOML(path) {
		return toml.Marshal(f)
	}
	return yaml.Marshal(f)
}

// Load reads path. A missing or empty file yields DefaultFile() and no
// error; callers that need to know the file was absent use EnsureFile.
func Load(path string) (File, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultFile(), errors.New("config path required")
	}
	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultFile(), nil
		}
		return DefaultFile(), err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return DefaultFile(), nil
	}
	f, err := Decode(path, raw)
	if err != nil {
		return DefaultFile(), err
	}
	return f, nil
}

// EnsureFile writes DefaultFile() to path when nothing exists there and
// returns the loaded file. A failed starter write is returned together with
// the usable defaults.
func EnsureFile(path string) (File, error) {
	_, statErr := os.Stat(path)
	f, err := Load(path)
	if err != nil {
		return f, err
	}
	if errors.Is(statErr, os.ErrNotExist) {
		if err := Save(path, f); err != nil {
			return f, fmt.Errorf("write starter config: %w", err)
		}
		slog.Info("[DEBUG-CONFIG] starter config written", "path", path)
	}
	return f, nil
}

// Save encodes f and writes it atomically.
func Save(path string, f File) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path required")
	}
	raw, err := Encode(path, f)
	if err != nil {
		return fmt.Errorf("save config: marshal: %w", err)
	}
	if err := atomicWrite(path, raw); err != nil {
		return err
	}
	slog.Debug("[DEBUG-CONFIG] config saved", "path", path)
	return nil
}

// atomicWrite writes data using temp-file + rename to avoid partial writes
// and retries the rename on Windows to tolerate transient file locks.
func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("save config: mkdir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".fncaps-config.tmp.*")
	if err != nil {
		return fmt.Errorf("save config: create temp: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			if closeErr := tmpFile.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
				slog.Warn("[WARN-CONFIG] failed to close temp file", "path", tmpPath, "error", closeErr)
			}
		}
		if err != nil {
			if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				slog.Warn("[WARN-CONFIG] failed to remove temp file", "path", tmpPath, "error", removeErr)
			}
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("save config: write: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("save config: sync: %w", err)
	}
	err = tmpFile.Close()
	tmpFile = nil
	if err != nil {
		return fmt.Errorf("save config: close: %w", err)
	}

	if err = renameFileWithRetry(tmpPath, path); err != nil {
		return fmt.Errorf("save config: rename: %w", err)
	}
	return nil
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}

func renameFileWithRetry(sourcePath string, targetPath string) error {
	var lastErr error
	for attempt := range maxRenameRetry {
		err := os.Rename(sourcePath, targetPath)
		if err == nil {
			return nil
		}
		lastErr = err
		if runtime.GOOS != "windows" {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * renameRetryBaseDelay)
	}
	return lastErr
}
