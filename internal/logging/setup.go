// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EnvLogLevel overrides the configured level (debug|info|warn|error).
const EnvLogLevel = "FNCAPS_LOG"

// Options selects the level and optional warn+ mirror file.
type Options struct {
	Level  slog.Level
	File   string
	Stderr io.Writer
}

// ResolveLevel applies the FNCAPS_LOG override to level. An unparsable
// override is ignored and reported as an error.
func ResolveLevel(level slog.Level) (slog.Level, error) {
	raw := strings.TrimSpace(os.Getenv(EnvLogLevel))
	if raw == "" {
		return level, nil
	}
	var override slog.Level
	if err := override.UnmarshalText([]byte(raw)); err != nil {
		return level, fmt.Errorf("%s=%q: %w", EnvLogLevel, raw, err)
	}
	return override, nil
}

// New builds a logger writing text records to opts.Stderr (os.Stderr when
// nil). When opts.File is set, warn+ records are also appended there. The
// returned closer releases the file and is never nil.
func New(opts Options) (*slog.Logger, func() error, error) {
	out := opts.Stderr
	if out == nil {
		out = os.Stderr
	}
	level, levelErr := ResolveLevel(opts.Level)
	base := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})

	path := strings.TrimSpace(opts.File)
	if path == "" {
		return slog.New(base), func() error { return nil }, levelErr
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return slog.New(base), func() error { return nil }, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return slog.New(base), func() error { return nil }, fmt.Errorf("open log file: %w", err)
	}
	mirror := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelWarn})
	return slog.New(NewTeeHandler(base, mirror, slog.LevelWarn)), file.Close, levelErr
}

// Setup installs New's logger as the slog default. Errors are logged
// through the new logger and otherwise ignored.
func Setup(opts Options) func() error {
	logger, closeFn, err := New(opts)
	slog.SetDefault(logger)
	if err != nil {
		slog.Warn("[WARN-CONFIG] logging setup degraded", "error", err)
	}
	return closeFn
}
