// Package launch starts user programs detached from the engine.
package launch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"fncaps/internal/procutil"

	"github.com/google/uuid"
)

// ErrNotFound means the program could not be resolved to an executable.
var ErrNotFound = errors.New("program not found")

// Launcher resolves programs on PATH and starts them without waiting.
// The zero value is not usable; call New.
type Launcher struct {
	lookPath func(file string) (string, error)
	stat     func(name string) (os.FileInfo, error)
	homeDir  func() (string, error)
	start    func(cmd *exec.Cmd) error
}

// New returns a Launcher backed by the real process environment.
func New() *Launcher {
	return &Launcher{
		lookPath: exec.LookPath,
		stat:     os.Stat,
		homeDir:  os.UserHomeDir,
		start:    startAndReap,
	}
}

// Resolve maps program to an executable path. Bare names are searched on
// PATH (with PATHEXT on Windows); anything with a directory component must
// exist as given.
func (l *Launcher) Resolve(program string) (string, error) {
	program = strings.TrimSpace(program)
	if program == "" {
		return "", fmt.Errorf("%w: empty program", ErrNotFound)
	}
	if strings.ContainsAny(program, `/\`) || filepath.IsAbs(program) {
		info, err := l.stat(program)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrNotFound, program)
		}
		return program, nil
	}
	path, err := l.lookPath(program)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotFound, program, err)
	}
	return path, nil
}

// Open starts program with the user's home directory as working directory.
// It returns once the process has been created.
func (l *Launcher) Open(program string) error {
	path, err := l.Resolve(program)
	if err != nil {
		slog.Warn("[DEBUG-LAUNCH] cannot resolve program", "program", program, "error", err)
		return err
	}

	cmd := exec.Command(path)
	if home, err := l.homeDir(); err == nil {
		cmd.Dir = home
	} else {
		slog.Debug("[DEBUG-LAUNCH] home directory unavailable, inheriting working directory", "error", err)
	}
	procutil.Detach(cmd)

	id := uuid.NewString()
	if err := l.start(cmd); err != nil {
		slog.Warn("[DEBUG-LAUNCH] failed to start program", "id", id, "program", path, "error", err)
		return fmt.Errorf("start %s: %w", path, err)
	}
	pid := 0
	if cmd.Process != nil {
		pid = cmd.Process.Pid
	}
	slog.Info("[DEBUG-LAUNCH] program started", "id", id, "program", path, "cwd", cmd.Dir, "pid", pid)
	return nil
}

// startAndReap starts cmd and waits for it in the background so the process
// handle is released when the child exits.
func startAndReap(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("[DEBUG-LAUNCH] launched program exited with error", "program", cmd.Path, "error", err)
		}
	}()
	return nil
}
