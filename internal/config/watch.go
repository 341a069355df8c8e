package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 250 * time.Millisecond

// Watcher reports edits to the config file. The rule table is fixed for the
// process lifetime, so a change only produces a restart hint.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func(path string)

	closeOnce sync.Once
	closeErr  error
}

// NewWatcher watches the directory holding path; editors that replace the
// file by rename would otherwise drop a direct file watch. onChange may be
// nil, in which case a warning is logged.
func NewWatcher(path string, onChange func(path string)) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	if onChange == nil {
		onChange = func(p string) {
			slog.Warn("[WARN-CONFIG] config file changed, restart to apply", "path", p)
		}
	}
	return &Watcher{
		path:     absPath,
		fsw:      fsw,
		debounce: defaultWatchDebounce,
		onChange: onChange,
	}, nil
}

// Run delivers debounced change notifications until ctx is done, then
// closes the underlying watcher. A panic in onChange leaves the watcher open,
// so Run can be called again by a restarting supervisor.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := w.Close(); err != nil {
				slog.Debug("[DEBUG-CONFIG] close watcher failed", "error", err)
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("[WARN-CONFIG] config watcher error", "error", err)
		case <-timer.C:
			w.onChange(w.path)
		}
	}
}

// Close stops the fsnotify watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return filepath.Clean(name) == filepath.Clean(w.path)
}
