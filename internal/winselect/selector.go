// Package winselect picks and focuses top-level windows by direction or title.
package winselect

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"fncaps/internal/hotkeys"
)

var (
	// ErrNoMonitors means monitor enumeration produced nothing.
	ErrNoMonitors = errors.New("no monitors available")
	// ErrNoWindow means no eligible window matched.
	ErrNoWindow = errors.New("no matching window")
	// ErrUnsupported is returned by the desktop adapter off Windows.
	ErrUnsupported = errors.New("window management is only supported on Windows")
)

// Desktop is the window-system surface the selector needs.
type Desktop interface {
	Monitors() ([]Rect, error)
	TopLevelWindows() ([]uintptr, error)
	IsVisible(hwnd uintptr) bool
	Title(hwnd uintptr) string
	ProcessID(hwnd uintptr) uint32
	WindowRect(hwnd uintptr) (Rect, bool)
	IsMaximized(hwnd uintptr) bool
	Root(hwnd uintptr) uintptr
	RootAt(p Point) uintptr
	Foreground() uintptr
	// Focus shows hwnd and brings it to the foreground.
	Focus(hwnd uintptr) error
	SetCursor(p Point) error
}

// Launcher starts a program when SwitchOrOpen finds no window.
type Launcher interface {
	Open(program string) error
}

// WindowInfo is an eligible window captured during one enumeration.
type WindowInfo struct {
	Handle uintptr
	Rect   Rect
	Title  string
}

// Selector is stateless between calls; every request re-enumerates.
type Selector struct {
	desktop  Desktop
	launcher Launcher
	pid      uint32
}

// New creates a selector. launcher may be nil when SwitchOrOpen is unused.
func New(desktop Desktop, launcher Launcher) *Selector {
	return &Selector{
		desktop:  desktop,
		launcher: launcher,
		pid:      uint32(os.Getpid()),
	}
}

// Eligible returns the bounds and the windows that pass the visibility and
// geometry filter, in enumeration order.
func (s *Selector) Eligible() (ScreenBounds, []WindowInfo, error) {
	monitors, err := s.desktop.Monitors()
	if err != nil {
		return ScreenBounds{}, nil, fmt.Errorf("enumerate monitors: %w", err)
	}
	bounds, ok := ComputeBounds(monitors)
	if !ok {
		return ScreenBounds{}, nil, ErrNoMonitors
	}

	handles, err := s.desktop.TopLevelWindows()
	if err != nil {
		return bounds, nil, fmt.Errorf("enumerate windows: %w", err)
	}

	windows := make([]WindowInfo, 0, len(handles))
	for _, hwnd := range handles {
		if info, ok := s.eligible(hwnd, bounds); ok {
			windows = append(windows, info)
		}
	}
	slog.Debug("[DEBUG-WINDOW] eligible windows collected", "total", len(handles), "eligible", len(windows))
	return bounds, windows, nil
}

func (s *Selector) eligible(hwnd uintptr, bounds ScreenBounds) (WindowInfo, bool) {
	d := s.desktop
	if !d.IsVisible(hwnd) {
		return WindowInfo{}, false
	}
	title := strings.TrimSpace(d.Title(hwnd))
	if title == "" {
		return WindowInfo{}, false
	}
	if d.ProcessID(hwnd) == s.pid {
		return WindowInfo{}, false
	}
	rect, ok := d.WindowRect(hwnd)
	if !ok {
		return WindowInfo{}, false
	}
	if !bounds.containsCenter(rect.Center()) {
		return WindowInfo{}, false
	}

	// Occluded windows lose the hit test at their own center.
	topRoot := d.RootAt(rect.CenterPoint())
	if topRoot == 0 || topRoot != d.Root(hwnd) {
		return WindowInfo{}, false
	}

	if !d.IsMaximized(hwnd) && !bounds.partlyOnscreen(rect) {
		return WindowInfo{}, false
	}
	return WindowInfo{Handle: hwnd, Rect: rect, Title: title}, true
}

// SwitchDirection focuses the best-scoring eligible window in direction dir
// relative to the foreground window. When the foreground window is not
// eligible the first eligible window is focused instead.
func (s *Selector) SwitchDirection(dir hotkeys.Direction) error {
	bounds, windows, err := s.Eligible()
	if err != nil {
		slog.Warn("[DEBUG-WINDOW] cannot switch window", "direction", dir.String(), "error", err)
		return err
	}
	if len(windows) == 0 {
		return nil
	}

	fg := s.desktop.Foreground()
	focusedIdx := -1
	for i, w := range windows {
		if w.Handle == fg {
			focusedIdx = i
			break
		}
	}
	if focusedIdx < 0 {
		slog.Debug("[DEBUG-WINDOW] foreground window not eligible, focusing first candidate")
		return s.focus(windows[0])
	}

	target, weight, ok := pickDirectional(windows, focusedIdx, dir, bounds.DiagonalSquared)
	if !ok {
		return nil
	}
	slog.Info("[DEBUG-WINDOW] switching focus", "direction", dir.String(), "title", target.Title, "weight", weight)
	return s.focus(target)
}

// pickDirectional returns the minimum-weight window other than
// windows[focusedIdx]. Ties keep the earlier window.
func pickDirectional(windows []WindowInfo, focusedIdx int, dir hotkeys.Direction, diagonalSquared float64) (WindowInfo, float64, bool) {
	focused := windows[focusedIdx]
	best := -1
	bestWeight := math.Inf(1)
	for i, w := range windows {
		if i == focusedIdx || w.Handle == focused.Handle {
			continue
		}
		weight := directionalWeight(focused.Rect, w.Rect, dir.Angle(), dir == hotkeys.DirLeft, diagonalSquared)
		if weight < bestWeight {
			best, bestWeight = i, weight
		}
	}
	if best < 0 {
		return WindowInfo{}, 0, false
	}
	return windows[best], bestWeight, true
}

// SwitchToTitle focuses the first eligible window whose title equals title,
// falling back to a case-insensitive substring match.
func (s *Selector) SwitchToTitle(title string) error {
	_, windows, err := s.Eligible()
	if err != nil {
		slog.Warn("[DEBUG-WINDOW] cannot switch to window", "title", title, "error", err)
		return err
	}
	w, ok := matchTitle(windows, title)
	if !ok {
		slog.Warn("[DEBUG-WINDOW] no window found with matching title", "title", title)
		return fmt.Errorf("%w: %q", ErrNoWindow, title)
	}
	slog.Info("[DEBUG-WINDOW] title match found, switching", "query", title, "title", w.Title)
	return s.focus(w)
}

// SwitchOrOpen behaves like SwitchToTitle but launches program when no
// window matches or the screen cannot be enumerated.
func (s *Selector) SwitchOrOpen(title, program string) error {
	_, windows, err := s.Eligible()
	if err != nil {
		slog.Warn("[DEBUG-WINDOW] cannot enumerate windows, launching program", "program", program, "error", err)
		return s.open(program)
	}
	if w, ok := matchTitle(windows, title); ok {
		slog.Info("[DEBUG-WINDOW] title match found, switching", "query", title, "title", w.Title)
		return s.focus(w)
	}
	slog.Info("[DEBUG-WINDOW] window not found, launching program", "title", title, "program", program)
	return s.open(program)
}

func matchTitle(windows []WindowInfo, query string) (WindowInfo, bool) {
	for _, w := range windows {
		if w.Title == query {
			return w, true
		}
	}
	lower := strings.ToLower(query)
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), lower) {
			return w, true
		}
	}
	return WindowInfo{}, false
}

// focus moves the cursor to the window center even when the foreground
// request is refused, so the shell can still raise the window under it.
func (s *Selector) focus(w WindowInfo) error {
	focusErr := s.desktop.Focus(w.Handle)
	if focusErr != nil {
		focusErr = fmt.Errorf("focus window %q: %w", w.Title, focusErr)
	}
	cursorErr := s.desktop.SetCursor(w.Rect.CenterPoint())
	if cursorErr == nil {
		return focusErr
	}
	if focusErr == nil {
		slog.Debug("[DEBUG-WINDOW] failed to move cursor", "title", w.Title, "error", cursorErr)
		return nil
	}
	return errors.Join(focusErr, fmt.Errorf("move cursor: %w", cursorErr))
}

func (s *Selector) open(program string) error {
	if s.launcher == nil {
		return fmt.Errorf("no launcher configured for %q", program)
	}
	return s.launcher.Open(program)
}
