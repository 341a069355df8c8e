package imeswitch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fncaps/internal/hotkeys"
	"fncaps/internal/testutil"
)

type fakeSwitcher struct {
	resets  atomic.Int32
	ensures atomic.Int32
}

func (f *fakeSwitcher) ResetToEnglish() error {
	f.resets.Add(1)
	return nil
}

func (f *fakeSwitcher) EnsureNativeMode() (bool, error) {
	f.ensures.Add(1)
	return false, nil
}

// fakeForeground reports a settable window and counts how often it was read.
type fakeForeground struct {
	hwnd  atomic.Uintptr
	polls atomic.Int32
}

func (f *fakeForeground) get() uintptr {
	f.polls.Add(1)
	return f.hwnd.Load()
}

// waitPolled blocks until the focus loop has read its baseline and polled again.
func (f *fakeForeground) waitPolled(t *testing.T) {
	t.Helper()
	testutil.WaitFor(t, time.Second, "focus loop never polled", func() bool {
		return f.polls.Load() >= 2
	})
}

type fakeHook struct {
	mu       sync.Mutex
	handler  hotkeys.HandlerFunc
	startErr error
	stopped  bool
}

func (h *fakeHook) Start(handler hotkeys.HandlerFunc) error {
	if h.startErr != nil {
		return h.startErr
	}
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
	return nil
}

func (h *fakeHook) Stop() error {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
	return nil
}

func (h *fakeHook) send(t *testing.T, key hotkeys.Key, pressed bool) {
	t.Helper()
	h.mu.Lock()
	handler := h.handler
	h.mu.Unlock()
	if handler == nil {
		t.Fatal("hook not started")
	}
	if handler(hotkeys.KeyEvent{Key: key, Pressed: pressed}) {
		t.Fatal("daemon must never suppress key events")
	}
}

func (h *fakeHook) started() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handler != nil
}

func startRunner(t *testing.T, r *Runner) (<-chan error, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()
	t.Cleanup(cancel)
	return errCh, cancel
}

func TestNewRunnerClampsPollInterval(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{in: 0, want: DefaultPollInterval},
		{in: time.Millisecond, want: MinPollInterval},
		{in: 80 * time.Millisecond, want: 80 * time.Millisecond},
	}
	for _, tt := range tests {
		r := NewRunner(Options{PollInterval: tt.in}, &fakeSwitcher{}, func() uintptr { return 0 }, nil)
		if r.opts.PollInterval != tt.want {
			t.Errorf("PollInterval(%v) = %v, want %v", tt.in, r.opts.PollInterval, tt.want)
		}
	}
}

func TestRunnerResetsOnForegroundChange(t *testing.T) {
	fg := &fakeForeground{}
	fg.hwnd.Store(1)
	sw := &fakeSwitcher{}
	r := NewRunner(Options{IMEResetting: true, PollInterval: MinPollInterval}, sw, fg.get, nil)
	errCh, cancel := startRunner(t, r)

	fg.waitPolled(t)
	if got := sw.resets.Load(); got != 0 {
		t.Fatalf("resets before focus change = %d, want 0", got)
	}

	fg.hwnd.Store(2)
	testutil.WaitFor(t, time.Second, "focus change did not reset the IME", func() bool {
		return sw.resets.Load() == 1
	})

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRunnerNativeModeGuardPolls(t *testing.T) {
	sw := &fakeSwitcher{}
	r := NewRunner(Options{EnsureNativeMode: true, PollInterval: MinPollInterval}, sw, func() uintptr { return 0 }, nil)
	startRunner(t, r)

	testutil.WaitFor(t, time.Second, "guard loop did not poll", func() bool {
		return sw.ensures.Load() >= 2
	})
}

func TestRunnerEscapeChordResets(t *testing.T) {
	sw := &fakeSwitcher{}
	hook := &fakeHook{}
	r := NewRunner(Options{EscapeSwitching: true}, sw, func() uintptr { return 0 }, hook)
	errCh, cancel := startRunner(t, r)

	testutil.WaitFor(t, time.Second, "hook not started", hook.started)
	hook.send(t, hotkeys.KeyLControl, true)
	hook.send(t, hotkeys.KeyLeftBracket, true)
	hook.send(t, hotkeys.KeyLeftBracket, true)

	testutil.WaitFor(t, time.Second, "escape chord did not reset the IME", func() bool {
		return sw.resets.Load() == 1
	})

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	hook.mu.Lock()
	defer hook.mu.Unlock()
	if !hook.stopped {
		t.Fatal("hook was not stopped on shutdown")
	}
}

func TestRunnerHookFailureKeepsPolling(t *testing.T) {
	fg := &fakeForeground{}
	sw := &fakeSwitcher{}
	hook := &fakeHook{startErr: hotkeys.ErrUnsupported}
	r := NewRunner(Options{EscapeSwitching: true, IMEResetting: true, PollInterval: MinPollInterval}, sw, fg.get, hook)
	errCh, cancel := startRunner(t, r)

	fg.waitPolled(t)
	fg.hwnd.Store(7)
	testutil.WaitFor(t, time.Second, "focus loop stopped after hook failure", func() bool {
		return sw.resets.Load() >= 1
	})

	cancel()
	if err := <-errCh; !errors.Is(err, hotkeys.ErrUnsupported) {
		t.Fatalf("Run() error = %v, want ErrUnsupported", err)
	}
}
