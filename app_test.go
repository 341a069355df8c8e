package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fncaps/internal/hotkeys"
	"fncaps/internal/keystate"
)

type recordedEvent struct {
	key     hotkeys.Key
	pressed bool
}

type fakeMachine struct {
	events   []recordedEvent
	decision keystate.Decision
}

func (m *fakeMachine) OnEvent(key hotkeys.Key, pressed bool) keystate.Decision {
	m.events = append(m.events, recordedEvent{key, pressed})
	return m.decision
}

type fakeExecutor struct {
	actions []hotkeys.Action
	err     error
}

func (e *fakeExecutor) Execute(action hotkeys.Action) error {
	e.actions = append(e.actions, action)
	return e.err
}

type fakeHook struct {
	mu       sync.Mutex
	handler  hotkeys.HandlerFunc
	startErr error
	stops    int
	done     chan struct{}
}

func newFakeHook() *fakeHook { return &fakeHook{done: make(chan struct{})} }

func (h *fakeHook) Start(handler hotkeys.HandlerFunc) error {
	if h.startErr != nil {
		return h.startErr
	}
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
	return nil
}

func (h *fakeHook) Done() <-chan struct{} { return h.done }

func (h *fakeHook) Stop() error {
	h.mu.Lock()
	h.stops++
	h.mu.Unlock()
	return nil
}

func TestHandleKeyEvent(t *testing.T) {
	switchLeft := hotkeys.SwitchDirection(hotkeys.DirLeft)
	tests := []struct {
		name         string
		event        hotkeys.KeyEvent
		decision     keystate.Decision
		execErr      error
		wantSuppress bool
		wantEvents   int
		wantActions  []hotkeys.Action
	}{
		{
			name:         "action executed and suppressed",
			event:        hotkeys.KeyEvent{Key: hotkeys.Letter('h'), Pressed: true},
			decision:     keystate.Decision{Action: switchLeft, Suppress: true, Rule: "caps+h"},
			wantSuppress: true,
			wantEvents:   1,
			wantActions:  []hotkeys.Action{switchLeft},
		},
		{
			name:         "pass through without action",
			event:        hotkeys.KeyEvent{Key: hotkeys.Letter('q'), Pressed: true},
			decision:     keystate.Decision{},
			wantSuppress: false,
			wantEvents:   1,
		},
		{
			name:         "suppress without action",
			event:        hotkeys.KeyEvent{Key: hotkeys.KeyCapsLock, Pressed: true},
			decision:     keystate.Decision{Suppress: true},
			wantSuppress: true,
			wantEvents:   1,
		},
		{
			name:         "failed action keeps the decision",
			event:        hotkeys.KeyEvent{Key: hotkeys.Letter('h'), Pressed: true},
			decision:     keystate.Decision{Action: switchLeft, Suppress: true},
			execErr:      errors.New("no monitors"),
			wantSuppress: true,
			wantEvents:   1,
			wantActions:  []hotkeys.Action{switchLeft},
		},
		{
			name:         "injected events bypass the machine",
			event:        hotkeys.KeyEvent{Key: hotkeys.KeyLShift, Pressed: false, Injected: true},
			decision:     keystate.Decision{Action: switchLeft, Suppress: true},
			wantSuppress: false,
			wantEvents:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := &fakeMachine{decision: tt.decision}
			executor := &fakeExecutor{err: tt.execErr}
			app := NewApp(machine, executor, newFakeHook(), nil, "")

			if got := app.handleKeyEvent(tt.event); got != tt.wantSuppress {
				t.Fatalf("suppress = %v, want %v", got, tt.wantSuppress)
			}
			if len(machine.events) != tt.wantEvents {
				t.Fatalf("machine saw %d events, want %d", len(machine.events), tt.wantEvents)
			}
			if len(executor.actions) != len(tt.wantActions) {
				t.Fatalf("executed %v, want %v", executor.actions, tt.wantActions)
			}
			for i := range tt.wantActions {
				if executor.actions[i] != tt.wantActions[i] {
					t.Fatalf("action[%d] = %v, want %v", i, executor.actions[i], tt.wantActions[i])
				}
			}
		})
	}
}

func TestHandleKeyEventWithRealMachine(t *testing.T) {
	cfg := hotkeys.DefaultConfig(hotkeys.SwitchIME())
	machine := keystate.New(&cfg, hotkeys.KeyCapsLock, hotkeys.KeyLShift)
	executor := &fakeExecutor{}
	app := NewApp(machine, executor, newFakeHook(), nil, "")

	steps := []struct {
		key          hotkeys.Key
		pressed      bool
		wantSuppress bool
	}{
		{hotkeys.KeyCapsLock, true, true},
		{hotkeys.Letter('l'), true, true},
		{hotkeys.Letter('l'), false, true},
		{hotkeys.KeyCapsLock, false, true},
		{hotkeys.KeyCapsLock, true, true},
		{hotkeys.KeyCapsLock, false, true},
	}
	for i, s := range steps {
		if got := app.handleKeyEvent(hotkeys.KeyEvent{Key: s.key, Pressed: s.pressed}); got != s.wantSuppress {
			t.Fatalf("step %d suppress = %v, want %v", i, got, s.wantSuppress)
		}
	}

	want := []hotkeys.Action{hotkeys.SwitchDirection(hotkeys.DirRight), hotkeys.SwitchIME()}
	if len(executor.actions) != len(want) {
		t.Fatalf("executed %v, want %v", executor.actions, want)
	}
	for i := range want {
		if executor.actions[i] != want[i] {
			t.Fatalf("action[%d] = %v, want %v", i, executor.actions[i], want[i])
		}
	}
}

func TestStartupHookFailure(t *testing.T) {
	hook := newFakeHook()
	hook.startErr = hotkeys.ErrUnsupported
	app := NewApp(&fakeMachine{}, &fakeExecutor{}, hook, nil, "")

	if err := app.startup(context.Background()); !errors.Is(err, hotkeys.ErrUnsupported) {
		t.Fatalf("startup() error = %v, want ErrUnsupported", err)
	}
}

func TestLifecycle(t *testing.T) {
	hook := newFakeHook()
	app := NewApp(&fakeMachine{}, &fakeExecutor{}, hook, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	if err := app.startup(ctx); err != nil {
		t.Fatalf("startup() error = %v", err)
	}
	hook.mu.Lock()
	installed := hook.handler != nil
	hook.mu.Unlock()
	if !installed {
		t.Fatal("handler not installed")
	}

	cancel()
	app.wait(ctx)
	app.shutdown()
	if hook.stops != 1 {
		t.Fatalf("hook stops = %d, want 1", hook.stops)
	}
}

func TestWaitReturnsWhenHookExits(t *testing.T) {
	hook := newFakeHook()
	app := NewApp(&fakeMachine{}, &fakeExecutor{}, hook, nil, "")
	close(hook.done)

	finished := make(chan struct{})
	go func() {
		app.wait(context.Background())
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("wait did not return after hook exit")
	}
}

func TestWaitWithTimeout(t *testing.T) {
	if !waitWithTimeout(func() {}, time.Second) {
		t.Fatal("immediate waitFn should finish")
	}
	block := make(chan struct{})
	defer close(block)
	if waitWithTimeout(func() { <-block }, 10*time.Millisecond) {
		t.Fatal("blocked waitFn should time out")
	}
}
