//go:build windows

package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"fncaps/internal/workerutil"

	"golang.org/x/sys/windows"
)

var (
	user32DLL = windows.NewLazySystemDLL("user32.dll")

	procSetWindowsHookExW   = user32DLL.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32DLL.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32DLL.NewProc("CallNextHookEx")
	procGetMessageW         = user32DLL.NewProc("GetMessageW")
	procTranslateMessage    = user32DLL.NewProc("TranslateMessage")
	procDispatchMessageW    = user32DLL.NewProc("DispatchMessageW")
	procPostThreadMessageW  = user32DLL.NewProc("PostThreadMessageW")
	procPeekMessageW        = user32DLL.NewProc("PeekMessageW")
)

const (
	whKeyboardLL = 13

	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
	wmQuit       = 0x0012
	pmNoRemove   = 0x0000

	llkhfInjected = 0x00000010
)

// activeHandler is read by the hook callback. The OS calls the callback on
// the thread that installed the hook, so only one hook per process is kept.
var activeHandler atomic.Pointer[HandlerFunc]

// keyboardProc is created once; syscall callbacks are never freed.
var keyboardProc = windows.NewCallback(lowLevelKeyboardProc)

// kbdllHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

// point mirrors the Win32 POINT struct.
type point struct {
	x int32
	y int32
}

// winMsg mirrors the Win32 MSG struct (tagMSG from winuser.h).
// Field order and types must not be changed -- the layout must match
// the Win32 binary layout on both 32-bit and 64-bit Windows.
type winMsg struct {
	hWnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

type activeHook struct {
	threadID uint32
	handle   uintptr
	doneCh   chan struct{}
}

type loopReady struct {
	threadID uint32
	err      error
}

// Hook installs a WH_KEYBOARD_LL hook on a dedicated OS thread.
type Hook struct {
	mu     sync.Mutex
	active *activeHook
}

// NewHook creates an idle hook.
func NewHook() *Hook {
	return &Hook{}
}

// Start installs the hook and routes every key event through handler.
// It returns once the hook is installed or installation failed.
func (h *Hook) Start(handler HandlerFunc) error {
	if handler == nil {
		return errors.New("hook handler is required")
	}
	if err := user32DLL.Load(); err != nil {
		return fmt.Errorf("user32.dll is unavailable: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active != nil {
		return ErrHookActive
	}
	if !activeHandler.CompareAndSwap(nil, &handler) {
		return ErrHookActive
	}

	readyCh := make(chan loopReady, 1)
	doneCh := make(chan struct{})
	handleCh := make(chan uintptr, 1)

	go runHookLoop(readyCh, handleCh, doneCh)

	ready := <-readyCh
	if ready.err != nil {
		activeHandler.Store(nil)
		return fmt.Errorf("install keyboard hook: %w", ready.err)
	}

	h.active = &activeHook{
		threadID: ready.threadID,
		handle:   <-handleCh,
		doneCh:   doneCh,
	}
	slog.Info("[DEBUG-HOOK] low-level keyboard hook installed", "threadID", ready.threadID)
	return nil
}

// Done is closed when the hook message loop exits. It returns nil when the
// hook is not running.
func (h *Hook) Done() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return nil
	}
	return h.active.doneCh
}

// Stop removes the hook and ends its message loop.
func (h *Hook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return nil
	}
	ah := h.active
	h.active = nil
	defer activeHandler.Store(nil)

	stopErr := postQuit(ah.threadID)

	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()
	select {
	case <-ah.doneCh:
	case <-timer.C:
		slog.Warn("[DEBUG-HOOK] message loop stop timed out, hook thread may leak", "threadID", ah.threadID)
		stopErr = errors.Join(stopErr, fmt.Errorf("hook message loop stop timed out (threadID=%d)", ah.threadID))
	}
	return stopErr
}

func runHookLoop(readyCh chan<- loopReady, handleCh chan<- uintptr, doneCh chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(doneCh)

	threadID := windows.GetCurrentThreadId()

	// Force creation of the thread message queue so that WM_QUIT posted by
	// Stop is delivered.
	var qmsg winMsg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&qmsg)), 0, 0, 0, pmNoRemove)

	handle, _, err := procSetWindowsHookExW.Call(whKeyboardLL, keyboardProc, 0, 0)
	if handle == 0 {
		if err == syscall.Errno(0) {
			err = errors.New("SetWindowsHookExW failed")
		}
		readyCh <- loopReady{err: err}
		return
	}
	defer func() {
		if ret, _, err := procUnhookWindowsHookEx.Call(handle); ret == 0 {
			slog.Error("[DEBUG-HOOK] UnhookWindowsHookEx failed", "error", err)
		}
	}()

	readyCh <- loopReady{threadID: threadID}
	handleCh <- handle

	for {
		var msg winMsg
		ret, _, lastErr := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			slog.Warn("[DEBUG-HOOK] GetMessageW returned error, exiting loop", "error", lastErr)
			return
		case 0:
			slog.Info("[DEBUG-HOOK] message loop received WM_QUIT, exiting normally")
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func lowLevelKeyboardProc(nCode uintptr, wParam uintptr, lParam uintptr) uintptr {
	if int32(nCode) < 0 {
		return callNextHook(nCode, wParam, lParam)
	}
	handler := activeHandler.Load()
	if handler == nil {
		return callNextHook(nCode, wParam, lParam)
	}

	var pressed bool
	switch wParam {
	case wmKeyDown, wmSysKeyDown:
		pressed = true
	case wmKeyUp, wmSysKeyUp:
		pressed = false
	default:
		return callNextHook(nCode, wParam, lParam)
	}

	info := (*kbdllHookStruct)(unsafe.Pointer(lParam))
	ev := KeyEvent{
		Key:      Key(info.vkCode),
		Pressed:  pressed,
		Injected: info.flags&llkhfInjected != 0,
	}

	suppress := false
	func() {
		defer func() {
			if workerutil.Recover("keyboard-hook", recover()) {
				suppress = false
			}
		}()
		suppress = (*handler)(ev)
	}()

	if suppress {
		return 1
	}
	return callNextHook(nCode, wParam, lParam)
}

func callNextHook(nCode, wParam, lParam uintptr) uintptr {
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func postQuit(threadID uint32) error {
	if threadID == 0 {
		return errors.New("cannot post WM_QUIT: threadID is 0")
	}
	res, _, err := procPostThreadMessageW.Call(uintptr(threadID), wmQuit, 0, 0)
	if res != 0 {
		return nil
	}
	if err == syscall.Errno(0) {
		return errors.New("PostThreadMessageW failed")
	}
	return err
}
