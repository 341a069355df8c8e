//go:build windows

package dispatch

import (
	"fmt"
	"unsafe"

	"fncaps/internal/hotkeys"

	"golang.org/x/sys/windows"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procSendInput   = user32.NewProc("SendInput")
	procGetKeyState = user32.NewProc("GetKeyState")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	keyEventFKeyUp  = 0x0002
	mouseEventWheel = 0x0800
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// keyboardEvent mirrors INPUT with the KEYBDINPUT arm; padding widens it to
// the MOUSEINPUT arm, the largest member of the union.
type keyboardEvent struct {
	inputType uint32
	ki        keyboardInput
	padding   uint64
}

type mouseInput struct {
	dx          int32
	dy          int32
	mouseData   uint32
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type mouseEvent struct {
	inputType uint32
	mi        mouseInput
}

// SystemInput injects events with SendInput.
type SystemInput struct{}

// NewInput returns the SendInput-backed injector.
func NewInput() Input {
	return SystemInput{}
}

func (SystemInput) IsDown(key hotkeys.Key) bool {
	ret, _, _ := procGetKeyState.Call(uintptr(key))
	return int16(ret) < 0
}

func (SystemInput) KeyDown(key hotkeys.Key) error {
	return sendKey(key, 0)
}

func (SystemInput) KeyUp(key hotkeys.Key) error {
	return sendKey(key, keyEventFKeyUp)
}

func (SystemInput) Wheel(delta int) error {
	ev := mouseEvent{
		inputType: inputMouse,
		mi: mouseInput{
			mouseData: uint32(int32(delta)),
			dwFlags:   mouseEventWheel,
		},
	}
	return sendInput(unsafe.Pointer(&ev), unsafe.Sizeof(ev))
}

func sendKey(key hotkeys.Key, flags uint32) error {
	ev := keyboardEvent{
		inputType: inputKeyboard,
		ki: keyboardInput{
			wVk:     uint16(key),
			dwFlags: flags,
		},
	}
	return sendInput(unsafe.Pointer(&ev), unsafe.Sizeof(ev))
}

func sendInput(ev unsafe.Pointer, size uintptr) error {
	n, _, err := procSendInput.Call(1, uintptr(ev), size)
	if n != 1 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}
