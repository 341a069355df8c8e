//go:build windows

package ime

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	imm32  = windows.NewLazySystemDLL("imm32.dll")

	procGetKeyboardLayout   = user32.NewProc("GetKeyboardLayout")
	procPostMessageW        = user32.NewProc("PostMessageW")
	procSendMessageW        = user32.NewProc("SendMessageW")
	procImmGetDefaultIMEWnd = imm32.NewProc("ImmGetDefaultIMEWnd")
)

const (
	wmInputLangChangeRequest = 0x0050
	wmIMEControl             = 0x0283

	imcGetConversionMode = 0x0001
	imcSetConversionMode = 0x0002
)

// Win32Host implements Host with user32 and imm32.
type Win32Host struct{}

// NewHost returns the Win32 host.
func NewHost() Host {
	return Win32Host{}
}

func (Win32Host) Foreground() uintptr {
	return uintptr(windows.GetForegroundWindow())
}

func (h Win32Host) Layout() (uint16, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return 0, ErrNoForeground
	}
	tid, err := windows.GetWindowThreadProcessId(hwnd, nil)
	if tid == 0 {
		return 0, fmt.Errorf("GetWindowThreadProcessId: %w", err)
	}
	hkl, _, _ := procGetKeyboardLayout.Call(uintptr(tid))
	return uint16(hkl & 0xFFFF), nil
}

func (Win32Host) RequestLayout(locale uint32) error {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return ErrNoForeground
	}
	ret, _, err := procPostMessageW.Call(uintptr(hwnd), wmInputLangChangeRequest, 0, uintptr(locale))
	if ret == 0 {
		return fmt.Errorf("PostMessageW: %w", err)
	}
	return nil
}

func (Win32Host) imeWindow() (uintptr, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return 0, ErrNoForeground
	}
	if err := imm32.Load(); err != nil {
		return 0, fmt.Errorf("imm32.dll is unavailable: %w", err)
	}
	imeWnd, _, _ := procImmGetDefaultIMEWnd.Call(uintptr(hwnd))
	if imeWnd == 0 {
		return 0, ErrNoIMEWindow
	}
	return imeWnd, nil
}

func (h Win32Host) ConversionMode() (int, error) {
	imeWnd, err := h.imeWindow()
	if err != nil {
		return 0, err
	}
	mode, _, _ := procSendMessageW.Call(imeWnd, wmIMEControl, imcGetConversionMode, 0)
	return int(mode), nil
}

func (h Win32Host) SetConversionMode(mode int) error {
	if mode < 0 {
		return fmt.Errorf("invalid conversion mode %d", mode)
	}
	imeWnd, err := h.imeWindow()
	if err != nil {
		return err
	}
	procSendMessageW.Call(imeWnd, wmIMEControl, imcSetConversionMode, uintptr(mode))
	return nil
}
