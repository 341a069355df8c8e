//go:build windows

package winselect

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procIsZoomed            = user32.NewProc("IsZoomed")
	procWindowFromPoint     = user32.NewProc("WindowFromPoint")
	procGetAncestor         = user32.NewProc("GetAncestor")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
	procShowWindow          = user32.NewProc("ShowWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procSetCursorPos        = user32.NewProc("SetCursorPos")
)

const (
	gaRoot = 2
	swShow = 5

	maxTitleLen = 512
)

// monitorInfo mirrors MONITORINFO.
type monitorInfo struct {
	cbSize    uint32
	rcMonitor Rect
	rcWork    Rect
	dwFlags   uint32
}

// Enumeration callbacks are created once; Windows callbacks cannot be freed.
// collectMu serializes enumerations that share the package-level sinks.
var (
	collectMu        sync.Mutex
	collectedWindows []uintptr
	collectedMonitor []Rect

	enumWindowsCallback = windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		collectedWindows = append(collectedWindows, hwnd)
		return 1
	})
	enumMonitorsCallback = windows.NewCallback(func(hmonitor, _, _, _ uintptr) uintptr {
		info := monitorInfo{cbSize: uint32(unsafe.Sizeof(monitorInfo{}))}
		if ret, _, _ := procGetMonitorInfoW.Call(hmonitor, uintptr(unsafe.Pointer(&info))); ret != 0 {
			collectedMonitor = append(collectedMonitor, info.rcMonitor)
		}
		return 1
	})
)

// Win32Desktop implements Desktop with user32.
type Win32Desktop struct{}

// NewDesktop returns the user32-backed desktop.
func NewDesktop() Desktop {
	return Win32Desktop{}
}

func (Win32Desktop) Monitors() ([]Rect, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("user32.dll is unavailable: %w", err)
	}
	collectMu.Lock()
	defer collectMu.Unlock()
	collectedMonitor = nil
	ret, _, err := procEnumDisplayMonitors.Call(0, 0, enumMonitorsCallback, 0)
	if ret == 0 {
		return nil, callErr("EnumDisplayMonitors", err)
	}
	out := collectedMonitor
	collectedMonitor = nil
	return out, nil
}

func (Win32Desktop) TopLevelWindows() ([]uintptr, error) {
	collectMu.Lock()
	defer collectMu.Unlock()
	collectedWindows = nil
	if err := windows.EnumWindows(enumWindowsCallback, nil); err != nil {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	out := collectedWindows
	collectedWindows = nil
	return out, nil
}

func (Win32Desktop) IsVisible(hwnd uintptr) bool {
	return windows.IsWindowVisible(windows.HWND(hwnd))
}

func (Win32Desktop) Title(hwnd uintptr) string {
	buf := make([]uint16, maxTitleLen)
	ret, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	n := int(int32(ret))
	if n <= 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:min(n, len(buf))])
}

func (Win32Desktop) ProcessID(hwnd uintptr) uint32 {
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(hwnd), &pid); err != nil {
		return 0
	}
	return pid
}

func (Win32Desktop) WindowRect(hwnd uintptr) (Rect, bool) {
	var r Rect
	ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	return r, ret != 0
}

func (Win32Desktop) IsMaximized(hwnd uintptr) bool {
	ret, _, _ := procIsZoomed.Call(hwnd)
	return ret != 0
}

func (Win32Desktop) Root(hwnd uintptr) uintptr {
	ret, _, _ := procGetAncestor.Call(hwnd, gaRoot)
	return ret
}

func (d Win32Desktop) RootAt(p Point) uintptr {
	// POINT is passed by value: one register on 64-bit, two stack slots on 386.
	var hwnd uintptr
	if unsafe.Sizeof(uintptr(0)) == 8 {
		hwnd, _, _ = procWindowFromPoint.Call(uintptr(uint64(uint32(p.X)) | uint64(uint32(p.Y))<<32))
	} else {
		hwnd, _, _ = procWindowFromPoint.Call(uintptr(p.X), uintptr(p.Y))
	}
	if hwnd == 0 {
		return 0
	}
	return d.Root(hwnd)
}

func (Win32Desktop) Foreground() uintptr {
	return uintptr(windows.GetForegroundWindow())
}

func (Win32Desktop) Focus(hwnd uintptr) error {
	procShowWindow.Call(hwnd, swShow)
	if ret, _, err := procSetForegroundWindow.Call(hwnd); ret == 0 {
		return callErr("SetForegroundWindow", err)
	}
	return nil
}

func (Win32Desktop) SetCursor(p Point) error {
	if ret, _, err := procSetCursorPos.Call(uintptr(p.X), uintptr(p.Y)); ret == 0 {
		return callErr("SetCursorPos", err)
	}
	return nil
}

func callErr(name string, err error) error {
	if err == nil || errors.Is(err, syscall.Errno(0)) {
		return fmt.Errorf("%s failed", name)
	}
	return fmt.Errorf("%s: %w", name, err)
}
