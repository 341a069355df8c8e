//go:build !windows

package winselect

// unsupportedDesktop reports ErrUnsupported for every enumeration.
type unsupportedDesktop struct{}

// NewDesktop returns a desktop with no monitors or windows.
func NewDesktop() Desktop {
	return unsupportedDesktop{}
}

func (unsupportedDesktop) Monitors() ([]Rect, error)           { return nil, ErrUnsupported }
func (unsupportedDesktop) TopLevelWindows() ([]uintptr, error) { return nil, ErrUnsupported }
func (unsupportedDesktop) IsVisible(uintptr) bool              { return false }
func (unsupportedDesktop) Title(uintptr) string                { return "" }
func (unsupportedDesktop) ProcessID(uintptr) uint32            { return 0 }
func (unsupportedDesktop) WindowRect(uintptr) (Rect, bool)     { return Rect{}, false }
func (unsupportedDesktop) IsMaximized(uintptr) bool            { return false }
func (unsupportedDesktop) Root(uintptr) uintptr                { return 0 }
func (unsupportedDesktop) RootAt(Point) uintptr                { return 0 }
func (unsupportedDesktop) Foreground() uintptr                 { return 0 }
func (unsupportedDesktop) Focus(uintptr) error                 { return ErrUnsupported }
func (unsupportedDesktop) SetCursor(Point) error               { return ErrUnsupported }
