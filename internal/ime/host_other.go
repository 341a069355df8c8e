//go:build !windows

package ime

type unsupportedHost struct{}

// NewHost returns a host that reports ErrUnsupported.
func NewHost() Host {
	return unsupportedHost{}
}

func (unsupportedHost) Foreground() uintptr          { return 0 }
func (unsupportedHost) Layout() (uint16, error)      { return 0, ErrUnsupported }
func (unsupportedHost) RequestLayout(uint32) error   { return ErrUnsupported }
func (unsupportedHost) ConversionMode() (int, error) { return 0, ErrUnsupported }
func (unsupportedHost) SetConversionMode(int) error  { return ErrUnsupported }
