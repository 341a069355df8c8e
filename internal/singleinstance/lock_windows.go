//go:build windows

package singleinstance

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isAddrInUse also accepts WSAEACCES, which Windows reports when the other
// holder bound the port with SO_EXCLUSIVEADDRUSE.
func isAddrInUse(err error) bool {
	return errors.Is(err, windows.WSAEADDRINUSE) || errors.Is(err, windows.WSAEACCES)
}
