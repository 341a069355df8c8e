//go:build !windows

package procutil

import "os/exec"

// Detach is a no-op on non-Windows platforms.
func Detach(_ *exec.Cmd) {}
