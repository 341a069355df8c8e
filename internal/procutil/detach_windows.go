//go:build windows

package procutil

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// detachFlags gives the child its own process group, so console Ctrl+C
// aimed at the engine does not reach it, and its own console when it is a
// console program.
const detachFlags = windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_NEW_CONSOLE

// Detach configures cmd to run independently of the launching process.
// Preserves any existing SysProcAttr fields that were set before this call.
func Detach(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= detachFlags
}
