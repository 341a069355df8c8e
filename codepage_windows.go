//go:build windows

package main

import (
	"log/slog"

	"golang.org/x/sys/windows"
)

const codePageUTF8 = 65001

// setConsoleUTF8 lets window titles with non-ASCII text reach the log intact.
// It fails harmlessly when the process has no console.
func setConsoleUTF8() {
	if err := windows.SetConsoleOutputCP(codePageUTF8); err != nil {
		slog.Debug("[DEBUG-CONSOLE] SetConsoleOutputCP failed", "error", err)
	}
	if err := windows.SetConsoleCP(codePageUTF8); err != nil {
		slog.Debug("[DEBUG-CONSOLE] SetConsoleCP failed", "error", err)
	}
}
