// Package procutil adjusts exec.Cmd process attributes for programs the
// engine launches on the user's behalf.
package procutil
