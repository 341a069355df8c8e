//go:build !windows

package dispatch

import (
	"errors"

	"fncaps/internal/hotkeys"
)

var errInputUnsupported = errors.New("input injection is only supported on Windows")

type unsupportedInput struct{}

// NewInput returns an injector that reports errors off Windows.
func NewInput() Input {
	return unsupportedInput{}
}

func (unsupportedInput) IsDown(hotkeys.Key) bool   { return false }
func (unsupportedInput) KeyDown(hotkeys.Key) error { return errInputUnsupported }
func (unsupportedInput) KeyUp(hotkeys.Key) error   { return errInputUnsupported }
func (unsupportedInput) Wheel(int) error           { return errInputUnsupported }
