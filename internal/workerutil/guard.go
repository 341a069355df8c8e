package workerutil

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover logs a value obtained from recover() together with the stack and
// reports whether a panic actually happened. Call it as
//
//	defer func() { workerutil.Recover("name", recover()) }()
func Recover(worker string, recovered any) bool {
	if recovered == nil {
		return false
	}
	slog.Error("[DEBUG-PANIC] recovered from panic",
		"worker", worker,
		"panic", recovered,
		"stack", string(debug.Stack()),
	)
	return true
}

// PanicError is returned by Guard when fn panicked.
type PanicError struct {
	Worker string
	Value  any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Worker, e.Value)
}

// Guard runs fn once and converts a panic into a *PanicError. It never
// retries; callers on the keyboard-hook path must not block.
func Guard(worker string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			Recover(worker, r)
			err = &PanicError{Worker: worker, Value: r}
		}
	}()
	return fn()
}
