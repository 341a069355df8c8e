package testutil

import (
	"testing"
	"time"
)

// Ptr returns a pointer to v, for optional fields in struct literals.
func Ptr[T any](v T) *T { return &v }

// WaitFor polls cond every few milliseconds until it holds or timeout
// elapses, failing the test with msg on timeout.
func WaitFor(t *testing.T, timeout time.Duration, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %v: %s", timeout, msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
