package singleinstance

import (
	"errors"
	"net"
	"testing"
)

func TestTryLock(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "first lock succeeds",
			run: func(t *testing.T) {
				lock, err := TryLock("127.0.0.1:0")
				if err != nil {
					t.Fatalf("TryLock failed: %v", err)
				}
				if lock.Addr() == "" {
					t.Fatal("locked address is empty")
				}
				if err := lock.Release(); err != nil {
					t.Fatalf("Release failed: %v", err)
				}
			},
		},
		{
			name: "second lock returns ErrAlreadyRunning",
			run: func(t *testing.T) {
				lock1, err := TryLock("127.0.0.1:0")
				if err != nil {
					t.Fatalf("first TryLock failed: %v", err)
				}
				defer lock1.Release()

				lock2, err := TryLock(lock1.Addr())
				if !errors.Is(err, ErrAlreadyRunning) {
					t.Fatalf("second TryLock: got err=%v, want ErrAlreadyRunning", err)
				}
				if lock2 != nil {
					t.Fatal("second TryLock returned non-nil lock on ErrAlreadyRunning")
				}
			},
		},
		{
			name: "lock reacquirable after release",
			run: func(t *testing.T) {
				lock1, err := TryLock("127.0.0.1:0")
				if err != nil {
					t.Fatalf("first TryLock failed: %v", err)
				}
				addr := lock1.Addr()
				if err := lock1.Release(); err != nil {
					t.Fatalf("Release failed: %v", err)
				}

				lock2, err := TryLock(addr)
				if err != nil {
					t.Fatalf("second TryLock after release failed: %v", err)
				}
				defer lock2.Release()
			},
		},
		{
			name: "release idempotent and nil safe",
			run: func(t *testing.T) {
				lock, err := TryLock("127.0.0.1:0")
				if err != nil {
					t.Fatalf("TryLock failed: %v", err)
				}
				if err := lock.Release(); err != nil {
					t.Fatalf("first Release failed: %v", err)
				}
				if err := lock.Release(); err != nil {
					t.Fatalf("second Release should be no-op, got: %v", err)
				}
				var nilLock *Lock
				if err := nilLock.Release(); err != nil {
					t.Fatalf("nil Release should be no-op, got: %v", err)
				}
			},
		},
		{
			name: "empty address returns error",
			run: func(t *testing.T) {
				if lock, err := TryLock(""); err == nil || lock != nil {
					t.Fatalf("TryLock(\"\") = %v, %v; want error", lock, err)
				}
			},
		},
		{
			name: "other bind errors are not ErrAlreadyRunning",
			run: func(t *testing.T) {
				orig := listen
				t.Cleanup(func() { listen = orig })
				boom := errors.New("no network stack")
				listen = func(string, string) (net.Listener, error) { return nil, boom }

				_, err := TryLock(DefaultAddress)
				if errors.Is(err, ErrAlreadyRunning) || !errors.Is(err, boom) {
					t.Fatalf("TryLock error = %v, want wrapped %v", err, boom)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.run)
	}
}
