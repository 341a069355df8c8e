// Package singleinstance keeps a second engine from installing a competing
// keyboard hook. The token is a bound loopback TCP port; the OS releases it
// when the process exits, so a crash never leaves a stale lock behind.
package singleinstance

import (
	"errors"
	"fmt"
	"net"
)

// DefaultAddress is the loopback port held for the engine's lifetime.
const DefaultAddress = "127.0.0.1:23982"

// ErrAlreadyRunning is returned by TryLock when another process holds the port.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock holds the bound listener. Nothing is ever accepted on it.
type Lock struct {
	ln net.Listener
}

// listen is a test seam.
var listen = net.Listen

// TryLock binds addr. It returns ErrAlreadyRunning when the address is in use.
func TryLock(addr string) (*Lock, error) {
	if addr == "" {
		return nil, errors.New("lock address is required")
	}
	ln, err := listen("tcp", addr)
	if err != nil {
		if isAddrInUse(err) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return &Lock{ln: ln}, nil
}

// Addr returns the bound address, or "" for a released lock.
func (l *Lock) Addr() string {
	if l == nil || l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

// Release closes the listener. Safe to call on nil receiver and idempotent.
func (l *Lock) Release() error {
	if l == nil || l.ln == nil {
		return nil
	}
	err := l.ln.Close()
	l.ln = nil
	return err
}
