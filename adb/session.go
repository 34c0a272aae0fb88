package adb

import (
	"context"
	"sync"
)

// Session scopes a device connection: the binary is probed once on open
// and every operation goes through the same client until Close. Using a
// closed session is a typed failure instead of a stray exec.
type Session struct {
	client *Client

	mu     sync.Mutex
	closed bool
}

// ErrSessionClosed is returned for operations on a closed session.
var ErrSessionClosed = &DeviceError{Op: "session", Err: context.Canceled, Stderr: "session closed"}

// Open probes the adb binary and returns a ready session.
func Open(ctx context.Context, c *Client) (*Session, error) {
	if err := c.Probe(ctx); err != nil {
		return nil, err
	}
	return &Session{client: c}, nil
}

func (s *Session) guard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// Screencap captures a screenshot into dir. See Client.Screencap.
func (s *Session) Screencap(ctx context.Context, dir string) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	return s.client.Screencap(ctx, dir)
}

// KeyEvent injects a key press. See Client.KeyEvent.
func (s *Session) KeyEvent(ctx context.Context, code int) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.client.KeyEvent(ctx, code)
}

// Close releases the session. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
