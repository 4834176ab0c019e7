// Package gate guards destructive booking operations behind the admin passcode.
package gate

import (
	"crypto/subtle"
	"errors"
	"sync"
)

var (
	ErrIncorrectPasscode = errors.New("Incorrect passcode.")
	ErrUnauthorized      = errors.New("Admin passcode required.")
	ErrEmptySecret       = errors.New("admin passcode must not be empty")
)

// Gate compares supplied passcodes against one configured secret.
type Gate struct {
	secret []byte
}

func New(secret string) (*Gate, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Gate{secret: []byte(secret)}, nil
}

// Verify reports whether passcode matches the secret without touching any session.
func (g *Gate) Verify(passcode string) error {
	if subtle.ConstantTimeCompare([]byte(passcode), g.secret) != 1 {
		return ErrIncorrectPasscode
	}
	return nil
}

// Unlock marks s unlocked on a match. A mismatch locks s.
func (g *Gate) Unlock(s *Session, passcode string) error {
	if err := g.Verify(passcode); err != nil {
		s.set(false)
		return err
	}
	s.set(true)
	return nil
}

func (g *Gate) Lock(s *Session) {
	s.set(false)
}

// Authorize accepts an unlocked session or a matching passcode.
func (g *Gate) Authorize(c Credential) error {
	if c == nil || !c.authorizedBy(g) {
		return ErrUnauthorized
	}
	return nil
}

// Credential is proof of admin access offered with a destructive call.
type Credential interface {
	authorizedBy(g *Gate) bool
}

// Passcode is a passcode supplied with the request itself.
type Passcode string

func (p Passcode) authorizedBy(g *Gate) bool {
	return g.Verify(string(p)) == nil
}

// Session is the admin session of one client. The zero value is locked.
type Session struct {
	mu       sync.RWMutex
	unlocked bool
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) IsUnlocked() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unlocked
}

func (s *Session) set(unlocked bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.unlocked = unlocked
	s.mu.Unlock()
}

func (s *Session) authorizedBy(_ *Gate) bool {
	return s.IsUnlocked()
}
