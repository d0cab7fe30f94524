// Package session reads and writes the authenticated user session: an opaque
// bearer token plus the denormalized user object, both produced by the
// backend's auth endpoints. The session lives in the preference store under
// its own keys, so login and logout propagate to other uniscope processes
// the same way favorites do.
//
// Require is the single authentication gate. Call sites never inspect the
// token themselves; they ask for a session and surface ErrNotAuthenticated
// however their UI prompts for login.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"uniscope/internal/bus"
	"uniscope/internal/gateway"
	"uniscope/internal/prefs"
)

// Store keys for the session halves (the cookie analogs).
const (
	KeyToken = "auth_token"
	KeyUser  = "user_data"
)

// ErrNotAuthenticated is returned by Require when no session is present.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is a live authenticated session.
type Session struct {
	Token string
	User  gateway.User
}

// Manager loads and persists the session.
type Manager struct {
	store  prefs.Store
	bus    bus.ChangeBus
	logger *zap.Logger
}

// NewManager builds a Manager over the given store and bus.
func NewManager(store prefs.Store, b bus.ChangeBus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, bus: b, logger: logger}
}

// Current returns the session, or nil when absent or unreadable. Corrupt
// session data degrades to "logged out" rather than an error.
func (m *Manager) Current() *Session {
	tokenData, err := m.store.Read(KeyToken)
	if err != nil {
		return nil
	}
	var token string
	if err := json.Unmarshal(tokenData, &token); err != nil || token == "" {
		m.logger.Warn("unreadable auth token, treating as logged out")
		return nil
	}

	userData, err := m.store.Read(KeyUser)
	if err != nil {
		return nil
	}
	var user gateway.User
	if err := json.Unmarshal(userData, &user); err != nil {
		m.logger.Warn("unreadable user data, treating as logged out", zap.Error(err))
		return nil
	}

	return &Session{Token: token, User: user}
}

// Require returns the session or ErrNotAuthenticated. This is the one place
// auth is checked; callers decide how to prompt.
func (m *Manager) Require() (*Session, error) {
	s := m.Current()
	if s == nil {
		return nil, ErrNotAuthenticated
	}
	return s, nil
}

// Save persists a fresh session (after login or register) and notifies
// subscribers of both keys.
func (m *Manager) Save(token string, user gateway.User) error {
	tokenData, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Write(KeyToken, tokenData); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := m.store.Write(KeyUser, userData); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	m.bus.Publish(KeyToken)
	m.bus.Publish(KeyUser)
	return nil
}

// Clear logs out: both session halves are removed and subscribers notified.
func (m *Manager) Clear() error {
	if err := m.store.Delete(KeyToken); err != nil {
		return err
	}
	if err := m.store.Delete(KeyUser); err != nil {
		return err
	}
	m.bus.Publish(KeyToken)
	m.bus.Publish(KeyUser)
	return nil
}

// UpdateUser refreshes the cached user object after a profile edit while
// keeping the token.
func (m *Manager) UpdateUser(user gateway.User) error {
	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Write(KeyUser, userData); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	m.bus.Publish(KeyUser)
	return nil
}
