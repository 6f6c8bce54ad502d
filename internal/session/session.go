// Package session owns the signed-in user: login, logout, and restoring the
// persisted record at startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/joss/storefront/internal/logging"
	"github.com/joss/storefront/internal/store"
)

var (
	// ErrMissingCredentials is returned before any network call when a field is blank.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrInvalidCredentials is returned when the API rejects the login.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Session is the locally held proof of authentication.
type Session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (s Session) valid() bool {
	return s.Username != "" && s.Token != ""
}

// Authenticator exchanges credentials for a token. catalog.Client satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// Manager holds the process-wide session. Construct one at startup and
// share it; it is safe for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	kv   store.KV
	auth Authenticator
	user *Session
	log  *logging.Logger
}

// NewManager creates a manager with no session. Call Restore before use.
func NewManager(kv store.KV, auth Authenticator) *Manager {
	return &Manager{
		kv:   kv,
		auth: auth,
		log:  logging.New("session"),
	}
}

// Restore loads the persisted session, if any. A missing or malformed
// record leaves the manager signed out; nothing is reported to the caller.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil

	raw, err := m.kv.Get(ctx, store.KeySession)
	if err != nil {
		if !store.IsNotFound(err) {
			m.log.Warn("restore_failed", nil, err)
		}
		return
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		m.log.Warn("restore_malformed", nil, err)
		return
	}
	if !s.valid() {
		m.log.Warn("restore_malformed", nil, errors.New("incomplete session record"))
		return
	}
	m.user = &s
}

// Login authenticates once against the API. On success the session is
// persisted and then becomes current, replacing any previous one. On any
// failure the current state is left untouched.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	log := m.log.WithContext(ctx)
	token, err := m.auth.Authenticate(ctx, username, password)
	if err != nil {
		if isRejected(err) {
			log.Info("login_rejected", map[string]interface{}{"username": username})
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		log.Warn("login_failed", map[string]interface{}{"username": username}, err)
		return fmt.Errorf("login: %w", err)
	}

	s := Session{Username: username, Token: token}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("login: encode session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.kv.Set(ctx, store.KeySession, string(data)); err != nil {
		log.Warn("persist_failed", nil, err)
		return fmt.Errorf("login: save session: %w", err)
	}
	m.user = &s
	return nil
}

// Logout forgets the session. Memory is always cleared; a failure to remove
// the persisted record is logged and returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil

	if err := m.kv.Remove(ctx, store.KeySession); err != nil {
		m.log.WithContext(ctx).Warn("logout_remove_failed", nil, err)
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// User returns the current session and whether one exists.
func (m *Manager) User() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return Session{}, false
	}
	return *m.user, true
}

// Authenticated reports whether a session exists.
func (m *Manager) Authenticated() bool {
	_, ok := m.User()
	return ok
}

// Token returns the current token or "". It fits catalog.WithTokenSource.
func (m *Manager) Token() string {
	s, _ := m.User()
	return s.Token
}
