// Package session holds the signed-in user's credentials. A *Session is
// passed explicitly to everything that needs the bearer token; nothing reads
// it from ambient state.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"finadvisor/internal/logger"
)

// State is the persisted part of a session.
type State struct {
	AccessToken  string
	RefreshToken string
	DisplayName  string
	Email        string
	UserID       int
}

// Store persists a session between process runs.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state State) error
	Delete(ctx context.Context) error
}

// Claims are the fields the backend puts in its access tokens. The client
// never verifies the signature; it only reads the payload to show who is
// signed in and when the token runs out.
type Claims struct {
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Session is the process-wide auth state. It is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	state State
	store Store
}

// New creates an empty session backed by store. A nil store keeps the
// session in memory only.
func New(store Store) *Session {
	return &Session{store: store}
}

// Restore loads a previously saved session from the store, if any.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if state == nil {
		return nil
	}
	s.mu.Lock()
	s.state = *state
	s.mu.Unlock()
	return nil
}

// Token returns the current access token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// DisplayName returns the name shown in the UI for the signed-in user.
func (s *Session) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.DisplayName
}

// Snapshot returns a copy of the full state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Active reports whether an access token is present.
func (s *Session) Active() bool {
	return s.Token() != ""
}

// Set replaces the session state and persists it.
func (s *Session) Set(ctx context.Context, state State) error {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return s.persist(ctx, state)
}

// SetAccessToken swaps only the access token, as after a refresh.
func (s *Session) SetAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.state.AccessToken = token
	state := s.state
	s.mu.Unlock()
	return s.persist(ctx, state)
}

// SetDisplayName updates the cached display name after a profile edit.
func (s *Session) SetDisplayName(ctx context.Context, name string) error {
	s.mu.Lock()
	s.state.DisplayName = name
	state := s.state
	s.mu.Unlock()
	if state.AccessToken == "" {
		return nil
	}
	return s.persist(ctx, state)
}

// Clear signs the session out unconditionally.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	return s.remove(ctx)
}

// ClearIf signs the session out only if token is still the current access
// token. It reports whether this call performed the clear, so that several
// requests failing with the same stale token trigger one sign-out.
func (s *Session) ClearIf(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	if token == "" || s.state.AccessToken != token {
		s.mu.Unlock()
		return false, nil
	}
	s.state = State{}
	s.mu.Unlock()
	return true, s.remove(ctx)
}

// Claims decodes the access token payload without verifying its signature.
func (s *Session) Claims() (*Claims, error) {
	token := s.Token()
	if token == "" {
		return nil, fmt.Errorf("no access token")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the access token's exp claim is before now.
// Tokens without a readable exp claim are treated as not expired; the
// backend remains the authority and answers 401 if it disagrees.
func (s *Session) Expired(now time.Time) bool {
	claims, err := s.Claims()
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}

func (s *Session) persist(ctx context.Context, state State) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, state); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *Session) remove(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx); err != nil {
		logger.Get().Warnw("failed to delete stored session", "error", err)
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in memory. It is used by tests and by
// callers that do not want anything written to disk.
type MemoryStore struct {
	mu    sync.Mutex
	state *State
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	s := *m.state
	return &s, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &state
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}
