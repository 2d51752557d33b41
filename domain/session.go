package domain

import (
	"context"
	"sync"
	"time"
)

// Session carries the authentication state of one principal for the lifetime
// of their browser session: the authenticated user, if any, and the URL of
// the protected resource they originally asked for while unauthenticated.
//
// A Session may be touched by concurrent requests of the same principal, so
// all state is guarded by a mutex. There is no transition back to the
// unauthenticated state here; logout is session invalidation at the store.
type Session struct {
	mu sync.Mutex

	// ID is the opaque session identifier carried by the session cookie.
	ID string

	user   *User
	oldURI string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewSession creates an unauthenticated session.
func NewSession(id string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// User returns the authenticated user, or nil while unauthenticated.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// SetUser marks the session authenticated, replacing any previous user on
// re-login. It deliberately leaves the pending return URL in place; consuming
// it is the login flow's job.
func (s *Session) SetUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// OldURI returns the pending return URL, or "" when none is recorded.
func (s *Session) OldURI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oldURI
}

// SetOldURI records the URL the principal should be sent back to after login.
func (s *Session) SetOldURI(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oldURI = uri
}

// ConsumeOldURI returns the pending return URL and clears it, so a stored
// target is used for at most one redirect.
func (s *Session) ConsumeOldURI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	uri := s.oldURI
	s.oldURI = ""
	return uri
}

// SessionStore defines the storage contract for sessions. Within one logical
// request, Get must return the same instance previously stored under the
// given ID, so that reads and writes observe a consistent view.
type SessionStore interface {
	// Put stores a session under its ID until it expires.
	Put(ctx context.Context, session *Session) error

	// Get retrieves a live session by ID. Returns errors.ErrSessionNotFound
	// for unknown or expired IDs.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an absent session is a no-op.
	Delete(ctx context.Context, id string) error
}
