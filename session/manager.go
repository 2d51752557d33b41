// Package session resolves the per-principal Session for each request,
// carried across requests by an opaque session cookie.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"go.idgate.dev/idgate/domain"
	idgateerrors "go.idgate.dev/idgate/errors"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "idgate_session"

	contextKey = "idgate-session"
)

// Manager ensures every request observes exactly one Session instance,
// creating a session (and cookie) for principals that have none. All reads
// and writes within one request go through that single instance; the manager
// persists it back to the store once the handler chain finishes.
type Manager struct {
	store domain.SessionStore
	ttl   time.Duration
}

// NewManager creates a session manager backed by the given store.
func NewManager(store domain.SessionStore, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		ttl:   ttl,
	}
}

// Middleware resolves the request's session and stashes it in the echo
// context. A store failure here is a configuration problem, not a
// per-request condition, and surfaces as a 500.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, cookie, err := m.ensureSession(c)
			if err != nil {
				log.Error().Err(err).Msg("Session store unavailable")
				return echo.NewHTTPError(http.StatusInternalServerError)
			}

			if cookie != nil {
				c.SetCookie(cookie)
			}
			c.Set(contextKey, sess)

			err = next(c)

			// Persist mutations made by the gate or the login flow.
			if putErr := m.store.Put(c.Request().Context(), sess); putErr != nil {
				log.Error().Err(putErr).Str("session_id", sess.ID).Msg("Failed to persist session")
			}

			return err
		}
	}
}

func (m *Manager) ensureSession(c echo.Context) (*domain.Session, *http.Cookie, error) {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		if err != nil && !errors.Is(err, http.ErrNoCookie) {
			return nil, nil, err
		}
		return m.createSession(c)
	}

	sess, err := m.store.Get(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, idgateerrors.ErrSessionNotFound) {
			return m.createSession(c)
		}
		return nil, nil, err
	}

	if time.Now().UTC().After(sess.ExpiresAt) {
		_ = m.store.Delete(ctx, sess.ID)
		return m.createSession(c)
	}

	return sess, nil, nil
}

func (m *Manager) createSession(c echo.Context) (*domain.Session, *http.Cookie, error) {
	sess := domain.NewSession(uuid.NewString(), m.ttl)

	if err := m.store.Put(c.Request().Context(), sess); err != nil {
		return nil, nil, err
	}

	return sess, buildCookie(sess.ID, sess.ExpiresAt), nil
}

func buildCookie(id string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		HttpOnly: true,
		Path:     "/",
		Expires:  expiresAt,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromContext extracts the Session resolved by the Middleware. The second
// return is false when the middleware did not run, which is a wiring bug.
func FromContext(c echo.Context) (*domain.Session, bool) {
	sess, ok := c.Get(contextKey).(*domain.Session)
	return sess, ok
}
