// Package middleware contains the request-interception filters that run
// ahead of protected-resource handling.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"go.idgate.dev/idgate/session"
)

// AuthenticationGate returns the filter that guards protected resources.
// Unauthenticated requests have their full target (path plus query string)
// recorded on the session and are redirected to the login entry point;
// authenticated requests pass through unchanged.
//
// The gate performs no I/O beyond session state and the redirect itself. A
// missing session in the context means the session middleware is not wired
// in front of the gate, which is a fatal configuration error rather than a
// per-request condition.
func AuthenticationGate(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := session.FromContext(c)
			if !ok {
				log.Error().Msg("Authentication gate running without session middleware")
				return echo.NewHTTPError(http.StatusInternalServerError)
			}

			if sess.User() != nil {
				return next(c)
			}

			target := c.Request().URL.Path
			if query := c.Request().URL.RawQuery; query != "" {
				target += "?" + query
			}
			sess.SetOldURI(target)

			log.Debug().
				Str("session_id", sess.ID).
				Str("target", target).
				Msg("Unauthenticated request, redirecting to login")

			return c.Redirect(http.StatusFound, loginPath)
		}
	}
}
