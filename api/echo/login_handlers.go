package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	idgateerrors "go.idgate.dev/idgate/errors"
	"go.idgate.dev/idgate/session"
)

const loginForm = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
  <form method="post">
    <label>Username <input type="text" name="username" autofocus></label>
    <label>Password <input type="password" name="password"></label>
    <button type="submit">Sign in</button>
  </form>
</body>
</html>`

// LoginFormHandler serves the minimal login page.
func (a *API) LoginFormHandler(c echo.Context) error {
	return c.HTML(http.StatusOK, loginForm)
}

// LoginHandler verifies submitted credentials. On success it marks the
// session authenticated and sends the principal back to the protected
// resource recorded by the gate, consuming the stored target so it is used
// for exactly one redirect. Without a recorded target the principal lands
// on the root.
func (a *API) LoginHandler(c echo.Context) error {
	sess, ok := session.FromContext(c)
	if !ok {
		log.Error().Msg("Login handler running without session middleware")
		return internalError(c)
	}

	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := a.userService.Authenticate(c.Request().Context(), username, password)
	if err != nil {
		if errors.Is(err, idgateerrors.ErrAuthenticationFailed) {
			return c.HTML(http.StatusUnauthorized, loginForm)
		}
		log.Error().Err(err).Str("username", username).Msg("Login failed")
		return internalError(c)
	}

	sess.SetUser(user)

	target := sess.ConsumeOldURI()
	if target == "" {
		target = "/"
	}

	log.Info().
		Str("username", user.Username).
		Str("target", target).
		Msg("User authenticated, redirecting to original target")

	return c.Redirect(http.StatusFound, target)
}
