package echo

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	idgateerrors "go.idgate.dev/idgate/errors"
	"go.idgate.dev/idgate/oauth"
)

// AuthorizeHandler handles OAuth 2.0 authorization requests. It validates
// the client, the redirect URI against the client's registered prefixes, the
// response type, and the requested scope, then redirects the user agent back
// with an opaque authorization code. Token issuance happens elsewhere.
//
// Redirect-URI failures are never answered with a redirect: until the URI is
// proven registered, sending the user agent there would be an open redirect.
func (a *API) AuthorizeHandler(c echo.Context) error {
	ctx := c.Request().Context()

	clientID := c.QueryParam("client_id")
	redirectURI := c.QueryParam("redirect_uri")
	responseType := c.QueryParam("response_type")
	scope := c.QueryParam("scope")
	state := c.QueryParam("state")

	if _, err := a.clientService.GetClient(ctx, clientID); err != nil {
		return c.JSON(http.StatusBadRequest, idgateerrors.NewInvalidClient("Invalid client_id"))
	}

	if err := a.clientService.ValidateRedirectURI(ctx, clientID, redirectURI); err != nil {
		if errors.Is(err, idgateerrors.ErrInvalidRedirect) {
			return c.JSON(http.StatusBadRequest, idgateerrors.NewInvalidRequest("Invalid redirect_uri"))
		}
		return internalError(c)
	}

	if responseType != "code" {
		return c.JSON(http.StatusBadRequest, idgateerrors.NewInvalidRequest("Unsupported response_type"))
	}

	if err := a.clientService.ValidateScope(ctx, clientID, oauth.ParseScope(scope)); err != nil {
		return c.JSON(http.StatusBadRequest, idgateerrors.NewInvalidScope("Invalid scope requested"))
	}

	location, err := url.Parse(redirectURI)
	if err != nil {
		return c.JSON(http.StatusBadRequest, idgateerrors.NewInvalidRequest("Invalid redirect_uri"))
	}

	query := location.Query()
	query.Set("code", uuid.NewString())
	if state != "" {
		query.Set("state", state)
	}
	location.RawQuery = query.Encode()

	return c.Redirect(http.StatusFound, location.String())
}
