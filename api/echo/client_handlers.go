package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"go.idgate.dev/idgate/domain"
	idgateerrors "go.idgate.dev/idgate/errors"
)

// registerClientRequest is the admin payload for registering a client.
type registerClientRequest struct {
	Scopes       []string `json:"scopes"`
	GrantTypes   []string `json:"grant_types"`
	RedirectURIs []string `json:"redirect_uris"`
}

// registerClientResponse carries the generated credentials. The raw secret
// appears here once and is never retrievable again.
type registerClientResponse struct {
	Client *domain.Client `json:"client"`
	Secret string         `json:"secret"`
}

// RegisterClientHandler registers a new client with generated credentials.
func (a *API) RegisterClientHandler(c echo.Context) error {
	var req registerClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, idgateerrors.NewInvalidRequest("Malformed request body"))
	}

	client, secret, err := a.clientService.RegisterClient(
		c.Request().Context(), req.Scopes, req.GrantTypes, req.RedirectURIs)
	if err != nil {
		return internalError(c)
	}

	return c.JSON(http.StatusCreated, registerClientResponse{Client: client, Secret: secret})
}

// ListClientsHandler lists registered clients.
func (a *API) ListClientsHandler(c echo.Context) error {
	clients, err := a.clientService.ListClients(c.Request().Context(), domain.ClientFilter{
		GrantType: c.QueryParam("grant_type"),
		Search:    c.QueryParam("search"),
	})
	if err != nil {
		return internalError(c)
	}

	return c.JSON(http.StatusOK, clients)
}

// GetClientHandler fetches one client by ID.
func (a *API) GetClientHandler(c echo.Context) error {
	client, err := a.clientService.GetClient(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, idgateerrors.ErrClientNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return internalError(c)
	}

	return c.JSON(http.StatusOK, client)
}

// UpdateClientHandler replaces the mutable fields of a client.
func (a *API) UpdateClientHandler(c echo.Context) error {
	ctx := c.Request().Context()
	clientID := c.Param("id")

	existing, err := a.clientService.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, idgateerrors.ErrClientNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return internalError(c)
	}

	var req registerClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, idgateerrors.NewInvalidRequest("Malformed request body"))
	}

	existing.Scopes = req.Scopes
	existing.Scoped = len(req.Scopes) > 0
	existing.GrantTypes = req.GrantTypes
	existing.RedirectURIs = req.RedirectURIs

	if err := a.clientService.UpdateClient(ctx, existing); err != nil {
		if errors.Is(err, idgateerrors.ErrClientNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return internalError(c)
	}

	return c.JSON(http.StatusOK, existing)
}

// DeleteClientHandler removes a client registration.
func (a *API) DeleteClientHandler(c echo.Context) error {
	if err := a.clientService.DeleteClient(c.Request().Context(), c.Param("id")); err != nil {
		return internalError(c)
	}

	return c.NoContent(http.StatusNoContent)
}
