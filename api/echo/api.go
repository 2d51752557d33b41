// Package echo wires the identity core onto an echo HTTP server: the login
// entry point, the gate-protected authorization endpoint, and the client
// administration surface.
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"go.idgate.dev/idgate/middleware"
	"go.idgate.dev/idgate/services"
	"go.idgate.dev/idgate/session"
)

// API holds the handler dependencies.
type API struct {
	userService   *services.UserService
	clientService *services.ClientService
	loginPath     string
}

// NewAPI initializes the HTTP API.
func NewAPI(userService *services.UserService, clientService *services.ClientService, loginPath string) *API {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &API{
		userService:   userService,
		clientService: clientService,
		loginPath:     loginPath,
	}
}

// RegisterRoutes registers all routes. The session middleware runs on
// everything; the authentication gate guards only the protected groups.
func (a *API) RegisterRoutes(e *echo.Echo, sessions *session.Manager) {
	e.Use(sessions.Middleware())

	e.GET(a.loginPath, a.LoginFormHandler)
	e.POST(a.loginPath, a.LoginHandler)

	gate := middleware.AuthenticationGate(a.loginPath)

	oauth2 := e.Group("/oauth2", gate)
	oauth2.GET("/authorize", a.AuthorizeHandler)

	clients := e.Group("/clients", gate)
	clients.POST("", a.RegisterClientHandler)
	clients.GET("", a.ListClientsHandler)
	clients.GET("/:id", a.GetClientHandler)
	clients.PUT("/:id", a.UpdateClientHandler)
	clients.DELETE("/:id", a.DeleteClientHandler)
}

func internalError(c echo.Context) error {
	return c.NoContent(http.StatusInternalServerError)
}
