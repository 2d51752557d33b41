package echo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/internal/auth"
	"go.idgate.dev/idgate/memory"
	"go.idgate.dev/idgate/middleware"
	"go.idgate.dev/idgate/services"
	"go.idgate.dev/idgate/session"
)

type testServer struct {
	e             *echo.Echo
	userService   *services.UserService
	clientService *services.ClientService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hasher := auth.NewBcryptPasswordHasher(4)
	userService := services.NewUserService(memory.NewUserRepository(), hasher)
	clientService := services.NewClientService(memory.NewClientRepository(), hasher)

	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	e := echo.New()
	api := NewAPI(userService, clientService, "/login")
	api.RegisterRoutes(e, session.NewManager(store, time.Hour))

	// A protected resource behind the same gate, for round-trip tests.
	e.GET("/resource/user", func(c echo.Context) error {
		return c.String(http.StatusOK, "secret resource")
	}, middleware.AuthenticationGate("/login"))

	return &testServer{e: e, userService: userService, clientService: clientService}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestLoginRoundTrip(t *testing.T) {
	s := newTestServer(t)
	_, err := s.userService.RegisterUser(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	// 1. Unauthenticated request to a protected resource redirects to login.
	rec := s.do(httptest.NewRequest(http.MethodGet, "/resource/user", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	cookie := sessionCookie(t, rec)

	// 2. Login with valid credentials returns to the original target.
	form := url.Values{"username": {"alice"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(cookie)
	rec = s.do(req)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/resource/user", rec.Header().Get(echo.HeaderLocation))

	// 3. The protected resource is now reachable.
	req = httptest.NewRequest(http.MethodGet, "/resource/user", nil)
	req.AddCookie(cookie)
	rec = s.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// 4. A second login lands on the root: the stored target was consumed.
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(cookie)
	rec = s.do(req)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newTestServer(t)
	_, err := s.userService.RegisterUser(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := s.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorize_RejectsUnregisteredRedirect(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.userService.RegisterUser(ctx, "alice", "s3cret")
	require.NoError(t, err)
	client, _, err := s.clientService.RegisterClient(ctx,
		[]string{"read"},
		[]string{domain.GrantAuthorizationCode},
		[]string{"https://app.example.com/cb/"},
	)
	require.NoError(t, err)

	// Authenticate first; the authorize endpoint sits behind the gate.
	rec := s.do(httptest.NewRequest(http.MethodGet, "/resource/user", nil))
	cookie := sessionCookie(t, rec)
	form := url.Values{"username": {"alice"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(cookie)
	s.do(req)

	authorize := func(redirectURI string) *httptest.ResponseRecorder {
		target := "/oauth2/authorize?response_type=code&client_id=" + client.ID +
			"&scope=read&state=xyz&redirect_uri=" + url.QueryEscape(redirectURI)
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.AddCookie(cookie)
		return s.do(req)
	}

	rec = authorize("https://evil.example.com/cb")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = authorize("https://app.example.com/cb/step")
	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", location.Host)
	assert.NotEmpty(t, location.Query().Get("code"))
	assert.Equal(t, "xyz", location.Query().Get("state"))
}

func TestAuthorize_UnauthenticatedIsRedirectedNotErrored(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/oauth2/authorize?client_id=x", nil))

	// An unauthenticated access always yields a redirect, never an error page.
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestClientAdmin_CRUD(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.userService.RegisterUser(ctx, "admin", "s3cret")
	require.NoError(t, err)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/resource/user", nil))
	cookie := sessionCookie(t, rec)
	form := url.Values{"username": {"admin"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(cookie)
	s.do(req)

	body := `{"scopes":["read"],"grant_types":["authorization_code"],"redirect_uris":["https://app.example.com/cb"]}`
	req = httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.AddCookie(cookie)
	rec = s.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"secret"`)

	req = httptest.NewRequest(http.MethodGet, "/clients/does-not-exist", nil)
	req.AddCookie(cookie)
	rec = s.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
