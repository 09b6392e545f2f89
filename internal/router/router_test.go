package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/handler"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	log, _ := test.NewNullLogger()
	return New(Deps{
		Cfg:    config.Config{CookieName: "jwt", CORSOrigins: []string{"http://localhost:5173"}},
		Log:    log,
		DB:     okPinger{},
		Auth:   &handler.AuthHandler{},
		Stores: &handler.StoreHandler{},
		Owner:  &handler.OwnerHandler{},
		Admin:  &handler.AdminHandler{},
	})
}

func TestRoutesRegistered(t *testing.T) {
	e := newTestEcho(t)
	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /metrics",
		"POST /auth/signup",
		"POST /auth/login",
		"POST /auth/logout",
		"PUT /auth/update-password",
		"GET /auth/check",
		"GET /user/stores",
		"POST /user/stores/:id/rating",
		"PUT /user/stores/:id/rating",
		"GET /owner/dashboard",
		"POST /admin/stores",
		"POST /admin/users",
		"GET /admin/dashboard",
	} {
		assert.True(t, got[want], want)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	e := newTestEcho(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	e := newTestEcho(t)
	for _, path := range []string{"/user/stores", "/owner/dashboard", "/admin/dashboard", "/auth/check"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
	}
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	e := newTestEcho(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestCORSPreflightAllowsCredentials(t *testing.T) {
	e := newTestEcho(t)
	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}
