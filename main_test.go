package main

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/aichat"
	"github.com/foundersportal/portal/backend/go-services/internal/config"
	"github.com/foundersportal/portal/backend/go-services/internal/notifications"
	"github.com/foundersportal/portal/backend/go-services/internal/oidc"
	"github.com/foundersportal/portal/backend/go-services/internal/sessions"
	"github.com/foundersportal/portal/backend/go-services/internal/storage"
	"github.com/foundersportal/portal/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps() *deps {
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{Secret: "main-test-secret-0123456789abcdef", Issuer: "portal-test", AccessTokenTTL: 15 * time.Minute, RefreshTokenTTL: time.Hour}
	cfg.RateLimit = config.RateLimitConfig{LoginMax: 5, LoginWindow: time.Minute}
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.Mail.Concurrency = 1
	cfg.Bootstrap.AdminEmails = []string{"founder@example.com"}
	return &deps{
		cfg:      cfg,
		store:    storage.NewMemoryStore(),
		mailer:   notifications.LogMailer{},
		provider: aichat.EchoProvider{},
		google:   oidc.NewInsecureVerifier(""),
	}
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(testDeps())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string            `json:"status"`
		Deps   map[string]string `json:"deps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "disabled", body.Deps["mongodb"])
	assert.Equal(t, "up", body.Deps["google"])

	// configured but never connected
	d := testDeps()
	d.cfg.Redis.Host = "redis.internal"
	w = serve(newRouter(d), httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"down"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AdminFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions.SetBlacklistClient(nil)
	r := newRouter(testDeps())

	// public directory listing is open
	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/incubator-companies", nil))
	require.Equal(t, http.StatusOK, w.Code)

	create := func(mutate func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/incubator-companies", strings.NewReader(`{"companyName":"Launchpad","location":"Berlin"}`))
		req.Header.Set("Content-Type", "application/json")
		if mutate != nil {
			mutate(req)
		}
		return serve(r, req)
	}
	assert.Equal(t, http.StatusUnauthorized, create(nil).Code)

	claims, _ := json.Marshal(map[string]interface{}{"sub": "g-1", "email": "founder@example.com", "email_verified": true})
	cred := "eyJhbGciOiJSUzI1NiJ9." + base64.RawURLEncoding.EncodeToString(claims) + ".sig"
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(`{"credential":"`+cred+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	access := login.Data.AccessToken

	// cookie-authenticated writes need the CSRF pair
	w = create(func(r *http.Request) { r.AddCookie(&http.Cookie{Name: middleware.AccessCookie, Value: access}) })
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = create(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.AccessCookie, Value: access})
		r.AddCookie(&http.Cookie{Name: middleware.CSRFCookie, Value: "tok"})
		r.Header.Set(middleware.CSRFHeader, "tok")
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// bearer clients skip CSRF
	w = create(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) })
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/incubator-companies?location=berlin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data, 2)

	req = httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}
