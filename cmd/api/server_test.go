package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvusHold/courier/internal/config"
	emailsvc "github.com/corvusHold/courier/internal/email/service"
	"github.com/corvusHold/courier/internal/logger"
	"github.com/corvusHold/courier/internal/platform/ratelimit"
	"github.com/corvusHold/courier/internal/platform/storage"
	trepo "github.com/corvusHold/courier/internal/templates/repository"
)

const signingKey = "server-test-key"

func testConfig() config.Config {
	return config.Config{
		AppEnv:              "test",
		CORSAllowedOrigins:  []string{"*"},
		EmailRateLimit:      2,
		RateWindow:          time.Minute,
		MaxContactsPerOwner: 10,
		EmailLogRetention:   100,
		SenderEmail:         "noreply@example.com",
		SenderName:          "Bot Mailer",
		SendTimeout:         time.Second,
		JWTSigningKey:       signingKey,
		AdminOwnerIDs:       []int64{99},
	}
}

func testServer(t *testing.T, probes map[string]func(context.Context) error) *echo.Echo {
	t.Helper()
	cfg := testConfig()
	log := logger.Nop()
	return newServer(cfg, log, backends{
		contacts:   storage.NewMemory(),
		deliveries: storage.NewMemory(),
		limiter:    ratelimit.New(ratelimit.NewMemoryStore(), cfg.EmailRateLimit, cfg.RateWindow),
		templates: trepo.NewFS(fstest.MapFS{
			"welcome_email.html": {Data: []byte("<p>Hello {{recipient_name}}</p>")},
		}),
		sender: emailsvc.NewLog(log),
		probes: probes,
	})
}

func bearer(t *testing.T, owner string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": owner,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(signingKey))
	require.NoError(t, err)
	return "Bearer " + s
}

func request(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_EndToEnd(t *testing.T) {
	e := testServer(t, nil)
	auth := bearer(t, "7")

	rec := request(e, http.MethodPost, "/api/v1/contacts", auth, `{"name":"John Smith","email":"john@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":1`)

	rec = request(e, http.MethodPost, "/api/v1/emails", auth, `{"contact_id":1,"template":"welcome_email","subject":"Hi"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = request(e, http.MethodPost, "/api/v1/emails", auth, `{"to_email":"ann@example.com","template":"missing","subject":"Hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = request(e, http.MethodPost, "/api/v1/emails", auth, `{"to_email":"ann@example.com","template":"welcome_email","subject":"Hi"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Maximum 2 emails per minute.")

	rec = request(e, http.MethodGet, "/api/v1/stats", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
	assert.Contains(t, rec.Body.String(), `"contacts":1`)
}

func TestServer_RequiresToken(t *testing.T) {
	e := testServer(t, nil)
	rec := request(e, http.MethodGet, "/api/v1/contacts", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_AdminRoutes(t *testing.T) {
	e := testServer(t, nil)

	rec := request(e, http.MethodGet, "/api/v1/admin/contacts/total", bearer(t, "7"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(e, http.MethodGet, "/api/v1/admin/contacts/total", bearer(t, "99"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0}`, rec.Body.String())
}

func TestServer_HealthAndMetrics(t *testing.T) {
	e := testServer(t, map[string]func(context.Context) error{
		"db":    func(context.Context) error { return nil },
		"cache": func(context.Context) error { return errors.New("unreachable") },
	})

	rec := request(e, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"db":"ok"`)
	assert.Contains(t, rec.Body.String(), `"cache":"down"`)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)

	rec = request(e, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "courier_health_dependency_up")
}
