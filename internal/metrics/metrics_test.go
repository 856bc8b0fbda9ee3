package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncSend_DefaultsLabels(t *testing.T) {
	before := testutil.ToFloat64(sendOutcomes.WithLabelValues("unknown", "unknown"))
	IncSend("", "")
	assert.Equal(t, before+1, testutil.ToFloat64(sendOutcomes.WithLabelValues("unknown", "unknown")))
}

func TestIncRateLimited(t *testing.T) {
	before := testutil.ToFloat64(rateLimited)
	IncRateLimited()
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimited))
}

func TestHTTPMiddleware_CountsRoute(t *testing.T) {
	e := echo.New()
	e.Use(HTTPMiddleware())
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "204"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "204")))
}

func TestSetDependencyUp(t *testing.T) {
	SetDependencyUp("redis", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(dependencyUp.WithLabelValues("redis")))
	SetDependencyUp("redis", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(dependencyUp.WithLabelValues("redis")))
}
