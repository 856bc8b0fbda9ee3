package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/courier/internal/config"
	"github.com/corvusHold/courier/internal/metrics"
)

const ctxOwnerIDKey = "auth_owner_id"

// NewJWT returns an Echo middleware that validates HS256 bearer tokens and
// stores the owner id carried in the "sub" claim in the context.
func NewJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				metrics.IncAuthFailure("missing")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			tokStr := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(tokStr, func(token *jwt.Token) (any, error) {
				return []byte(cfg.JWTSigningKey), nil
			}, jwt.WithLeeway(30*time.Second), jwt.WithIssuedAt(), jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !tok.Valid {
				metrics.IncAuthFailure("invalid")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			sub, err := tok.Claims.GetSubject()
			if err != nil {
				metrics.IncAuthFailure("claims")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid claims"})
			}
			owner, err := strconv.ParseInt(sub, 10, 64)
			if err != nil || owner <= 0 {
				metrics.IncAuthFailure("subject")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid subject"})
			}

			c.Set(ctxOwnerIDKey, owner)
			return next(c)
		}
	}
}

// OwnerID returns the authenticated owner's id from context.
func OwnerID(c echo.Context) (int64, bool) {
	v := c.Get(ctxOwnerIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// RequireAdmin rejects owners not listed in ADMIN_OWNER_IDS. It must run after NewJWT.
func RequireAdmin(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			owner, ok := OwnerID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}
			if !cfg.IsAdmin(owner) {
				metrics.IncAuthFailure("forbidden")
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// SetOwnerID stores an owner id in the context, for handler tests.
func SetOwnerID(c echo.Context, owner int64) {
	c.Set(ctxOwnerIDKey, owner)
}
