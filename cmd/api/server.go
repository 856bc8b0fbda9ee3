package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	amw "github.com/corvusHold/courier/internal/auth/middleware"
	"github.com/corvusHold/courier/internal/config"
	"github.com/corvusHold/courier/internal/contacts"
	drepo "github.com/corvusHold/courier/internal/deliveries/repository"
	dsvc "github.com/corvusHold/courier/internal/deliveries/service"
	"github.com/corvusHold/courier/internal/dispatch"
	dispatchsvc "github.com/corvusHold/courier/internal/dispatch/service"
	edomain "github.com/corvusHold/courier/internal/email/domain"
	evsvc "github.com/corvusHold/courier/internal/events/service"
	"github.com/corvusHold/courier/internal/metrics"
	"github.com/corvusHold/courier/internal/platform/ratelimit"
	"github.com/corvusHold/courier/internal/platform/storage"
	"github.com/corvusHold/courier/internal/platform/validation"
	tdomain "github.com/corvusHold/courier/internal/templates/domain"
	tsvc "github.com/corvusHold/courier/internal/templates/service"
	"github.com/corvusHold/courier/internal/version"
)

// backends are the process-level resources the HTTP surface is built on.
type backends struct {
	contacts   storage.Document
	deliveries storage.Document
	limiter    *ratelimit.Limiter
	templates  tdomain.Store
	sender     edomain.Sender
	// probes are checked by /healthz, keyed by dependency name.
	probes map[string]func(ctx context.Context) error
}

func newServer(cfg config.Config, log zerolog.Logger, b backends) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Secure())
	e.Use(metrics.HTTPMiddleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return matchCORSOrigin(origin, cfg.CORSAllowedOrigins), nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.Validator = validation.New()

	pub := evsvc.NewLogger(log)
	api := e.Group("/api/v1", amw.NewJWT(cfg))
	admin := api.Group("/admin", amw.RequireAdmin(cfg))

	directory := contacts.Register(api, b.contacts, cfg.MaxContactsPerOwner, pub, log)
	deliveries := dsvc.New(drepo.New(b.deliveries, log), cfg.EmailLogRetention, log)
	renderer := tsvc.New(b.templates, cfg.SenderEmail, tsvc.WithStrict(cfg.StrictTemplates))
	dispatch.Register(api, admin, dispatchsvc.Deps{
		Limiter:   b.limiter,
		Renderer:  renderer,
		Sender:    b.sender,
		Log:       deliveries,
		Directory: directory,
		Publisher: pub,
		Logger:    log,
	}, dispatchsvc.Settings{
		SenderEmail: cfg.SenderEmail,
		SenderName:  cfg.SenderName,
		Timeout:     cfg.SendTimeout,
	})

	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
		defer cancel()

		resp := map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"version": version.String(),
		}
		for name, probe := range b.probes {
			status := "ok"
			if err := probe(ctx); err != nil {
				status = "down"
				resp["status"] = "degraded"
			}
			metrics.SetDependencyUp(name, status == "ok")
			resp[name] = status
		}
		return c.JSON(http.StatusOK, resp)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
