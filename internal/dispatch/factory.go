package dispatch

import (
	"github.com/labstack/echo/v4"

	ctrl "github.com/corvusHold/courier/internal/dispatch/controller"
	domain "github.com/corvusHold/courier/internal/dispatch/domain"
	svc "github.com/corvusHold/courier/internal/dispatch/service"
)

// Register wires the dispatch pipeline and mounts its routes. admin may be
// nil when no operator routes are wanted.
func Register(g, admin *echo.Group, deps svc.Deps, settings svc.Settings) domain.Pipeline {
	p := svc.New(deps, settings)
	c := ctrl.New(p, deps.Renderer, deps.Log, deps.Directory)
	c.RegisterV1(g)
	if admin != nil {
		c.RegisterAdmin(admin)
	}
	return p
}
