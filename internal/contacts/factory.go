package contacts

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	ctrl "github.com/corvusHold/courier/internal/contacts/controller"
	domain "github.com/corvusHold/courier/internal/contacts/domain"
	repo "github.com/corvusHold/courier/internal/contacts/repository"
	svc "github.com/corvusHold/courier/internal/contacts/service"
	evdomain "github.com/corvusHold/courier/internal/events/domain"
	"github.com/corvusHold/courier/internal/platform/storage"
)

// Register wires the contacts module onto an authenticated group and returns
// the directory so other modules can resolve recipients.
func Register(g *echo.Group, doc storage.Document, limit int, pub evdomain.Publisher, log zerolog.Logger) domain.Service {
	r := repo.New(doc, log)
	s := svc.New(r, limit, svc.WithPublisher(pub))
	c := ctrl.New(s)
	c.RegisterV1(g)
	return s
}
