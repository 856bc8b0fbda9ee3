package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	amw "github.com/corvusHold/courier/internal/auth/middleware"
	cdomain "github.com/corvusHold/courier/internal/contacts/domain"
	ddomain "github.com/corvusHold/courier/internal/deliveries/domain"
	domain "github.com/corvusHold/courier/internal/dispatch/domain"
	"github.com/corvusHold/courier/internal/platform/validation"
	tdomain "github.com/corvusHold/courier/internal/templates/domain"
)

const defaultHistoryLimit = 20

type Controller struct {
	pipeline   domain.Pipeline
	templates  tdomain.Renderer
	deliveries ddomain.Service
	directory  cdomain.Service
}

func New(p domain.Pipeline, t tdomain.Renderer, d ddomain.Service, dir cdomain.Service) *Controller {
	return &Controller{pipeline: p, templates: t, deliveries: d, directory: dir}
}

func (h *Controller) RegisterV1(g *echo.Group) {
	g.POST("/emails", h.sendEmail)
	g.GET("/templates", h.listTemplates)
	g.GET("/stats", h.stats)
	g.GET("/history", h.history)
}

// RegisterAdmin mounts operator routes. g must already require admin rights.
func (h *Controller) RegisterAdmin(g *echo.Group) {
	g.GET("/contacts/total", h.totalContacts)
}

type sendEmailReq struct {
	ContactID *int64         `json:"contact_id,omitempty" validate:"omitempty,gt=0"`
	ToEmail   string         `json:"to_email,omitempty" validate:"omitempty,contact_email"`
	ToName    string         `json:"to_name,omitempty"`
	Template  string         `json:"template" validate:"required"`
	Subject   string         `json:"subject" validate:"required,notblank_trimmed"`
	Variables map[string]any `json:"variables,omitempty"`
}

type statsResp struct {
	ddomain.Stats
	Contacts     int `json:"contacts"`
	ContactLimit int `json:"contact_limit"`
}

// resultStatus maps a send result to an HTTP status code.
func resultStatus(res domain.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch {
	case errors.Is(res.Kind, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(res.Kind, tdomain.ErrTemplateNotFound), errors.Is(res.Kind, cdomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(res.Kind, tdomain.ErrUnresolvedPlaceholders):
		return http.StatusUnprocessableEntity
	case errors.Is(res.Kind, domain.ErrDeliveryFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Controller) sendEmail(c echo.Context) error {
	owner, ok := amw.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var req sendEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	if req.ContactID == nil && req.ToEmail == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "contact_id or to_email is required"})
	}
	ctx := c.Request().Context()
	var res domain.Result
	if req.ContactID != nil {
		res = h.pipeline.SendToContact(ctx, owner, *req.ContactID, req.Subject, req.Template, req.Variables)
	} else {
		res = h.pipeline.Send(ctx, domain.Request{
			OwnerID:   owner,
			ToEmail:   validation.NormalizeEmail(req.ToEmail),
			ToName:    validation.NormalizeName(req.ToName),
			Subject:   req.Subject,
			Template:  req.Template,
			Variables: req.Variables,
		})
	}
	return c.JSON(resultStatus(res), res)
}

func (h *Controller) listTemplates(c echo.Context) error {
	list, err := h.templates.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Controller) stats(c echo.Context) error {
	owner, ok := amw.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	st, err := h.deliveries.StatsFor(ctx, owner)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	n, err := h.directory.Count(ctx, owner)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, statsResp{Stats: st, Contacts: n, ContactLimit: h.directory.Limit()})
}

func (h *Controller) history(c echo.Context) error {
	owner, ok := amw.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	limit := defaultHistoryLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = n
	}
	entries, err := h.deliveries.Recent(c.Request().Context(), owner, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Controller) totalContacts(c echo.Context) error {
	n, err := h.directory.TotalCount(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]int{"total": n})
}
