package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	amw "github.com/corvusHold/courier/internal/auth/middleware"
	domain "github.com/corvusHold/courier/internal/contacts/domain"
	"github.com/corvusHold/courier/internal/platform/validation"
)

type Controller struct {
	svc domain.Service
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// RegisterV1 mounts the contact routes on an authenticated group.
func (h *Controller) RegisterV1(g *echo.Group) {
	g.POST("/contacts", h.addContact)
	g.GET("/contacts", h.listContacts)
	g.GET("/contacts/:id", h.getContact)
	g.PATCH("/contacts/:id", h.updateContact)
	g.DELETE("/contacts/:id", h.removeContact)
}

type addContactReq struct {
	Name  string `json:"name" validate:"required,notblank_trimmed"`
	Email string `json:"email" validate:"required,contact_email"`
}

type updateContactReq struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,notblank_trimmed"`
	Email *string `json:"email,omitempty" validate:"omitempty,contact_email"`
}

type contactResp struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type listResp struct {
	Items []contactResp `json:"items"`
	Total int           `json:"total"`
	Limit int           `json:"limit"`
}

func toResp(c domain.Contact) contactResp {
	r := contactResp{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.UpdatedAt != nil {
		r.UpdatedAt = c.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return r
}

// errorStatus maps directory errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), map[string]string{"error": err.Error()})
}

func ownerAndID(c echo.Context) (int64, int64, bool) {
	owner, ok := amw.OwnerID(c)
	if !ok {
		return 0, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return owner, 0, false
	}
	return owner, id, true
}

func (h *Controller) addContact(c echo.Context) error {
	owner, ok := amw.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var req addContactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	ctx := c.Request().Context()
	id, err := h.svc.Add(ctx, owner, req.Name, req.Email)
	if err != nil {
		return writeErr(c, err)
	}
	contact, found, err := h.svc.Get(ctx, owner, id)
	if err != nil {
		return writeErr(c, err)
	}
	if !found {
		return c.JSON(http.StatusCreated, map[string]int64{"id": id})
	}
	return c.JSON(http.StatusCreated, toResp(contact))
}

func (h *Controller) listContacts(c echo.Context) error {
	owner, ok := amw.OwnerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	list, err := h.svc.Search(c.Request().Context(), owner, c.QueryParam("q"))
	if err != nil {
		return writeErr(c, err)
	}
	items := make([]contactResp, 0, len(list))
	for _, ct := range list {
		items = append(items, toResp(ct))
	}
	return c.JSON(http.StatusOK, listResp{Items: items, Total: len(items), Limit: h.svc.Limit()})
}

func (h *Controller) getContact(c echo.Context) error {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	contact, found, err := h.svc.Get(c.Request().Context(), owner, id)
	if err != nil {
		return writeErr(c, err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, toResp(contact))
}

func (h *Controller) updateContact(c echo.Context) error {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req updateContactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	if req.Name == nil && req.Email == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "nothing to update"})
	}
	contact, err := h.svc.Update(c.Request().Context(), owner, id, domain.UpdateInput{Name: req.Name, Email: req.Email})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toResp(contact))
}

func (h *Controller) removeContact(c echo.Context) error {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if _, err := h.svc.Remove(c.Request().Context(), owner, id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
