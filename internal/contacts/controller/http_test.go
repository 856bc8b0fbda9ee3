package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amw "github.com/corvusHold/courier/internal/auth/middleware"
	"github.com/corvusHold/courier/internal/contacts/repository"
	"github.com/corvusHold/courier/internal/contacts/service"
	"github.com/corvusHold/courier/internal/logger"
	"github.com/corvusHold/courier/internal/platform/storage"
	"github.com/corvusHold/courier/internal/platform/validation"
)

func newTestServer(t *testing.T, limit int) *echo.Echo {
	t.Helper()
	svc := service.New(repository.New(storage.NewMemory(), logger.Nop()), limit)
	e := echo.New()
	e.Validator = validation.New()
	g := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			owner, err := strconv.ParseInt(c.Request().Header.Get("X-Test-Owner"), 10, 64)
			if err == nil {
				amw.SetOwnerID(c, owner)
			}
			return next(c)
		}
	})
	New(svc).RegisterV1(g)
	return e
}

func call(e *echo.Echo, method, path string, owner int64, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Test-Owner", strconv.FormatInt(owner, 10))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAddAndGetContact(t *testing.T) {
	e := newTestServer(t, 10)

	rec := call(e, http.MethodPost, "/api/v1/contacts", 1, `{"name":" John Doe ","email":"JOHN@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created contactResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "John Doe", created.Name)
	assert.Equal(t, "john@example.com", created.Email)
	assert.NotEmpty(t, created.CreatedAt)

	rec = call(e, http.MethodGet, "/api/v1/contacts/"+strconv.FormatInt(created.ID, 10), 1, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// other owners cannot see it
	rec = call(e, http.MethodGet, "/api/v1/contacts/"+strconv.FormatInt(created.ID, 10), 2, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddContact_StatusMapping(t *testing.T) {
	e := newTestServer(t, 1)

	rec := call(e, http.MethodPost, "/api/v1/contacts", 1, `{"name":"A","email":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/api/v1/contacts", 1, `{"name":"  ","email":"a@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/api/v1/contacts", 1, `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/api/v1/contacts", 1, `{"name":"A","email":"a@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(e, http.MethodPost, "/api/v1/contacts", 1, `{"name":"B","email":"b@example.com"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "maximum 1 clients allowed per user")
}

func TestAddContact_Duplicate(t *testing.T) {
	e := newTestServer(t, 10)
	rec := call(e, http.MethodPost, "/api/v1/contacts", 1, `{"name":"A","email":"a@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = call(e, http.MethodPost, "/api/v1/contacts", 1, `{"name":"B","email":"A@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListSearchUpdateRemove(t *testing.T) {
	e := newTestServer(t, 10)
	call(e, http.MethodPost, "/api/v1/contacts", 1, `{"name":"John Doe","email":"john@example.com"}`)
	rec := call(e, http.MethodPost, "/api/v1/contacts", 1, `{"name":"Ana","email":"ana@corp.io"}`)
	var ana contactResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ana))

	rec = call(e, http.MethodGet, "/api/v1/contacts", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list listResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 10, list.Limit)

	rec = call(e, http.MethodGet, "/api/v1/contacts?q=CORP", 1, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Ana", list.Items[0].Name)

	path := "/api/v1/contacts/" + strconv.FormatInt(ana.ID, 10)
	rec = call(e, http.MethodPatch, path, 1, `{"name":"Ana Silva"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var upd contactResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upd))
	assert.Equal(t, "Ana Silva", upd.Name)
	assert.NotEmpty(t, upd.UpdatedAt)

	rec = call(e, http.MethodPatch, path, 1, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPatch, path, 1, `{"email":"john@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(e, http.MethodDelete, path, 1, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = call(e, http.MethodDelete, path, 1, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(e, http.MethodDelete, "/api/v1/contacts/abc", 1, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
