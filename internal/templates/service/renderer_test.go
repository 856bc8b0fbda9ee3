package service

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/corvusHold/courier/internal/templates/domain"
	"github.com/corvusHold/courier/internal/templates/repository"
)

var fixed = time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)

func newRenderer(files map[string]string, opts ...Option) domain.Renderer {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name+".html"] = &fstest.MapFile{Data: []byte(body)}
	}
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	return New(repository.NewFS(fsys), "noreply@example.com", opts...)
}

func TestRender_SubstitutesCallerVariables(t *testing.T) {
	r := newRenderer(map[string]string{"t": "<p>Hello {{name}}</p>"})
	out, err := r.Render(context.Background(), "t", domain.Recipient{}, map[string]any{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello Ann</p>", out.HTML)
	assert.Equal(t, "Hello Ann", out.Text)
}

func TestRender_InjectsDerivedVariables(t *testing.T) {
	r := newRenderer(map[string]string{
		"t": "{{recipient_name}}|{{recipient_email}}|{{current_date}}|{{current_year}}|{{sender_email}}",
	})
	out, err := r.Render(context.Background(), "t", domain.Recipient{Name: "Ann Lee", Email: "ann@example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee|ann@example.com|March 07, 2025|2025|noreply@example.com", out.HTML)
}

func TestRender_CallerVariablesWinOverDerived(t *testing.T) {
	r := newRenderer(map[string]string{"t": "{{recipient_name}}"})
	out, err := r.Render(context.Background(), "t", domain.Recipient{Name: "Derived"}, map[string]any{"recipient_name": "Caller"})
	require.NoError(t, err)
	assert.Equal(t, "Caller", out.HTML)
}

func TestRender_NonStringValues(t *testing.T) {
	r := newRenderer(map[string]string{"t": "{{n}} {{ok}}"})
	out, err := r.Render(context.Background(), "t", domain.Recipient{}, map[string]any{"n": 3, "ok": true})
	require.NoError(t, err)
	assert.Equal(t, "3 true", out.HTML)
}

func TestRender_UnmatchedPlaceholdersStay(t *testing.T) {
	r := newRenderer(map[string]string{"t": "<b>{{unknown}}</b>"})
	out, err := r.Render(context.Background(), "t", domain.Recipient{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<b>{{unknown}}</b>", out.HTML)
	assert.Equal(t, "{{unknown}}", out.Text)
}

func TestRender_StrictRejectsUnmatched(t *testing.T) {
	r := newRenderer(map[string]string{"t": "{{unknown}} {{recipient_name}}"}, WithStrict(true))
	_, err := r.Render(context.Background(), "t", domain.Recipient{Name: "A"}, nil)
	require.ErrorIs(t, err, domain.ErrUnresolvedPlaceholders)
	assert.Contains(t, err.Error(), "{{unknown}}")
}

func TestRender_TemplateNotFound(t *testing.T) {
	r := newRenderer(map[string]string{"t": "x"})
	_, err := r.Render(context.Background(), "missing", domain.Recipient{}, nil)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	_, err = r.Render(context.Background(), "../t", domain.Recipient{}, nil)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hi there friend", PlainText("<html>\n  <p>Hi   there</p>\n\t<br/>friend </html>"))
	assert.Equal(t, "", PlainText("<div></div>"))
}
