package repository

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/corvusHold/courier/internal/templates/domain"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"welcome_email.html":      {Data: []byte("<p>Hi {{recipient_name}}</p>")},
		"notification_email.html": {Data: []byte("<p>{{message}}</p>")},
		"promo.html":              {Data: []byte("<p>promo</p>")},
		"notes.txt":               {Data: []byte("ignored")},
		"sub/inner.html":          {Data: []byte("nested")},
	}
}

func TestRead(t *testing.T) {
	s := NewFS(testFS())
	body, err := s.Read(context.Background(), "welcome_email")
	require.NoError(t, err)
	assert.Equal(t, "<p>Hi {{recipient_name}}</p>", body)
}

func TestRead_NotFound(t *testing.T) {
	s := NewFS(testFS())
	for _, name := range []string{"missing", "", "..", "../etc/passwd", "sub/inner", `sub\inner`, "notes"} {
		_, err := s.Read(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound, name)
	}
}

func TestList(t *testing.T) {
	s := NewFS(testFS())
	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Info{
		{Name: "notification_email", Description: "General notification email"},
		{Name: "promo", Description: "Custom email template"},
		{Name: "welcome_email", Description: "Welcome email for new clients"},
	}, list)
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	s := NewDir(t.TempDir() + "/nope")
	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
