package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/corvusHold/courier/internal/contacts/domain"
	"github.com/corvusHold/courier/internal/logger"
	"github.com/corvusHold/courier/internal/platform/storage"
)

func TestLoad_MissingDocumentIsEmpty(t *testing.T) {
	r := New(storage.NewMemory(), logger.Nop())
	d, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.NextID)
	assert.NotNil(t, d.Clients)
	assert.Empty(t, d.Clients)
}

func TestLoad_UnparsableDocumentIsEmpty(t *testing.T) {
	doc := storage.NewMemory()
	require.NoError(t, doc.Replace(context.Background(), []byte("{not json")))
	d, err := New(doc, logger.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.NextID)
	assert.Empty(t, d.Clients)
}

func TestLoad_NextIDStaysAheadOfStoredIDs(t *testing.T) {
	doc := storage.NewMemory()
	raw := `{"next_id":2,"clients":{"1":[{"id":7,"name":"A","email":"a@example.com","created_at":"2025-01-01T00:00:00Z"}]}}`
	require.NoError(t, doc.Replace(context.Background(), []byte(raw)))

	d, err := New(doc, logger.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), d.NextID)
	require.Len(t, d.Clients["1"], 1)
	assert.Equal(t, "a@example.com", d.Clients["1"][0].Email)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	r := New(storage.NewMemory(), logger.Nop())
	d := domain.NewDirectory()
	d.Clients["3"] = []domain.Contact{{ID: 1, Name: "A", Email: "a@example.com"}}
	d.NextID = 2
	require.NoError(t, r.Save(ctx, d))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.NextID, got.NextID)
	assert.Equal(t, d.Clients["3"][0].Email, got.Clients["3"][0].Email)
}
