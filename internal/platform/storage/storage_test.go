package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_LoadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "nope.json"))
	_, err := f.Load(context.Background())
	require.ErrorIs(t, err, ErrNotExist)
}

func TestFile_ReplaceCreatesDirAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	f := NewFile(path)
	ctx := context.Background()

	require.NoError(t, f.Replace(ctx, []byte(`{"a":1}`)))
	require.NoError(t, f.Replace(ctx, []byte(`{"a":2}`)))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.Load(ctx)
	require.ErrorIs(t, err, ErrNotExist)

	buf := []byte("x")
	require.NoError(t, m.Replace(ctx, buf))
	buf[0] = 'y'
	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestPostgres_RoundTrip(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("skipping integration test: DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS documents (key TEXT PRIMARY KEY, body BYTEA NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT now())`)
	require.NoError(t, err)

	key := "storage-itest-" + t.Name()
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM documents WHERE key = $1`, key) })

	p := NewPostgres(pool, key)
	_, err = p.Load(ctx)
	require.ErrorIs(t, err, ErrNotExist)

	require.NoError(t, p.Replace(ctx, []byte(`[1]`)))
	require.NoError(t, p.Replace(ctx, []byte(`[1,2]`)))
	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(got))
}
