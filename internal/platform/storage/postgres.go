package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Postgres implements Document
var _ Document = (*Postgres)(nil)

// Postgres keeps each document as one row of the documents table
// (see migrations/00001_documents.sql). Replace is a single upsert.
type Postgres struct {
	pool *pgxpool.Pool
	key  string
}

func NewPostgres(pool *pgxpool.Pool, key string) *Postgres {
	return &Postgres{pool: pool, key: key}
}

const (
	selectDocument = `SELECT body FROM documents WHERE key = $1`
	upsertDocument = `INSERT INTO documents (key, body, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`
)

func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	var body []byte
	err := p.pool.QueryRow(ctx, selectDocument, p.key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", p.key, err)
	}
	return body, nil
}

func (p *Postgres) Replace(ctx context.Context, data []byte) error {
	if _, err := p.pool.Exec(ctx, upsertDocument, p.key, data); err != nil {
		return fmt.Errorf("replace document %s: %w", p.key, err)
	}
	return nil
}
