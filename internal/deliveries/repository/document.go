package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	domain "github.com/corvusHold/courier/internal/deliveries/domain"
	"github.com/corvusHold/courier/internal/platform/storage"
)

// DocumentRepository stores the log as a JSON array.
type DocumentRepository struct {
	doc storage.Document
	log zerolog.Logger
}

func New(doc storage.Document, log zerolog.Logger) *DocumentRepository {
	return &DocumentRepository{doc: doc, log: log}
}

func (r *DocumentRepository) Load(ctx context.Context) ([]domain.Entry, error) {
	raw, err := r.doc.Load(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		return []domain.Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []domain.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		r.log.Warn().Err(err).Msg("delivery log is unparsable, starting empty")
		return []domain.Entry{}, nil
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}

func (r *DocumentRepository) Save(ctx context.Context, entries []domain.Entry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode delivery log: %w", err)
	}
	return r.doc.Replace(ctx, raw)
}
