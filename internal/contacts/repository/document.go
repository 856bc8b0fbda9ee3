package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	domain "github.com/corvusHold/courier/internal/contacts/domain"
	"github.com/corvusHold/courier/internal/platform/storage"
)

// DocumentRepository stores the directory as one JSON document.
type DocumentRepository struct {
	doc storage.Document
	log zerolog.Logger
}

func New(doc storage.Document, log zerolog.Logger) *DocumentRepository {
	return &DocumentRepository{doc: doc, log: log}
}

func (r *DocumentRepository) Load(ctx context.Context) (domain.Directory, error) {
	raw, err := r.doc.Load(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		return domain.NewDirectory(), nil
	}
	if err != nil {
		return domain.Directory{}, err
	}
	var d domain.Directory
	if err := json.Unmarshal(raw, &d); err != nil {
		r.log.Warn().Err(err).Msg("contact store is unparsable, starting empty")
		return domain.NewDirectory(), nil
	}
	if d.Clients == nil {
		d.Clients = map[string][]domain.Contact{}
	}
	// next_id must stay ahead of every issued id even if the document was edited by hand
	for _, cs := range d.Clients {
		for _, c := range cs {
			if c.ID >= d.NextID {
				d.NextID = c.ID + 1
			}
		}
	}
	if d.NextID < 1 {
		d.NextID = 1
	}
	return d, nil
}

func (r *DocumentRepository) Save(ctx context.Context, d domain.Directory) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode contact store: %w", err)
	}
	return r.doc.Replace(ctx, raw)
}
