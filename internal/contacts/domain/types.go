package domain

import (
	"context"
	"time"
)

// Contact is a stored recipient belonging to one owner.
type Contact struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Directory is the persisted shape of the whole contact store. Clients is
// keyed by the decimal owner id and keeps insertion order per owner.
type Directory struct {
	NextID  int64                `json:"next_id"`
	Clients map[string][]Contact `json:"clients"`
}

// NewDirectory returns an empty directory whose first id is 1.
func NewDirectory() Directory {
	return Directory{NextID: 1, Clients: map[string][]Contact{}}
}

// UpdateInput carries the optional fields of an update. Nil means unchanged.
type UpdateInput struct {
	Name  *string
	Email *string
}

// Repository loads and replaces the whole directory.
type Repository interface {
	// Load returns the stored directory, or a fresh one when nothing usable is stored.
	Load(ctx context.Context) (Directory, error)
	Save(ctx context.Context, d Directory) error
}

// Service is the per-owner contact directory.
type Service interface {
	Add(ctx context.Context, owner int64, name, email string) (int64, error)
	Get(ctx context.Context, owner, id int64) (Contact, bool, error)
	List(ctx context.Context, owner int64) ([]Contact, error)
	Remove(ctx context.Context, owner, id int64) (Contact, error)
	Update(ctx context.Context, owner, id int64, in UpdateInput) (Contact, error)
	Search(ctx context.Context, owner int64, query string) ([]Contact, error)
	Count(ctx context.Context, owner int64) (int, error)
	TotalCount(ctx context.Context) (int, error)
	// Limit is the configured per-owner maximum.
	Limit() int
}
