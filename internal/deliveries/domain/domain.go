package domain

import (
	"context"
	"time"
)

// Entry is one recorded delivery attempt. Entries are never modified after append.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	OwnerID   int64     `json:"owner_id"`
	ToEmail   string    `json:"to_email"`
	ToName    string    `json:"to_name"`
	Subject   string    `json:"subject"`
	Template  string    `json:"template"`
	Success   bool      `json:"success"`
	Error     *string   `json:"error"`
	AttemptID string    `json:"attempt_id,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
}

// Stats summarizes an owner's attempts. LastDate is YYYY-MM-DD or "never".
type Stats struct {
	Total      int    `json:"total"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	LastDate   string `json:"last_date"`
}

// Repository loads and replaces the whole log.
type Repository interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// Service is the bounded delivery history.
type Service interface {
	// Append records e. Persistence failures are logged, not returned.
	Append(ctx context.Context, e Entry)
	StatsFor(ctx context.Context, owner int64) (Stats, error)
	// Recent returns up to n of the owner's entries, newest first.
	Recent(ctx context.Context, owner int64, n int) ([]Entry, error)
}
