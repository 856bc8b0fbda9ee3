package domain

import (
	"context"
	"time"
)

// Event is an audit record of a directory or dispatch action.
// Type examples: "contact.added", "contact.removed", "email.sent", "email.failed".
// Meta carries contact_id, template, attempt_id and similar details.
type Event struct {
	Type    string
	OwnerID int64
	Meta    map[string]string
	Time    time.Time
}

// Publisher publishes events to an external system (log, queue, etc.).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
