package domain

import (
	"context"
	"errors"
)

var (
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrDeliveryFailed = errors.New("delivery failed")
)

// Request is one send to an explicit recipient.
type Request struct {
	OwnerID   int64
	ToEmail   string
	ToName    string
	Subject   string
	Template  string
	Variables map[string]any
}

// Result reports the outcome of a send. Failures are carried in Error with
// the matching sentinel in Kind; the pipeline never returns a Go error.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	AttemptID string `json:"attempt_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Kind      error  `json:"-"`
}

// Pipeline rate limits, renders, delivers and records sends.
type Pipeline interface {
	Send(ctx context.Context, req Request) Result
	// SendToContact resolves the recipient from the owner's directory first.
	SendToContact(ctx context.Context, owner, contactID int64, subject, template string, vars map[string]any) Result
}
