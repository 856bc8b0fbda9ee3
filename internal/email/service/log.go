package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	edomain "github.com/corvusHold/courier/internal/email/domain"
)

// Ensure Log implements domain.Sender
var _ edomain.Sender = (*Log)(nil)

// Log writes messages to the logger instead of delivering them. Used for
// local development when no API key is configured.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log { return &Log{log: log} }

func (l *Log) Send(ctx context.Context, msg edomain.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &edomain.NetworkError{Err: err}
	}
	id := "<" + uuid.NewString() + "@courier.local>"
	l.log.Info().
		Str("component", "email").
		Str("message_id", id).
		Str("from", msg.From.Email).
		Str("to", msg.To.Email).
		Str("subject", msg.Subject).
		Strs("tags", msg.Tags).
		Int("html_bytes", len(msg.HTML)).
		Msg("email not delivered (log provider)")
	return id, nil
}
