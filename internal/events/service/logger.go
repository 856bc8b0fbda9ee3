package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/corvusHold/courier/internal/events/domain"
)

// Logger is a Publisher that writes events to a zerolog logger.
type Logger struct {
	log zerolog.Logger
}

func NewLogger(log zerolog.Logger) *Logger {
	return &Logger{log: log.With().Str("component", "events").Logger()}
}

func (l *Logger) Publish(ctx context.Context, e domain.Event) error {
	ev := l.log.Info().
		Str("type", e.Type).
		Int64("owner_id", e.OwnerID).
		Time("ts", e.Time)
	if len(e.Meta) > 0 {
		ev = ev.Interface("meta", e.Meta)
	}
	ev.Msg("event")
	return nil
}
