package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvusHold/courier/internal/config"
	"github.com/corvusHold/courier/internal/logger"
)

func TestNewSender_SelectsProvider(t *testing.T) {
	log := logger.Nop()

	s := NewSender(config.Config{EmailProvider: "log"}, log)
	assert.IsType(t, &Log{}, s)

	s = NewSender(config.Config{EmailProvider: "brevo", BrevoAPIKey: "k"}, log)
	b, ok := s.(*Brevo)
	require.True(t, ok)
	assert.Equal(t, DefaultBrevoURL, b.url)

	s = NewSender(config.Config{EmailProvider: "brevo", BrevoAPIKey: "k", BrevoAPIURL: "http://x/y"}, log)
	assert.Equal(t, "http://x/y", s.(*Brevo).url)
}

func TestNewSender_MissingKeyOutsideProduction(t *testing.T) {
	s := NewSender(config.Config{AppEnv: "development", EmailProvider: "brevo"}, logger.Nop())
	assert.IsType(t, &Log{}, s)

	s = NewSender(config.Config{AppEnv: "production", EmailProvider: "brevo"}, logger.Nop())
	assert.IsType(t, &Brevo{}, s)
}

func TestLog_ReturnsMessageID(t *testing.T) {
	id, err := NewLog(logger.Nop()).Send(context.Background(), sampleMessage())
	require.NoError(t, err)
	assert.Contains(t, id, "@courier.local>")
}
