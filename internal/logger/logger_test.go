package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("development", "").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("production", "").GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New("production", "warn").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("production", "bogus").GetLevel())
}
