package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvusHold/courier/internal/events/domain"
)

func TestLogger_PublishWritesFields(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogger(zerolog.New(&buf))

	err := pub.Publish(context.Background(), domain.Event{
		Type:    "contact.added",
		OwnerID: 42,
		Meta:    map[string]string{"contact_id": "7"},
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "contact.added", got["type"])
	assert.Equal(t, float64(42), got["owner_id"])
	assert.Equal(t, "events", got["component"])
	assert.Equal(t, map[string]any{"contact_id": "7"}, got["meta"])
}
