package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() {
		if err := client.FlushDB(ctx).Err(); err != nil {
			t.Logf("failed to flush redis test DB: %v", err)
		}
		_ = client.Close()
	})
	return client
}

func TestRedisStore_SlidingWindow(t *testing.T) {
	rc := setupRedis(t)
	clock := newClock()
	l := New(NewRedisStore(rc), 2, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	require.True(t, l.Admit(ctx, 77))
	require.True(t, l.Admit(ctx, 77))
	assert.False(t, l.Admit(ctx, 77))

	clock.Advance(61 * time.Second)
	assert.True(t, l.Admit(ctx, 77))
}
