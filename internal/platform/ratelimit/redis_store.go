package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisStore implements Store with one sorted set per key, scored by
// millisecond timestamps.
type redisStore struct{ rc redis.UniversalClient }

// NewRedisStore returns a Store sharing windows through Redis.
func NewRedisStore(rc redis.UniversalClient) Store {
	return &redisStore{rc: rc}
}

var luaSlidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', tonumber(ARGV[1]) - tonumber(ARGV[2]))
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
  return {0, count}
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return {1, count + 1}
`)

func (s *redisStore) Admit(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (bool, int, error) {
	k := "rl:" + key
	nowMs := now.UnixMilli()
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())
	res, err := luaSlidingWindow.Run(ctx, s.rc, []string{k}, nowMs, window.Milliseconds(), limit, member).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected sliding window reply: %v", res)
	}
	return res[0] == 1, int(res[1]), nil
}
