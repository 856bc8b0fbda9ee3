package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	metrics "github.com/corvusHold/courier/internal/metrics"
)

// Store keeps the per-key sliding windows.
type Store interface {
	// Admit drops timestamps at or before now-window, then records now if fewer
	// than limit remain. count is the number of timestamps left in the window.
	Admit(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (allowed bool, count int, err error)
}

// Sweeper is implemented by stores that hold idle keys in process memory.
type Sweeper interface {
	Sweep(now time.Time, window time.Duration) int
}

// Limiter enforces at most Limit sends per owner in any trailing Window.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

type Option func(*Limiter)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(l *Limiter) { l.now = now } }

func WithLogger(log zerolog.Logger) Option { return func(l *Limiter) { l.log = log } }

func New(store Store, limit int, window time.Duration, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &Limiter{store: store, limit: limit, window: window, now: time.Now, log: zerolog.Nop()}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Limiter) Limit() int { return l.limit }

func (l *Limiter) Window() time.Duration { return l.window }

// Admit reports whether owner may send now, recording the send if so.
// Store errors fail open.
func (l *Limiter) Admit(ctx context.Context, owner int64) bool {
	key := "owner:" + strconv.FormatInt(owner, 10)
	allowed, count, err := l.store.Admit(ctx, key, l.now(), l.limit, l.window)
	if err != nil {
		l.log.Warn().Err(err).Int64("owner_id", owner).Msg("rate limit store error, admitting")
		return true
	}
	if !allowed {
		metrics.IncRateLimited()
		l.log.Info().Int64("owner_id", owner).Int("limit", l.limit).Int("count", count).Str("window", l.window.String()).Msg("rate limit exceeded")
	}
	return allowed
}

// Run sweeps idle owners every interval until ctx is done. It is a no-op for
// stores that do not implement Sweeper.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	sw, ok := l.store.(Sweeper)
	if !ok {
		return
	}
	if interval <= 0 {
		interval = l.window
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sw.Sweep(l.now(), l.window); n > 0 {
				l.log.Debug().Int("evicted", n).Msg("rate limit windows swept")
			}
		}
	}
}
