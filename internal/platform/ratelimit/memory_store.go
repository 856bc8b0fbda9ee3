package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. Keys whose windows have emptied stay
// allocated until Sweep removes them.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string][]time.Time)}
}

func (s *MemoryStore) Admit(_ context.Context, key string, now time.Time, limit int, window time.Duration) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := purge(s.windows[key], now, window)
	if len(ts) >= limit {
		s.windows[key] = ts
		return false, len(ts), nil
	}
	ts = append(ts, now)
	s.windows[key] = ts
	return true, len(ts), nil
}

// Sweep purges every window and deletes keys left empty. It returns the
// number of keys removed.
func (s *MemoryStore) Sweep(now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, ts := range s.windows {
		ts = purge(ts, now, window)
		if len(ts) == 0 {
			delete(s.windows, k)
			n++
			continue
		}
		s.windows[k] = ts
	}
	return n
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// purge keeps timestamps strictly newer than now-window. ts is ordered.
func purge(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	out := make([]time.Time, len(ts)-i)
	copy(out, ts[i:])
	return out
}
