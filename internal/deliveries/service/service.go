package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	domain "github.com/corvusHold/courier/internal/deliveries/domain"
	"github.com/corvusHold/courier/internal/metrics"
)

type service struct {
	mu        sync.Mutex
	repo      domain.Repository
	retention int
	log       zerolog.Logger
}

// New returns a log keeping the newest retention entries.
func New(repo domain.Repository, retention int, log zerolog.Logger) domain.Service {
	if retention <= 0 {
		retention = 1000
	}
	return &service{repo: repo, retention: retention, log: log}
}

func (s *service) Append(ctx context.Context, e domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.Load(ctx)
	if err != nil {
		s.dropped(e, err)
		return
	}
	entries = append(entries, e)
	if over := len(entries) - s.retention; over > 0 {
		entries = entries[over:]
	}
	if err := s.repo.Save(ctx, entries); err != nil {
		s.dropped(e, err)
	}
}

func (s *service) dropped(e domain.Entry, err error) {
	metrics.IncLogWriteFailure()
	s.log.Error().Err(err).
		Int64("owner_id", e.OwnerID).
		Str("attempt_id", e.AttemptID).
		Str("template", e.Template).
		Msg("failed to record delivery attempt")
}

func (s *service) StatsFor(ctx context.Context, owner int64) (domain.Stats, error) {
	entries, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	st := domain.Stats{LastDate: "never"}
	var last *domain.Entry
	for i := range entries {
		e := &entries[i]
		if e.OwnerID != owner {
			continue
		}
		st.Total++
		if e.Success {
			st.Successful++
		} else {
			st.Failed++
		}
		if last == nil || e.Timestamp.After(last.Timestamp) {
			last = e
		}
	}
	if last != nil {
		st.LastDate = last.Timestamp.Format("2006-01-02")
	}
	return st, nil
}

func (s *service) Recent(ctx context.Context, owner int64, n int) ([]domain.Entry, error) {
	entries, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Entry{}
	for i := len(entries) - 1; i >= 0 && (n <= 0 || len(out) < n); i-- {
		if entries[i].OwnerID == owner {
			out = append(out, entries[i])
		}
	}
	return out, nil
}
