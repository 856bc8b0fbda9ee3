package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	domain "github.com/corvusHold/courier/internal/contacts/domain"
	evdomain "github.com/corvusHold/courier/internal/events/domain"
	"github.com/corvusHold/courier/internal/metrics"
	"github.com/corvusHold/courier/internal/platform/validation"
)

type service struct {
	// mu spans every load-mutate-save cycle so concurrent writers never
	// overwrite each other's changes.
	mu    sync.Mutex
	repo  domain.Repository
	limit int
	pub   evdomain.Publisher
	now   func() time.Time
}

type Option func(*service)

func WithPublisher(p evdomain.Publisher) Option { return func(s *service) { s.pub = p } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

// New returns a directory holding at most limit contacts per owner.
func New(repo domain.Repository, limit int, opts ...Option) domain.Service {
	s := &service{repo: repo, limit: limit, pub: evdomain.Nop{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Limit() int { return s.limit }

func ownerKey(owner int64) string { return strconv.FormatInt(owner, 10) }

func (s *service) load(ctx context.Context) (domain.Directory, error) {
	d, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Directory{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return d, nil
}

func (s *service) save(ctx context.Context, op string, d domain.Directory) error {
	if err := s.repo.Save(ctx, d); err != nil {
		metrics.IncContactMutation(op, "persistence_error")
		return fmt.Errorf("%w: failed to save contacts: %w", domain.ErrPersistence, err)
	}
	metrics.IncContactMutation(op, "ok")
	return nil
}

func validName(name string) (string, error) {
	if validation.Blank(name) {
		return "", fmt.Errorf("%w: client name cannot be empty", domain.ErrValidation)
	}
	return validation.NormalizeName(name), nil
}

func validEmail(email string) (string, error) {
	if validation.Blank(email) {
		return "", fmt.Errorf("%w: client email cannot be empty", domain.ErrValidation)
	}
	email = validation.NormalizeEmail(email)
	if !validation.ValidEmail(email) {
		return "", fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}
	return email, nil
}

func (s *service) Add(ctx context.Context, owner int64, name, email string) (int64, error) {
	name, err := validName(name)
	if err != nil {
		return 0, err
	}
	email, err = validEmail(email)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	key := ownerKey(owner)
	list := d.Clients[key]
	if len(list) >= s.limit {
		return 0, fmt.Errorf("%w: maximum %d clients allowed per user", domain.ErrLimitExceeded, s.limit)
	}
	for _, c := range list {
		if c.Email == email {
			return 0, fmt.Errorf("%w: client with email %s already exists", domain.ErrDuplicateEmail, email)
		}
	}

	c := domain.Contact{ID: d.NextID, Name: name, Email: email, CreatedAt: s.now()}
	d.Clients[key] = append(list, c)
	d.NextID++
	if err := s.save(ctx, "add", d); err != nil {
		return 0, err
	}
	s.publish(ctx, "contact.added", owner, c.ID)
	return c.ID, nil
}

func (s *service) Get(ctx context.Context, owner, id int64) (domain.Contact, bool, error) {
	d, err := s.load(ctx)
	if err != nil {
		return domain.Contact{}, false, err
	}
	for _, c := range d.Clients[ownerKey(owner)] {
		if c.ID == id {
			return c, true, nil
		}
	}
	return domain.Contact{}, false, nil
}

func (s *service) List(ctx context.Context, owner int64) ([]domain.Contact, error) {
	d, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	list := d.Clients[ownerKey(owner)]
	if list == nil {
		return []domain.Contact{}, nil
	}
	return list, nil
}

func (s *service) Remove(ctx context.Context, owner, id int64) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load(ctx)
	if err != nil {
		return domain.Contact{}, err
	}
	key := ownerKey(owner)
	list := d.Clients[key]
	i := slices.IndexFunc(list, func(c domain.Contact) bool { return c.ID == id })
	if i < 0 {
		return domain.Contact{}, fmt.Errorf("%w: client with ID %d not found", domain.ErrNotFound, id)
	}
	removed := list[i]
	d.Clients[key] = slices.Delete(list, i, i+1)
	if err := s.save(ctx, "remove", d); err != nil {
		return domain.Contact{}, err
	}
	s.publish(ctx, "contact.removed", owner, id)
	return removed, nil
}

func (s *service) Update(ctx context.Context, owner, id int64, in domain.UpdateInput) (domain.Contact, error) {
	var name, email string
	var err error
	if in.Name != nil {
		if name, err = validName(*in.Name); err != nil {
			return domain.Contact{}, err
		}
	}
	if in.Email != nil {
		if email, err = validEmail(*in.Email); err != nil {
			return domain.Contact{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load(ctx)
	if err != nil {
		return domain.Contact{}, err
	}
	list := d.Clients[ownerKey(owner)]
	i := slices.IndexFunc(list, func(c domain.Contact) bool { return c.ID == id })
	if i < 0 {
		return domain.Contact{}, fmt.Errorf("%w: client with ID %d not found", domain.ErrNotFound, id)
	}
	if in.Email != nil {
		for _, other := range list {
			if other.ID != id && other.Email == email {
				return domain.Contact{}, fmt.Errorf("%w: client with email %s already exists", domain.ErrDuplicateEmail, email)
			}
		}
	}

	c := list[i]
	if in.Name != nil {
		c.Name = name
	}
	if in.Email != nil {
		c.Email = email
	}
	now := s.now()
	c.UpdatedAt = &now
	list[i] = c
	if err := s.save(ctx, "update", d); err != nil {
		return domain.Contact{}, err
	}
	s.publish(ctx, "contact.updated", owner, id)
	return c, nil
}

func (s *service) Search(ctx context.Context, owner int64, query string) ([]domain.Contact, error) {
	list, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list, nil
	}
	out := []domain.Contact{}
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *service) Count(ctx context.Context, owner int64) (int, error) {
	list, err := s.List(ctx, owner)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (s *service) TotalCount(ctx context.Context) (int, error) {
	d, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, cs := range d.Clients {
		total += len(cs)
	}
	return total, nil
}

func (s *service) publish(ctx context.Context, typ string, owner, id int64) {
	_ = s.pub.Publish(ctx, evdomain.Event{
		Type:    typ,
		OwnerID: owner,
		Meta:    map[string]string{"contact_id": strconv.FormatInt(id, 10)},
		Time:    s.now().UTC(),
	})
}
