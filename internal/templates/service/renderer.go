package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	domain "github.com/corvusHold/courier/internal/templates/domain"
)

var (
	tagPattern         = regexp.MustCompile(`<[^>]*>`)
	spacePattern       = regexp.MustCompile(`\s+`)
	placeholderPattern = regexp.MustCompile(`\{\{[^{}]+\}\}`)
)

type renderer struct {
	store  domain.Store
	sender string
	strict bool
	now    func() time.Time
}

type Option func(*renderer)

// WithStrict makes Render fail when placeholders remain after substitution.
func WithStrict(strict bool) Option { return func(r *renderer) { r.strict = strict } }

func WithClock(now func() time.Time) Option { return func(r *renderer) { r.now = now } }

// New returns a renderer that injects senderEmail as {{sender_email}}.
func New(store domain.Store, senderEmail string, opts ...Option) domain.Renderer {
	r := &renderer{store: store, sender: senderEmail, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *renderer) List(ctx context.Context) ([]domain.Info, error) {
	return r.store.List(ctx)
}

func (r *renderer) Render(ctx context.Context, name string, to domain.Recipient, vars map[string]any) (domain.Rendered, error) {
	body, err := r.store.Read(ctx, name)
	if err != nil {
		return domain.Rendered{}, err
	}

	now := r.now()
	merged := map[string]string{
		"recipient_name":  to.Name,
		"recipient_email": to.Email,
		"current_date":    now.Format("January 02, 2006"),
		"current_year":    strconv.Itoa(now.Year()),
		"sender_email":    r.sender,
	}
	for k, v := range vars {
		merged[k] = stringify(v)
	}

	// Apply keys in a fixed order so a value containing another placeholder
	// renders the same way on every run.
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	html := body
	for _, k := range keys {
		html = strings.ReplaceAll(html, "{{"+k+"}}", merged[k])
	}

	if r.strict {
		if left := placeholderPattern.FindAllString(html, -1); len(left) > 0 {
			return domain.Rendered{}, fmt.Errorf("%w: %s", domain.ErrUnresolvedPlaceholders, strings.Join(left, ", "))
		}
	}
	return domain.Rendered{HTML: html, Text: PlainText(html)}, nil
}

// PlainText strips tags from html and collapses whitespace.
func PlainText(html string) string {
	text := tagPattern.ReplaceAllString(html, "")
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
