package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	cdomain "github.com/corvusHold/courier/internal/contacts/domain"
	ddomain "github.com/corvusHold/courier/internal/deliveries/domain"
	domain "github.com/corvusHold/courier/internal/dispatch/domain"
	edomain "github.com/corvusHold/courier/internal/email/domain"
	evdomain "github.com/corvusHold/courier/internal/events/domain"
	"github.com/corvusHold/courier/internal/metrics"
	tdomain "github.com/corvusHold/courier/internal/templates/domain"
)

// Tags attached to every message.
var defaultTags = []string{"account-access", "notification"}

// Admitter is the per-owner send limiter.
type Admitter interface {
	Admit(ctx context.Context, owner int64) bool
	Limit() int
	Window() time.Duration
}

type Deps struct {
	Limiter   Admitter
	Renderer  tdomain.Renderer
	Sender    edomain.Sender
	Log       ddomain.Service
	Directory cdomain.Service
	Publisher evdomain.Publisher
	Logger    zerolog.Logger
}

type Settings struct {
	SenderEmail string
	SenderName  string
	// Timeout bounds the delivery API call. Zero means 30s.
	Timeout time.Duration
}

type pipeline struct {
	Deps
	settings Settings
	now      func() time.Time
	newID    func() string
}

type Option func(*pipeline)

func WithClock(now func() time.Time) Option { return func(p *pipeline) { p.now = now } }

func WithIDGenerator(f func() string) Option { return func(p *pipeline) { p.newID = f } }

func New(deps Deps, settings Settings, opts ...Option) domain.Pipeline {
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if deps.Publisher == nil {
		deps.Publisher = evdomain.Nop{}
	}
	p := &pipeline{Deps: deps, settings: settings, now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(p)
	}
	return p
}

// SplitName splits a full name at the first space. A name without a space
// has an empty last name.
func SplitName(full string) (first, last string) {
	first, rest, found := strings.Cut(full, " ")
	if !found {
		return full, ""
	}
	return first, strings.TrimSpace(rest)
}

func (p *pipeline) rateLimitMessage() string {
	per := "minute"
	if w := p.Limiter.Window(); w != time.Minute {
		per = w.String()
	}
	return fmt.Sprintf("Rate limit exceeded. Maximum %d emails per %s.", p.Limiter.Limit(), per)
}

func failure(kind error, msg string) domain.Result {
	return domain.Result{Success: false, Error: msg, Kind: kind}
}

func (p *pipeline) Send(ctx context.Context, req domain.Request) domain.Result {
	log := p.Logger.With().Int64("owner_id", req.OwnerID).Str("template", req.Template).Logger()

	if !p.Limiter.Admit(ctx, req.OwnerID) {
		metrics.IncSend(req.Template, "rate_limited")
		return failure(domain.ErrRateLimited, p.rateLimitMessage())
	}

	rendered, err := p.Renderer.Render(ctx, req.Template, tdomain.Recipient{Name: req.ToName, Email: req.ToEmail}, req.Variables)
	if err != nil {
		switch {
		case errors.Is(err, tdomain.ErrTemplateNotFound):
			log.Warn().Msg("template not found")
			metrics.IncSend(req.Template, "template_not_found")
			return failure(tdomain.ErrTemplateNotFound, fmt.Sprintf("Template %s not found", req.Template))
		case errors.Is(err, tdomain.ErrUnresolvedPlaceholders):
			metrics.IncSend(req.Template, "unresolved_placeholders")
			return failure(tdomain.ErrUnresolvedPlaceholders, err.Error())
		default:
			log.Error().Err(err).Msg("template render failed")
			metrics.IncSend(req.Template, "template_error")
			return failure(tdomain.ErrTemplateNotFound, fmt.Sprintf("Template %s not found", req.Template))
		}
	}

	first, last := SplitName(req.ToName)
	msg := edomain.Message{
		From:    edomain.Address{Name: p.settings.SenderName, Email: p.settings.SenderEmail},
		To:      edomain.Address{Name: req.ToName, Email: req.ToEmail},
		Subject: req.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
		Headers: map[string]string{"Reply-To": p.settings.SenderEmail},
		Params:  map[string]string{"FNAME": first, "LNAME": last, "EMAIL": req.ToEmail},
		Tags:    append([]string(nil), defaultTags...),
	}

	attempt := p.newID()
	sendCtx, cancel := context.WithTimeout(ctx, p.settings.Timeout)
	messageID, err := p.Sender.Send(sendCtx, msg)
	cancel()

	entry := ddomain.Entry{
		Timestamp: p.now(),
		OwnerID:   req.OwnerID,
		ToEmail:   req.ToEmail,
		ToName:    req.ToName,
		Subject:   req.Subject,
		Template:  req.Template,
		AttemptID: attempt,
	}
	if err != nil {
		errMsg := deliveryError(err)
		log.Error().Str("attempt_id", attempt).Str("error", errMsg).Msg("email delivery failed")
		entry.Error = &errMsg
		// the log must be written even when the caller has gone away
		p.Log.Append(context.WithoutCancel(ctx), entry)
		metrics.IncSend(req.Template, "delivery_failed")
		p.publish(ctx, "email.failed", req, attempt)
		res := failure(domain.ErrDeliveryFailed, errMsg)
		res.AttemptID = attempt
		return res
	}

	entry.Success = true
	entry.MessageID = messageID
	p.Log.Append(context.WithoutCancel(ctx), entry)
	metrics.IncSend(req.Template, "success")
	p.publish(ctx, "email.sent", req, attempt)
	log.Info().Str("attempt_id", attempt).Str("message_id", messageID).Msg("email sent")
	return domain.Result{Success: true, MessageID: messageID, AttemptID: attempt}
}

func deliveryError(err error) string {
	var apiErr *edomain.APIError
	var netErr *edomain.NetworkError
	switch {
	case errors.As(err, &apiErr), errors.As(err, &netErr):
		return err.Error()
	default:
		return "Unexpected error: " + err.Error()
	}
}

func (p *pipeline) SendToContact(ctx context.Context, owner, contactID int64, subject, template string, vars map[string]any) domain.Result {
	c, found, err := p.Directory.Get(ctx, owner, contactID)
	if err != nil {
		return failure(cdomain.ErrPersistence, err.Error())
	}
	if !found {
		return failure(cdomain.ErrNotFound, fmt.Sprintf("client with ID %d not found", contactID))
	}
	return p.Send(ctx, domain.Request{
		OwnerID:   owner,
		ToEmail:   c.Email,
		ToName:    c.Name,
		Subject:   subject,
		Template:  template,
		Variables: vars,
	})
}

func (p *pipeline) publish(ctx context.Context, typ string, req domain.Request, attempt string) {
	_ = p.Publisher.Publish(ctx, evdomain.Event{
		Type:    typ,
		OwnerID: req.OwnerID,
		Meta:    map[string]string{"template": req.Template, "attempt_id": attempt, "to": req.ToEmail},
		Time:    p.now().UTC(),
	})
}
