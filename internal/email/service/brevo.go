package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	edomain "github.com/corvusHold/courier/internal/email/domain"
	"github.com/corvusHold/courier/internal/metrics"
)

// Ensure Brevo implements domain.Sender
var _ edomain.Sender = (*Brevo)(nil)

const DefaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

type Brevo struct {
	apiKey string
	url    string
	http   *http.Client
}

type BrevoOption func(*Brevo)

// WithHTTPClient replaces the default client. Deadlines come from the request context.
func WithHTTPClient(c *http.Client) BrevoOption { return func(b *Brevo) { b.http = c } }

func WithURL(url string) BrevoOption { return func(b *Brevo) { b.url = url } }

func NewBrevo(apiKey string, opts ...BrevoOption) *Brevo {
	b := &Brevo{apiKey: apiKey, url: DefaultBrevoURL, http: &http.Client{}}
	for _, o := range opts {
		o(b)
	}
	return b
}

type brevoEmail struct {
	Sender      edomain.Address   `json:"sender"`
	To          []edomain.Address `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	TextContent string            `json:"textContent"`
	Headers     map[string]string `json:"headers,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

func (b *Brevo) Send(ctx context.Context, msg edomain.Message) (string, error) {
	payload := brevoEmail{
		Sender:      msg.From,
		To:          []edomain.Address{msg.To},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
		Headers:     msg.Headers,
		Params:      msg.Params,
		Tags:        msg.Tags,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode brevo payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(buf))
	if err != nil {
		return "", &edomain.NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.apiKey)

	start := time.Now()
	resp, err := b.http.Do(req)
	if err != nil {
		metrics.ObserveDelivery("brevo", "network_error", time.Since(start).Seconds())
		return "", &edomain.NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	metrics.ObserveDelivery("brevo", fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return "", &edomain.NetworkError{Err: err}
	}
	if resp.StatusCode != http.StatusCreated {
		return "", &edomain.APIError{Status: resp.StatusCode, Body: string(body)}
	}
	var out brevoResponse
	// a 201 with an unreadable body is still a delivery
	_ = json.Unmarshal(body, &out)
	return out.MessageID, nil
}
