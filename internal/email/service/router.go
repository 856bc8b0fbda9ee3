package service

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/corvusHold/courier/internal/config"
	edomain "github.com/corvusHold/courier/internal/email/domain"
)

// NewSender picks the delivery provider from EMAIL_PROVIDER. The brevo
// provider without an API key falls back to the log provider outside production.
func NewSender(cfg config.Config, log zerolog.Logger) edomain.Sender {
	switch strings.ToLower(cfg.EmailProvider) {
	case "log":
		return NewLog(log)
	default:
		if cfg.BrevoAPIKey == "" {
			if cfg.AppEnv == "production" {
				log.Warn().Msg("BREVO_API_KEY is not set, sends will be rejected by the API")
			} else {
				log.Warn().Msg("BREVO_API_KEY is not set, using the log email provider")
				return NewLog(log)
			}
		}
		opts := []BrevoOption{}
		if cfg.BrevoAPIURL != "" {
			opts = append(opts, WithURL(cfg.BrevoAPIURL))
		}
		return NewBrevo(cfg.BrevoAPIKey, opts...)
	}
}
