package gormstore

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer delivers password reset tokens.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes reset tokens to the log instead of sending mail.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "mailer").Logger()}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.logger.Info().Str("email", email).Str("token", token).Msg("password reset requested")
	return nil
}
