package auth

import (
	"context"

	"go.uber.org/zap"
)

// DevConsoleMailer logs confirmation tokens instead of sending mail.
type DevConsoleMailer struct {
	log *zap.Logger
}

func NewDevConsoleMailer(log *zap.Logger) *DevConsoleMailer {
	return &DevConsoleMailer{log: log.Named("mail")}
}

func (m *DevConsoleMailer) SendConfirmation(_ context.Context, email, token string) error {
	m.log.Info("confirmation email", zap.String("email", email), zap.String("token", token))
	return nil
}
