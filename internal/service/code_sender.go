package service

import (
	"context"

	"guide-exam/internal/logger"

	"go.uber.org/zap"
)

// CodeSender delivers email verification codes.
type CodeSender interface {
	Send(ctx context.Context, email, code string) error
}

// LogCodeSender writes codes to the application log. It is the default until a
// mail provider is configured.
type LogCodeSender struct{}

func NewLogCodeSender() CodeSender {
	return LogCodeSender{}
}

func (LogCodeSender) Send(ctx context.Context, email, code string) error {
	logger.Get().Info("Verification code issued", zap.String("email", email), zap.String("code", code))
	return nil
}
