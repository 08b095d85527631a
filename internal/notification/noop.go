package notification

import (
	"context"
	"log/slog"
)

// NoopSender logs emails instead of delivering them. Used when SMTP is not
// configured.
type NoopSender struct {
	logger *slog.Logger
}

// NewNoopSender creates a NoopSender backed by the given logger.
func NewNoopSender(logger *slog.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send logs the email and returns nil.
func (n *NoopSender) Send(_ context.Context, to, subject, body string) error {
	n.logger.Info("email not sent (smtp disabled)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
