package notify

import (
	"context"
	"log/slog"
)

// Provider delivers one message to a chat channel.
type Provider interface {
	Send(ctx context.Context, text string) error
}

// Mailer sends a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

const previewChars = 200

// LogProvider logs a preview of each message instead of delivering it.
// It is used when a tenant has no webhook configured.
type LogProvider struct {
	logger *slog.Logger
}

// NewLogProvider creates a log-only provider.
func NewLogProvider(logger *slog.Logger) *LogProvider {
	return &LogProvider{logger: logger}
}

// Send logs a truncated preview.
func (l *LogProvider) Send(_ context.Context, text string) error {
	preview := text
	if r := []rune(text); len(r) > previewChars {
		preview = string(r[:previewChars]) + "…"
	}
	l.logger.Info("No webhook configured, alert not delivered",
		"chars", len(text),
		"preview", preview)
	return nil
}
