package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/api/gmail/v1"
)

// GmailProvider mails the digest through the Gmail API.
type GmailProvider struct {
	service *gmail.Service
	logger  *slog.Logger
}

// NewGmailProvider creates a Gmail mailer.
func NewGmailProvider(service *gmail.Service, logger *slog.Logger) *GmailProvider {
	return &GmailProvider{service: service, logger: logger}
}

// sanitizeHeader drops control characters so values cannot inject headers.
func sanitizeHeader(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// buildMessage renders a plain-text RFC 5322 message.
func buildMessage(to, subject, body string) string {
	var msg strings.Builder
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "To: %s\r\n", sanitizeHeader(to))
	fmt.Fprintf(&msg, "Subject: %s\r\n", sanitizeHeader(subject))
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)
	return msg.String()
}

// Send sends one email. The From address is the authenticated account.
func (g *GmailProvider) Send(ctx context.Context, to, subject, body string) error {
	encoded := base64.URLEncoding.EncodeToString([]byte(buildMessage(to, subject, body)))

	return retry.Do(
		func() error {
			g.logger.Info("Gmail API request starting",
				"endpoint", "users.messages.send",
				"to", to,
				"subject", subject)

			start := time.Now()
			_, err := g.service.Users.Messages.Send("me", &gmail.Message{Raw: encoded}).Context(ctx).Do()
			duration := time.Since(start)
			if err != nil {
				g.logger.Warn("Gmail API send failed, will retry",
					"to", to,
					"duration_ms", duration.Milliseconds(),
					"error", err)
				return err
			}

			g.logger.Info("Gmail API request completed",
				"endpoint", "users.messages.send",
				"to", to,
				"duration_ms", duration.Milliseconds())
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(2*time.Minute),
		retry.MaxJitter(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Info("Retrying Gmail send after error", "attempt", n, "error", err)
		}),
	)
}
