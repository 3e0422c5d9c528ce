package notify

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"scopehound/pkg/monitor"
)

// Dispatcher delivers a scan's alerts as an ordered digest.
type Dispatcher struct {
	client   *http.Client
	logger   *slog.Logger
	mailer   Mailer
	digestTo string
}

// NewDispatcher creates a dispatcher. A nil client uses a 30 second timeout.
func NewDispatcher(client *http.Client, logger *slog.Logger) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Dispatcher{client: client, logger: logger}
}

// WithMailer mirrors every digest to one email address.
func (d *Dispatcher) WithMailer(m Mailer, to string) *Dispatcher {
	d.mailer = m
	d.digestTo = to
	return d
}

// provider picks the delivery channel for a webhook URL.
func (d *Dispatcher) provider(webhookURL string) Provider {
	if webhookURL == "" {
		return NewLogProvider(d.logger)
	}
	return NewSlackProvider(webhookURL, d.client, d.logger)
}

// Dispatch sends the planned messages in order. Delivery failures are logged
// and do not stop later messages. It returns how many messages were accepted.
func (d *Dispatcher) Dispatch(ctx context.Context, webhookURL string, alerts []monitor.Alert, now time.Time) int {
	messages := Plan(alerts, now)
	if len(messages) == 0 {
		return 0
	}
	return d.deliver(ctx, d.provider(webhookURL), messages, now)
}

func (d *Dispatcher) deliver(ctx context.Context, p Provider, messages []string, now time.Time) int {
	sent := 0
	for i, msg := range messages {
		if err := p.Send(ctx, msg); err != nil {
			d.logger.Error("Failed to deliver alert", "position", i, "error", err)
			continue
		}
		sent++
	}

	if d.mailer != nil && d.digestTo != "" {
		subject := "Scopehound digest for " + now.UTC().Format("January 2, 2006")
		if err := d.mailer.Send(ctx, d.digestTo, subject, strings.Join(messages, "\n\n")); err != nil {
			d.logger.Error("Failed to mail digest", "to", d.digestTo, "error", err)
		}
	}

	d.logger.Info("Digest delivered", "messages", len(messages), "sent", sent)
	return sent
}
