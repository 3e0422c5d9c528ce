package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// webhookStatusError is a non-2xx webhook response.
type webhookStatusError struct {
	code int
}

func (e *webhookStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.code)
}

// retryable reports whether a webhook failure is worth another attempt:
// network errors, 429 and 5xx.
func retryable(err error) bool {
	var se *webhookStatusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return true
}

// SlackProvider posts messages to an incoming webhook.
type SlackProvider struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewSlackProvider creates a provider for one webhook URL.
func NewSlackProvider(webhookURL string, client *http.Client, logger *slog.Logger) *SlackProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SlackProvider{
		webhookURL: webhookURL,
		client:     client,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Send posts {"text": text}.
func (s *SlackProvider) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("Content-Type", "application/json")

			start := time.Now()
			resp, err := s.client.Do(req)
			duration := time.Since(start)
			if err != nil {
				s.logger.Warn("Webhook request failed",
					"duration_ms", duration.Milliseconds(),
					"error", err)
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					s.logger.Debug("Failed to close response body", "error", closeErr)
				}
			}()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				s.logger.Warn("Webhook returned non-2xx status",
					"status_code", resp.StatusCode,
					"duration_ms", duration.Milliseconds())
				return &webhookStatusError{code: resp.StatusCode}
			}

			s.logger.Debug("Webhook request completed",
				"status_code", resp.StatusCode,
				"duration_ms", duration.Milliseconds(),
				"chars", len(text))
			return nil
		},
		retry.Attempts(3),
		retry.Delay(s.retryDelay),
		retry.MaxDelay(2*time.Minute),
		retry.MaxJitter(s.retryDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Info("Retrying webhook after error", "attempt", n, "error", err)
		}),
		retry.RetryIf(retryable),
	)
}
