// Package scraper fetches competitor pages and extracts the signals the scan
// engine compares between runs.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"scopehound/pkg/monitor"
)

const maxBodyBytes = 5 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.URL)
}

// IsStatusError checks if an error is a non-2xx response error.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// Fetcher performs bounded single-shot GETs.
type Fetcher struct {
	client  *http.Client
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a new fetcher. A nil client gets one bounded by monitor.FetchTimeout.
func New(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: monitor.FetchTimeout}
	}
	return &Fetcher{
		client:  client,
		logger:  logger,
		timeout: monitor.FetchTimeout,
	}
}

// WithTimeout overrides the per-request wall timeout.
func (f *Fetcher) WithTimeout(d time.Duration) *Fetcher {
	if d > 0 {
		f.timeout = d
	}
	return f
}

// Fetch returns the response body on 2xx. Any failure is logged once and
// reported as ok=false; the next scan is the retry.
func (f *Fetcher) Fetch(ctx context.Context, url string) (body string, ok bool) {
	start := time.Now()
	body, err := f.get(ctx, url)
	if err != nil {
		f.logger.Warn("Fetch failed",
			"url", url,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return "", false
	}
	f.logger.Debug("HTTP request completed",
		"url", url,
		"duration_ms", time.Since(start).Milliseconds(),
		"bytes", len(body))
	return body, true
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", monitor.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/rss+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.Debug("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: url, Code: resp.StatusCode}
	}

	var r io.Reader = resp.Body
	if decoded, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type")); err == nil {
		r = decoded
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
