// Package llm wraps a text-in/text-out chat model and turns its free-form
// answers into validated records.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// DefaultModel is the Workers AI model used when none is configured.
const DefaultModel = "@cf/meta/llama-3.1-8b-instruct"

const defaultBaseURL = "https://api.cloudflare.com/client/v4"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the input of a model run.
type Request struct {
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

// Runner executes a chat request against a model and returns its response text.
type Runner interface {
	Run(ctx context.Context, model string, req Request) (string, error)
}

// serverError marks responses worth retrying.
type serverError struct {
	code int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("HTTP %d", e.code)
}

// WorkersAI runs models through the Cloudflare Workers AI REST API.
type WorkersAI struct {
	accountID  string
	token      string
	baseURL    string
	client     *http.Client
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewWorkersAI creates a runner for the given account.
func NewWorkersAI(accountID, token string, logger *slog.Logger) *WorkersAI {
	return &WorkersAI{
		accountID:  accountID,
		token:      token,
		baseURL:    defaultBaseURL,
		client:     &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
		retryDelay: time.Second,
	}
}

// WithBaseURL points the runner at a different API root.
func (w *WorkersAI) WithBaseURL(u string) *WorkersAI {
	w.baseURL = u
	return w
}

type workersAIResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Run posts the request to /accounts/{id}/ai/run/{model}. Network errors and
// 5xx responses are retried; anything else fails immediately.
func (w *WorkersAI) Run(ctx context.Context, model string, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/accounts/%s/ai/run/%s", w.baseURL, url.PathEscape(w.accountID), model)

	var out string
	err = retry.Do(
		func() error {
			w.logger.Debug("Workers AI request starting", "model", model, "max_tokens", req.MaxTokens)

			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Authorization", "Bearer "+w.token)

			start := time.Now()
			resp, err := w.client.Do(httpReq)
			duration := time.Since(start)
			if err != nil {
				w.logger.Warn("Workers AI request failed, will retry",
					"model", model,
					"duration_ms", duration.Milliseconds(),
					"error", err)
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					w.logger.Debug("Failed to close response body", "error", closeErr)
				}
			}()

			if resp.StatusCode >= 500 {
				return &serverError{code: resp.StatusCode}
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return retry.Unrecoverable(fmt.Errorf("HTTP %d", resp.StatusCode))
			}

			data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			var parsed workersAIResponse
			if err := json.Unmarshal(data, &parsed); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
			}
			if len(parsed.Errors) > 0 {
				return retry.Unrecoverable(errors.New(parsed.Errors[0].Message))
			}

			w.logger.Debug("Workers AI request completed",
				"model", model,
				"duration_ms", duration.Milliseconds(),
				"response_chars", len(parsed.Result.Response))
			out = parsed.Result.Response
			return nil
		},
		retry.Attempts(3),
		retry.Delay(w.retryDelay),
		retry.MaxDelay(2*time.Minute),
		retry.MaxJitter(w.retryDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			w.logger.Info("Retrying Workers AI request after error", "attempt", n, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("workers ai run: %w", err)
	}
	return out, nil
}
