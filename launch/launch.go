// Package launch queries the Product Hunt GraphQL API for recent launches in a topic.
package launch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"scopehound/pkg/monitor"
)

// DefaultEndpoint is the public Product Hunt GraphQL endpoint.
const DefaultEndpoint = "https://api.producthunt.com/v2/api/graphql"

const postsQuery = `{ posts(first: 20, topic: %q) { edges { node { id name tagline url votesCount createdAt website } } } }`

// Client fetches launches for a topic.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a client. An empty endpoint selects DefaultEndpoint.
func New(endpoint string, client *http.Client, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: monitor.FetchTimeout}
	}
	return &Client{endpoint: endpoint, client: client, logger: logger}
}

type graphQLResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node monitor.Launch `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Posts returns the topic's recent launches with at least minVotes votes.
// Any failure is logged and yields an empty list.
func (c *Client) Posts(ctx context.Context, token, topic string, minVotes int) []monitor.Launch {
	posts, err := c.fetch(ctx, token, topic)
	if err != nil {
		c.logger.Warn("Launch feed query failed", "topic", topic, "error", err)
		return nil
	}
	out := make([]monitor.Launch, 0, len(posts))
	for _, p := range posts {
		if p.VotesCount >= minVotes {
			out = append(out, p)
		}
	}
	return out
}

func (c *Client) fetch(ctx context.Context, token, topic string) ([]monitor.Launch, error) {
	body, err := json.Marshal(map[string]string{"query": fmt.Sprintf(postsQuery, topic)})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", monitor.UserAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("Failed to close response body", "error", closeErr)
		}
	}()

	c.logger.Debug("Launch feed request completed",
		"topic", topic,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var parsed graphQLResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("graphql: %s", parsed.Errors[0].Message)
	}

	posts := make([]monitor.Launch, 0, len(parsed.Data.Posts.Edges))
	for _, e := range parsed.Data.Posts.Edges {
		posts = append(posts, e.Node)
	}
	return posts, nil
}
