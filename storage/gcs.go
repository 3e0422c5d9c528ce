package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/api/iterator"
)

const gcsSuffix = ".json"

// GCS stores each key as an object in a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	logger *slog.Logger
}

// NewGCS wraps an existing client.
func NewGCS(client *storage.Client, bucket string, logger *slog.Logger) *GCS {
	return &GCS{client: client, bucket: bucket, logger: logger}
}

// Get reads an object, retrying transient failures.
func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	missing := false
	err := retry.Do(
		func() error {
			r, openErr := g.client.Bucket(g.bucket).Object(key + gcsSuffix).NewReader(ctx)
			if openErr != nil {
				if errors.Is(openErr, storage.ErrObjectNotExist) {
					missing = true
					return retry.Unrecoverable(openErr)
				}
				return fmt.Errorf("open storage reader: %w", openErr)
			}
			defer func() {
				if closeErr := r.Close(); closeErr != nil {
					g.logger.Warn("Failed to close storage reader", "error", closeErr)
				}
			}()

			var readErr error
			data, readErr = io.ReadAll(r)
			if readErr != nil {
				return fmt.Errorf("read from storage: %w", readErr)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(2*time.Minute),
		retry.MaxJitter(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, retryErr error) {
			g.logger.Info("Retrying load operation after error", "attempt", n, "key", key, "error", retryErr)
		}),
	)
	if missing {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load after retries: %w", err)
	}
	return data, nil
}

// Put writes an object, retrying transient failures.
func (g *GCS) Put(ctx context.Context, key string, value []byte) error {
	err := retry.Do(
		func() error {
			w := g.client.Bucket(g.bucket).Object(key + gcsSuffix).NewWriter(ctx)
			w.ContentType = "application/json"
			if _, writeErr := w.Write(value); writeErr != nil {
				if closeErr := w.Close(); closeErr != nil {
					g.logger.Warn("Failed to close writer after error", "error", closeErr)
				}
				return fmt.Errorf("write to storage: %w", writeErr)
			}
			if closeErr := w.Close(); closeErr != nil {
				return fmt.Errorf("close storage writer: %w", closeErr)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(2*time.Minute),
		retry.MaxJitter(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, retryErr error) {
			g.logger.Info("Retrying save operation after error", "attempt", n, "key", key, "error", retryErr)
		}),
	)
	if err != nil {
		return fmt.Errorf("save after retries: %w", err)
	}
	g.logger.Debug("Document saved", "bucket", g.bucket, "key", key, "bytes", len(value))
	return nil
}

// List iterates the objects under prefix.
func (g *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate storage: %w", err)
		}
		if !strings.HasSuffix(attrs.Name, gcsSuffix) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(attrs.Name, gcsSuffix))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
