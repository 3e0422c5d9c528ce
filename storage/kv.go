// Package storage persists scan state, history, dashboards and tenant
// configuration as JSON documents in a key/value backend.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when a key does not exist.
var ErrNotFound = errors.New("storage: object doesn't exist")

// IsNotFound checks if an error indicates a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// KV is a flat key/value store of JSON documents.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// List returns every key with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
