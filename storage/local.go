package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local stores each key as a JSON file in a directory.
type Local struct {
	dir    string
	logger *slog.Logger
}

// NewLocal creates the directory if needed.
func NewLocal(dir string, logger *slog.Logger) (*Local, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create local storage directory: %w", err)
	}
	return &Local{dir: dir, logger: logger}, nil
}

// Keys may contain ':' and arbitrary tenant IDs, so file names are path-escaped.
func (l *Local) path(key string) string {
	return filepath.Join(l.dir, url.PathEscape(key)+".json")
}

// Get reads a key.
func (l *Local) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read from local storage: %w", err)
	}
	return data, nil
}

// Put writes a key atomically via rename.
func (l *Local) Put(_ context.Context, key string, value []byte) error {
	final := l.path(key)
	tmp, err := os.CreateTemp(l.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write to local storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename into place: %w", err)
	}
	l.logger.Debug("Document saved to local storage", "path", final, "bytes", len(value))
	return nil
}

// List returns the keys under prefix.
func (l *Local) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read local storage directory: %w", err)
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ".json"))
		if err != nil {
			l.logger.Warn("Skipping unreadable file name", "file", name, "error", err)
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op.
func (l *Local) Close() error { return nil }
