package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	gcs "cloud.google.com/go/storage"
	"gopkg.in/yaml.v3"

	"scopehound/pkg/monitor"
	"scopehound/storage"
)

// openKV connects the configured storage backend.
func openKV(ctx context.Context, cfg config, logger *slog.Logger) (storage.KV, error) {
	backend := cfg.backend()
	logger.Info("Opening storage backend", "backend", backend)

	switch backend {
	case "memory":
		return storage.NewMemory(), nil
	case "local":
		dir := cfg.LocalStorage
		if dir == "" {
			dir = "./data"
			logger.Info("No LOCAL_STORAGE set, defaulting to local development mode", "storage_path", dir)
		}
		return storage.NewLocal(dir, logger)
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "scopehound.db"
		}
		return storage.OpenSQLite(path)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL required for postgres storage")
		}
		return storage.ConnectPostgres(ctx, cfg.DatabaseURL)
	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL required for redis storage")
		}
		return storage.ConnectRedis(ctx, cfg.RedisURL)
	case "gcs":
		if cfg.StorageBucket == "" {
			return nil, errors.New("STORAGE_BUCKET required for gcs storage")
		}
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		return storage.NewGCS(client, cfg.StorageBucket, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// loadConfigFile reads a YAML monitor configuration used as a scan override.
func loadConfigFile(path string) (*monitor.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg monitor.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}
