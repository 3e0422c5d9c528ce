package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// config is the process configuration read from the environment.
type config struct {
	Port            string
	LogLevel        slog.Level
	StorageBackend  string
	LocalStorage    string
	StorageBucket   string
	SQLitePath      string
	DatabaseURL     string
	RedisURL        string
	MultiTenant     bool
	ScanConcurrency int
	CFAccountID     string
	CFAPIToken      string
	AIModel         string
	LaunchEndpoint  string
	GoogleCreds     string
	DigestEmailTo   string
	FetchTimeout    time.Duration
	ScanToken       string
}

func loadConfig() config {
	return config{
		Port:            getString("PORT", "8080"),
		LogLevel:        parseLevel(getString("LOG_LEVEL", "info")),
		StorageBackend:  strings.ToLower(getString("STORAGE_BACKEND", "")),
		LocalStorage:    getString("LOCAL_STORAGE", ""),
		StorageBucket:   getString("STORAGE_BUCKET", ""),
		SQLitePath:      getString("SQLITE_PATH", ""),
		DatabaseURL:     getString("DATABASE_URL", ""),
		RedisURL:        getString("REDIS_URL", ""),
		MultiTenant:     getBool("MULTI_TENANT", false),
		ScanConcurrency: getInt("SCAN_CONCURRENCY", 1),
		CFAccountID:     getString("CF_ACCOUNT_ID", ""),
		CFAPIToken:      getString("CF_API_TOKEN", ""),
		AIModel:         getString("AI_MODEL", ""),
		LaunchEndpoint:  getString("PRODUCT_HUNT_ENDPOINT", ""),
		GoogleCreds:     getString("GOOGLE_CREDENTIALS_JSON", ""),
		DigestEmailTo:   getString("DIGEST_EMAIL_TO", ""),
		FetchTimeout:    getDuration("FETCH_TIMEOUT", 10*time.Second),
		ScanToken:       getString("SCAN_TOKEN", ""),
	}
}

// backend resolves the storage backend, inferring it from whichever
// connection setting is present when STORAGE_BACKEND is unset.
func (c config) backend() string {
	if c.StorageBackend != "" {
		return c.StorageBackend
	}
	switch {
	case c.DatabaseURL != "":
		return "postgres"
	case c.RedisURL != "":
		return "redis"
	case c.SQLitePath != "":
		return "sqlite"
	case c.StorageBucket != "" && c.LocalStorage == "":
		return "gcs"
	default:
		return "local"
	}
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
