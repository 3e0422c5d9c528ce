package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"scopehound/pkg/monitor"
)

// Store reads and writes the scan engine's documents for any tenant.
type Store struct {
	kv     KV
	logger *slog.Logger
}

// NewStore creates a store over a KV backend.
func NewStore(kv KV, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// KV exposes the underlying backend.
func (s *Store) KV() KV {
	return s.kv
}

func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.kv.Get(ctx, key)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// LoadConfig reads a tenant's competitors and settings. Missing documents
// yield an empty config.
func (s *Store) LoadConfig(ctx context.Context, tenant string) (*monitor.Config, error) {
	k := Keys{Tenant: tenant}
	cfg := &monitor.Config{}
	if _, err := s.getJSON(ctx, k.CompetitorsKey(), &cfg.Competitors); err != nil {
		return nil, fmt.Errorf("load competitors: %w", err)
	}
	if _, err := s.getJSON(ctx, k.SettingsKey(), &cfg.Settings); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes a tenant's competitors and settings.
func (s *Store) SaveConfig(ctx context.Context, tenant string, cfg *monitor.Config) error {
	k := Keys{Tenant: tenant}
	competitors := cfg.Competitors
	if competitors == nil {
		competitors = []monitor.Competitor{}
	}
	if err := s.putJSON(ctx, k.CompetitorsKey(), competitors); err != nil {
		return err
	}
	return s.putJSON(ctx, k.SettingsKey(), cfg.Settings)
}

// LoadState reads a tenant's state, migrating legacy documents in memory.
// A missing or corrupt document yields a fresh state; only backend failures
// are returned as errors.
func (s *Store) LoadState(ctx context.Context, tenant string, cfg *monitor.Config, now time.Time) (*monitor.State, error) {
	key := Keys{Tenant: tenant}.StateKey()
	data, err := s.kv.Get(ctx, key)
	if IsNotFound(err) {
		return monitor.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	state, migrated, err := DecodeState(data, cfg, now)
	if err != nil {
		s.logger.Warn("State document unreadable, starting fresh", "key", key, "error", err)
		return monitor.NewState(), nil
	}
	if migrated {
		s.logger.Info("Migrated state document", "key", key, "to_version", monitor.StateVersion)
	}
	return state, nil
}

// SaveState writes a tenant's state at the current version.
func (s *Store) SaveState(ctx context.Context, tenant string, state *monitor.State) error {
	if state.Version < monitor.StateVersion {
		state.Version = monitor.StateVersion
	}
	return s.putJSON(ctx, Keys{Tenant: tenant}.StateKey(), state)
}

// LoadHistory reads a tenant's history. Missing or corrupt history is empty.
func (s *Store) LoadHistory(ctx context.Context, tenant string) ([]monitor.HistoryEvent, error) {
	key := Keys{Tenant: tenant}.HistoryKey()
	data, err := s.kv.Get(ctx, key)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	var events []monitor.HistoryEvent
	if err := json.Unmarshal(data, &events); err != nil {
		s.logger.Warn("History document unreadable, starting empty", "key", key, "error", err)
		return nil, nil
	}
	return events, nil
}

// SaveHistory writes a tenant's history.
func (s *Store) SaveHistory(ctx context.Context, tenant string, events []monitor.HistoryEvent) error {
	if events == nil {
		events = []monitor.HistoryEvent{}
	}
	return s.putJSON(ctx, Keys{Tenant: tenant}.HistoryKey(), events)
}

// SaveDashboard writes a tenant's dashboard projection.
func (s *Store) SaveDashboard(ctx context.Context, tenant string, projection any) error {
	return s.putJSON(ctx, Keys{Tenant: tenant}.DashboardKey(), projection)
}

// LoadDashboard returns the raw cached projection.
func (s *Store) LoadDashboard(ctx context.Context, tenant string) ([]byte, error) {
	return s.kv.Get(ctx, Keys{Tenant: tenant}.DashboardKey())
}

// HistoryDays resolves a tenant's retention from its account tier.
func (s *Store) HistoryDays(ctx context.Context, tenant string) int {
	if tenant == "" {
		return monitor.DefaultHistoryDays
	}
	var account struct {
		Tier string `json:"tier"`
	}
	if _, err := s.getJSON(ctx, Keys{Tenant: tenant}.AccountKey(), &account); err != nil {
		s.logger.Warn("Could not read account tier, using default retention", "tenant", tenant, "error", err)
		return monitor.DefaultHistoryDays
	}
	return monitor.HistoryDaysForTier(account.Tier)
}

// ListTenants returns every tenant that has a competitor configuration.
func (s *Store) ListTenants(ctx context.Context) ([]string, error) {
	keys, err := s.kv.List(ctx, tenantConfigPrefix)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	var tenants []string
	for _, k := range keys {
		if t, ok := tenantFromCompetitorsKey(k); ok {
			tenants = append(tenants, t)
		}
	}
	return tenants, nil
}
