package storage

import "strings"

// Keys maps one tenant's documents to KV keys. The zero value is single-tenant.
type Keys struct {
	Tenant string
}

// StateKey is the MonitorState document.
func (k Keys) StateKey() string {
	if k.Tenant == "" {
		return "monitor_state"
	}
	return "user_state:" + k.Tenant + ":monitor"
}

// HistoryKey is the change history document.
func (k Keys) HistoryKey() string {
	if k.Tenant == "" {
		return "change_history"
	}
	return "user_state:" + k.Tenant + ":history"
}

// DashboardKey is the cached dashboard projection.
func (k Keys) DashboardKey() string {
	if k.Tenant == "" {
		return "dashboard_cache"
	}
	return "user_state:" + k.Tenant + ":dashboard"
}

// CompetitorsKey holds the configured competitor list.
func (k Keys) CompetitorsKey() string {
	if k.Tenant == "" {
		return "config:competitors"
	}
	return "user_config:" + k.Tenant + ":competitors"
}

// SettingsKey holds the configured settings.
func (k Keys) SettingsKey() string {
	if k.Tenant == "" {
		return "config:settings"
	}
	return "user_config:" + k.Tenant + ":settings"
}

// AccountKey is the tenant's account record; only its tier is read here.
func (k Keys) AccountKey() string {
	return "user:" + k.Tenant
}

const (
	tenantConfigPrefix = "user_config:"
	competitorsSuffix  = ":competitors"
)

// tenantFromCompetitorsKey returns the tenant of a user_config:<t>:competitors key.
func tenantFromCompetitorsKey(key string) (string, bool) {
	if !strings.HasPrefix(key, tenantConfigPrefix) || !strings.HasSuffix(key, competitorsSuffix) {
		return "", false
	}
	t := key[len(tenantConfigPrefix) : len(key)-len(competitorsSuffix)]
	return t, t != ""
}
