package monitor

import "time"

const (
	// UserAgent identifies the fetcher to monitored sites.
	UserAgent = "Scopehound/3.0 (Competitive Intelligence)"

	// FetchTimeout bounds every page and feed GET.
	FetchTimeout = 10 * time.Second

	// DefaultHistoryDays applies when a tenant's tier is absent or unknown.
	DefaultHistoryDays = 90

	// UnlimitedHistory is the tier value that disables age-based pruning.
	UnlimitedHistory = -1

	// MaxHistoryEvents caps the persisted history.
	MaxHistoryEvents = 500

	// MaxRecentChanges caps the dashboard's recent-changes list.
	MaxRecentChanges = 50
)

// HistoryDaysByTier is the retention table keyed by subscription tier.
var HistoryDaysByTier = map[string]int{
	"scout":     30,
	"recon":     90,
	"operator":  180,
	"command":   365,
	"strategic": UnlimitedHistory,
}

// HistoryDaysForTier resolves a tier to its retention in days.
func HistoryDaysForTier(tier string) int {
	if days, ok := HistoryDaysByTier[tier]; ok {
		return days
	}
	return DefaultHistoryDays
}

// DefaultAnnouncementKeywords is used when a tenant configures no keywords.
var DefaultAnnouncementKeywords = KeywordMap{
	{Category: "funding", Keywords: []string{"raises", "raised", "funding", "series a", "series b", "series c", "seed round", "investment", "valuation"}},
	{Category: "partnership", Keywords: []string{"partners with", "partnership", "teams up", "collaboration", "integrates with"}},
	{Category: "acquisition", Keywords: []string{"acquires", "acquired", "acquisition", "merger", "merges with"}},
	{Category: "events", Keywords: []string{"webinar", "conference", "summit", "meetup", "keynote", "join us at"}},
	{Category: "hiring", Keywords: []string{"hiring", "join our team", "appoints", "welcomes", "new chief", "new ceo"}},
	{Category: "product", Keywords: []string{"launch", "introducing", "announcing", "new feature", "now available", "release"}},
}
