package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"scopehound/pkg/monitor"
)

// legacyCompetitor is the v1 per-competitor document.
type legacyCompetitor struct {
	BlogPostIDs []string         `json:"blogPostIds"`
	PricingHash string           `json:"pricingHash"`
	Pricing     *monitor.Pricing `json:"pricing"`
}

type legacyTopic struct {
	PostIDs []string `json:"postIds"`
}

// documentVersion reads _version; absent means 1.
func documentVersion(raw []byte) (int, error) {
	var header struct {
		Version *int `json:"_version"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return 0, err
	}
	if header.Version == nil {
		return 1, nil
	}
	return *header.Version, nil
}

// DecodeState parses a stored state document, migrating it to the current
// version when needed. migrated reports whether an upgrade ran.
func DecodeState(raw []byte, cfg *monitor.Config, now time.Time) (state *monitor.State, migrated bool, err error) {
	version, err := documentVersion(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode state: %w", err)
	}
	if version >= monitor.StateVersion {
		var s monitor.State
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false, fmt.Errorf("decode state: %w", err)
		}
		if s.Competitors == nil {
			s.Competitors = make(map[string]*monitor.CompetitorState)
		}
		if s.ProductHunt == nil {
			s.ProductHunt = make(map[string]*monitor.TopicState)
		}
		return &s, false, nil
	}
	s, err := MigrateV1(raw, cfg, now)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// MigrateV1 upgrades a v1 document, where each configured competitor's name
// maps directly to its legacy blob, to the v2 shape. Blog post IDs, prior
// pricing and topic post IDs are carried over; a legacy pricing hash seeds
// the competitor's first pricing page.
func MigrateV1(raw []byte, cfg *monitor.Config, now time.Time) (*monitor.State, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode v1 state: %w", err)
	}

	out := monitor.NewState()
	if cfg == nil {
		return out, nil
	}

	for _, c := range cfg.Competitors {
		blob, ok := doc[c.Name]
		if !ok {
			continue
		}
		var legacy legacyCompetitor
		if err := json.Unmarshal(blob, &legacy); err != nil {
			// An unreadable blob migrates to an empty state for that competitor.
			continue
		}

		cs := out.Competitor(c.Name)
		if legacy.BlogPostIDs != nil {
			cs.Blog.PostIDs = legacy.BlogPostIDs
		}
		cs.Pricing = legacy.Pricing

		if legacy.PricingHash == "" {
			continue
		}
		for _, p := range c.Pages {
			if p.Type == monitor.PagePricing {
				cs.Pages[p.ID] = &monitor.PageState{
					Hash:        legacy.PricingHash,
					LastChecked: now,
				}
				break
			}
		}
	}

	var topics map[string]legacyTopic
	if rawTopics, ok := doc["productHunt"]; ok {
		if err := json.Unmarshal(rawTopics, &topics); err != nil {
			topics = nil
		}
	}
	for _, t := range cfg.Settings.ProductHuntTopics {
		if lt, ok := topics[t.Slug]; ok && lt.PostIDs != nil {
			out.Topic(t.Slug).PostIDs = lt.PostIDs
		}
	}

	return out, nil
}
