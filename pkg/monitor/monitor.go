// Package monitor contains the core domain types for the Scopehound scan engine.
package monitor

import (
	"strings"
	"time"
)

// PageType classifies a monitored page.
type PageType string

// Page types understood by the scan engine.
const (
	PagePricing PageType = "pricing"
	PageBlog    PageType = "blog"
	PageCareers PageType = "careers"
	PageGeneral PageType = "general"
)

// Page is a single URL tracked for a competitor.
type Page struct {
	ID    string   `json:"id" yaml:"id"`       // Stable within a competitor
	URL   string   `json:"url" yaml:"url"`     // Fetched on every scan
	Label string   `json:"label" yaml:"label"` // Human label used in alerts
	Type  PageType `json:"type" yaml:"type"`
}

// Competitor is one tracked company.
type Competitor struct {
	Name    string `json:"name" yaml:"name"`       // Unique within a scan, keys CompetitorState
	Website string `json:"website" yaml:"website"` // Display only
	Pages   []Page `json:"pages" yaml:"pages"`
	BlogRSS string `json:"blogRss,omitempty" yaml:"blogRss,omitempty"`
}

// Topic is a launch-feed topic.
type Topic struct {
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name" yaml:"name"`
}

// Settings holds the per-tenant delivery and feed settings.
type Settings struct {
	SlackWebhookURL      string     `json:"slackWebhookUrl,omitempty" yaml:"slackWebhookUrl,omitempty"`
	ProductHuntToken     string     `json:"productHuntToken,omitempty" yaml:"productHuntToken,omitempty"`
	ProductHuntTopics    []Topic    `json:"productHuntTopics,omitempty" yaml:"productHuntTopics,omitempty"`
	AnnouncementKeywords KeywordMap `json:"announcementKeywords,omitempty" yaml:"announcementKeywords,omitempty"`
	PHMinVotes           int        `json:"phMinVotes,omitempty" yaml:"phMinVotes,omitempty"`
}

// Keywords returns the configured keyword map, or the defaults when none is set.
func (s Settings) Keywords() KeywordMap {
	if len(s.AnnouncementKeywords) == 0 {
		return DefaultAnnouncementKeywords
	}
	return s.AnnouncementKeywords
}

// Config is the input to a scan.
type Config struct {
	Competitors []Competitor `json:"competitors" yaml:"competitors"`
	Settings    Settings     `json:"settings" yaml:"settings"`
}

// Launch is a post returned by the product-launch feed.
type Launch struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Tagline    string `json:"tagline"`
	URL        string `json:"url"`
	VotesCount int    `json:"votesCount"`
	CreatedAt  string `json:"createdAt"`
	Website    string `json:"website"`
}

// Priority ranks alerts and history events.
type Priority string

// Alert priorities, in dispatch order.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority accepts high, medium or low in any case.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, true
	default:
		return "", false
	}
}

// EventType is the kind of a history event or alert.
type EventType string

// Event types recorded in history.
const (
	EventSeoChange    EventType = "seo_change"
	EventPageChange   EventType = "page_change"
	EventAnnouncement EventType = "announcement"
	EventBlogPost     EventType = "blog_post"
	EventProductHunt  EventType = "producthunt"
)

// Alert is a formatted message waiting for dispatch.
type Alert struct {
	Kind     EventType `json:"kind"`
	Priority Priority  `json:"priority"`
	Text     string    `json:"text"`
}

// DiffExcerpt is the before/after snippet stored with a page change.
type DiffExcerpt struct {
	Before      string  `json:"before"`
	After       string  `json:"after"`
	ChangeRatio float64 `json:"changeRatio"`
}

// HistoryEvent is one entry in the change history.
type HistoryEvent struct {
	Date           time.Time    `json:"date"`
	Competitor     string       `json:"competitor,omitempty"`
	PageID         string       `json:"pageId,omitempty"`
	PageLabel      string       `json:"pageLabel,omitempty"`
	Type           EventType    `json:"type"`
	Priority       Priority     `json:"priority"`
	Summary        string       `json:"summary"`
	Analysis       string       `json:"analysis,omitempty"`
	Recommendation string       `json:"recommendation,omitempty"`
	Category       string       `json:"category,omitempty"`
	URL            string       `json:"url,omitempty"`
	Diff           *DiffExcerpt `json:"diff,omitempty"`
	Votes          int          `json:"votes,omitempty"`
	Topic          string       `json:"topic,omitempty"`
}
