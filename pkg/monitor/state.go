package monitor

import (
	"encoding/json"
	"time"
)

// StateVersion is the current schema version of State.
const StateVersion = 2

// PageState tracks the last observation of one page.
//
// An empty Hash encodes the never-indexed state; JSON null decodes to it.
type PageState struct {
	Hash         string     `json:"hash"`
	TextSnapshot string     `json:"textSnapshot"`
	LastChecked  time.Time  `json:"lastChecked"`
	LastChanged  *time.Time `json:"lastChanged"`
}

// Indexed reports whether the page has a stored fingerprint.
func (p *PageState) Indexed() bool {
	return p != nil && p.Hash != ""
}

// SeoSignals are the on-page SEO fields tracked per page. Absent fields
// are empty and encode as null.
type SeoSignals struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
	OgTitle         string   `json:"ogTitle"`
	OgDescription   string   `json:"ogDescription"`
	H1s             []string `json:"h1s"`
}

// Plan is a single pricing tier.
type Plan struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Features []string `json:"features"`
}

// Pricing is the structured pricing document extracted from a pricing page.
type Pricing struct {
	Plans []Plan `json:"plans"`
	Notes string `json:"notes"`
}

// BlogState tracks the RSS items already seen for a competitor.
type BlogState struct {
	PostIDs []string `json:"postIds"`
	FeedURL string   `json:"feedUrl,omitempty"` // Auto-discovered when the competitor has no blogRss
}

// CompetitorState is the persisted state for one competitor.
type CompetitorState struct {
	Pages   map[string]*PageState  `json:"pages"`
	Blog    BlogState              `json:"blog"`
	Seo     map[string]*SeoSignals `json:"seo"`
	Pricing *Pricing               `json:"pricing"`
}

// NewCompetitorState returns an empty competitor state.
func NewCompetitorState() *CompetitorState {
	return &CompetitorState{
		Pages: make(map[string]*PageState),
		Blog:  BlogState{PostIDs: []string{}},
		Seo:   make(map[string]*SeoSignals),
	}
}

// TopicState tracks launch-feed posts already seen for a topic.
type TopicState struct {
	PostIDs []string `json:"postIds"`
}

// State is the top-level persisted document for one tenant.
type State struct {
	Version     int                         `json:"_version"`
	Competitors map[string]*CompetitorState `json:"competitors"`
	ProductHunt map[string]*TopicState      `json:"productHunt"`
}

// NewState returns an empty state at the current version.
func NewState() *State {
	return &State{
		Version:     StateVersion,
		Competitors: make(map[string]*CompetitorState),
		ProductHunt: make(map[string]*TopicState),
	}
}

// Competitor returns the state for name, creating it when missing.
func (s *State) Competitor(name string) *CompetitorState {
	if s.Competitors == nil {
		s.Competitors = make(map[string]*CompetitorState)
	}
	cs, ok := s.Competitors[name]
	if !ok || cs == nil {
		cs = NewCompetitorState()
		s.Competitors[name] = cs
	}
	if cs.Pages == nil {
		cs.Pages = make(map[string]*PageState)
	}
	if cs.Seo == nil {
		cs.Seo = make(map[string]*SeoSignals)
	}
	return cs
}

// Topic returns the launch-feed state for slug, creating it when missing.
func (s *State) Topic(slug string) *TopicState {
	if s.ProductHunt == nil {
		s.ProductHunt = make(map[string]*TopicState)
	}
	ts, ok := s.ProductHunt[slug]
	if !ok || ts == nil {
		ts = &TopicState{PostIDs: []string{}}
		s.ProductHunt[slug] = ts
	}
	return ts
}

// nullable maps the empty string to JSON null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MarshalJSON writes an empty hash or snapshot as null.
func (p PageState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Hash         *string    `json:"hash"`
		TextSnapshot *string    `json:"textSnapshot"`
		LastChecked  time.Time  `json:"lastChecked"`
		LastChanged  *time.Time `json:"lastChanged"`
	}{nullable(p.Hash), nullable(p.TextSnapshot), p.LastChecked, p.LastChanged})
}

// MarshalJSON writes absent fields as null.
func (s SeoSignals) MarshalJSON() ([]byte, error) {
	h1s := s.H1s
	if h1s == nil {
		h1s = []string{}
	}
	return json.Marshal(struct {
		Title           *string  `json:"title"`
		MetaDescription *string  `json:"metaDescription"`
		OgTitle         *string  `json:"ogTitle"`
		OgDescription   *string  `json:"ogDescription"`
		H1s             []string `json:"h1s"`
	}{nullable(s.Title), nullable(s.MetaDescription), nullable(s.OgTitle), nullable(s.OgDescription), h1s})
}
