// Package dashboard builds the read model served to the dashboard UI.
package dashboard

import (
	"sort"
	"time"

	"scopehound/pkg/monitor"
)

// PageView is one configured page with its last observation times.
type PageView struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Type        monitor.PageType `json:"type"`
	URL         string           `json:"url"`
	LastChecked *time.Time       `json:"lastChecked"`
	LastChanged *time.Time       `json:"lastChanged"`
}

// CompetitorView is one competitor's current picture.
type CompetitorView struct {
	Name    string                         `json:"name"`
	Website string                         `json:"website"`
	Pricing *monitor.Pricing               `json:"pricing"`
	Seo     map[string]*monitor.SeoSignals `json:"seo"`
	Pages   []PageView                     `json:"pages"`
	BlogRSS string                         `json:"blogRss,omitempty"`
}

// Projection is the cached dashboard document.
type Projection struct {
	GeneratedAt   time.Time              `json:"generatedAt"`
	Competitors   []CompetitorView       `json:"competitors"`
	RecentChanges []monitor.HistoryEvent `json:"recentChanges"`
}

// Build composes the projection from the configured competitors, their
// state and the pruned history. Recent changes are newest first.
func Build(cfg *monitor.Config, state *monitor.State, history []monitor.HistoryEvent, now time.Time) *Projection {
	p := &Projection{
		GeneratedAt:   now,
		Competitors:   make([]CompetitorView, 0, len(cfg.Competitors)),
		RecentChanges: recent(history, monitor.MaxRecentChanges),
	}

	for _, c := range cfg.Competitors {
		cs := state.Competitors[c.Name]
		view := CompetitorView{
			Name:    c.Name,
			Website: c.Website,
			Seo:     map[string]*monitor.SeoSignals{},
			Pages:   make([]PageView, 0, len(c.Pages)),
			BlogRSS: c.BlogRSS,
		}
		if cs != nil {
			view.Pricing = cs.Pricing
			if cs.Seo != nil {
				view.Seo = cs.Seo
			}
			if view.BlogRSS == "" {
				view.BlogRSS = cs.Blog.FeedURL
			}
		}
		for _, page := range c.Pages {
			pv := PageView{ID: page.ID, Label: page.Label, Type: page.Type, URL: page.URL}
			if cs != nil {
				if ps := cs.Pages[page.ID]; ps != nil {
					checked := ps.LastChecked
					pv.LastChecked = &checked
					pv.LastChanged = ps.LastChanged
				}
			}
			view.Pages = append(view.Pages, pv)
		}
		p.Competitors = append(p.Competitors, view)
	}
	return p
}

func recent(history []monitor.HistoryEvent, n int) []monitor.HistoryEvent {
	out := make([]monitor.HistoryEvent, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
