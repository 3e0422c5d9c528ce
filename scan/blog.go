package scan

import (
	"context"

	"github.com/samber/lo"

	"scopehound/feed"
	"scopehound/notify"
	"scopehound/pkg/monitor"
	"scopehound/scraper"
)

// feedURL resolves the competitor's feed: the configured one, a previously
// discovered one, or one advertised by a blog page fetched this scan.
func (r *run) feedURL(c monitor.Competitor, cs *monitor.CompetitorState, bodies map[string]string) string {
	if c.BlogRSS != "" {
		return c.BlogRSS
	}
	if cs.Blog.FeedURL != "" {
		return cs.Blog.FeedURL
	}
	for _, page := range c.Pages {
		if page.Type != monitor.PageBlog {
			continue
		}
		body, ok := bodies[page.ID]
		if !ok {
			continue
		}
		if u := scraper.DiscoverFeed(body, page.URL); u != "" {
			r.logger.Info("Discovered blog feed", "competitor", c.Name, "page_id", page.ID, "feed_url", u)
			cs.Blog.FeedURL = u
			return u
		}
	}
	return ""
}

// checkBlog runs the blog feed sub-machine for one competitor.
func (r *run) checkBlog(ctx context.Context, c monitor.Competitor, cs *monitor.CompetitorState, bodies map[string]string) {
	url := r.feedURL(c, cs, bodies)
	if url == "" {
		return
	}
	logger := r.logger.With("competitor", c.Name, "feed_url", url)

	body, ok := r.fetcher.Fetch(ctx, url)
	if !ok {
		logger.Info("Feed skipped this scan")
		return
	}
	items := feed.ParseRSS(body)
	if len(items) == 0 {
		logger.Warn("Feed had no parseable items")
		return
	}

	if len(cs.Blog.PostIDs) == 0 {
		cs.Blog.PostIDs = feed.IDs(items)
		logger.Info("Feed seeded", "items", len(items))
		return
	}

	seen := lo.SliceToMap(cs.Blog.PostIDs, func(id string) (string, struct{}) { return id, struct{}{} })
	keywords := r.cfg.Settings.Keywords()

	var batch []feed.Item
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		category := feed.DetectAnnouncement(it.Title, keywords)
		if category == "" {
			batch = append(batch, it)
			r.record(monitor.HistoryEvent{
				Competitor: c.Name,
				Type:       monitor.EventBlogPost,
				Priority:   monitor.PriorityLow,
				Summary:    it.Title,
				URL:        it.Link,
			})
			continue
		}

		cls := r.analyst.ClassifyAnnouncement(ctx, c.Name, it.Title, category)
		r.emit(notify.Announcement(c.Name, it, cls))
		r.record(monitor.HistoryEvent{
			Competitor: c.Name,
			Type:       monitor.EventAnnouncement,
			Priority:   cls.Priority,
			Summary:    cls.Summary,
			Category:   cls.Category,
			URL:        it.Link,
		})
		logger.Info("Announcement detected", "category", cls.Category, "priority", cls.Priority, "title", it.Title)
	}
	if len(batch) > 0 {
		r.emit(notify.BlogBatch(c.Name, batch))
	}

	cs.Blog.PostIDs = feed.IDs(items)
}
