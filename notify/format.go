// Package notify formats scan alerts and delivers the digest.
package notify

import (
	"fmt"
	"strings"
	"time"

	"scopehound/feed"
	"scopehound/llm"
	"scopehound/pkg/monitor"
	"scopehound/scraper"
)

var priorityEmoji = map[monitor.Priority]string{
	monitor.PriorityHigh:   "🔴",
	monitor.PriorityMedium: "🟡",
	monitor.PriorityLow:    "🟢",
}

var categoryEmoji = map[string]string{
	"funding":     "💰",
	"partnership": "🤝",
	"acquisition": "🏢",
	"events":      "📅",
	"hiring":      "👥",
	"product":     "🚀",
}

var seoFieldLabels = map[string]string{
	"title":           "Title",
	"metaDescription": "Meta Description",
	"ogTitle":         "OG Title",
	"ogDescription":   "OG Description",
	"h1s":             "H1 Tags",
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escape makes user-controlled text safe for Slack mrkdwn.
func escape(s string) string {
	return slackEscaper.Replace(s)
}

func link(url, text string) string {
	if url == "" {
		return escape(text)
	}
	return "<" + url + "|" + escape(text) + ">"
}

func emojiFor(p monitor.Priority) string {
	if e, ok := priorityEmoji[p]; ok {
		return e
	}
	return "⚪"
}

func categoryIcon(category string) string {
	if e, ok := categoryEmoji[category]; ok {
		return e
	}
	return "📢"
}

func capitalize(s string) string {
	if s == "" {
		return "Company"
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func quote(s string) string {
	if s == "" {
		return "(none)"
	}
	return `"` + escape(s) + `"`
}

// SeoAlert lists the SEO fields that changed on a page.
func SeoAlert(competitor, pageLabel, pageURL string, changes []scraper.SeoChange) monitor.Alert {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *SEO change: %s*\n", escape(competitor))
	fmt.Fprintf(&b, "Page: %s\n", link(pageURL, pageLabel))
	for _, c := range changes {
		label := seoFieldLabels[c.Field]
		if label == "" {
			label = c.Field
		}
		fmt.Fprintf(&b, "• *%s*: %s → %s\n", label, quote(c.Old), quote(c.New))
	}
	return monitor.Alert{
		Kind:     monitor.EventSeoChange,
		Priority: monitor.PriorityLow,
		Text:     strings.TrimRight(b.String(), "\n"),
	}
}

// PageChange reports an analyzed page change.
func PageChange(competitor string, page monitor.Page, a *llm.Analysis, pricingChanges []string) monitor.Alert {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s: %s changed*\n", emojiFor(a.Priority), escape(competitor), escape(page.Label))
	b.WriteString(escape(a.Summary))
	b.WriteByte('\n')
	if len(pricingChanges) > 0 {
		b.WriteString("*Pricing changes:*\n")
		for _, c := range pricingChanges {
			fmt.Fprintf(&b, "• %s\n", escape(c))
		}
	}
	if a.Analysis != "" {
		fmt.Fprintf(&b, "*Analysis:* %s\n", escape(a.Analysis))
	}
	if a.Recommendation != "" {
		fmt.Fprintf(&b, "*Recommendation:* %s\n", escape(a.Recommendation))
	}
	fmt.Fprintf(&b, "%s", link(page.URL, page.URL))
	return monitor.Alert{
		Kind:     monitor.EventPageChange,
		Priority: a.Priority,
		Text:     strings.TrimRight(b.String(), "\n"),
	}
}

// Announcement reports a blog post classified as an announcement.
func Announcement(competitor string, item feed.Item, c llm.Classification) monitor.Alert {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s *%s announcement: %s*\n", emojiFor(c.Priority), categoryIcon(c.Category), escape(capitalize(c.Category)), escape(competitor))
	fmt.Fprintf(&b, "%s\n", link(item.Link, item.Title))
	if c.Summary != "" && c.Summary != item.Title {
		b.WriteString(escape(c.Summary))
	}
	return monitor.Alert{
		Kind:     monitor.EventAnnouncement,
		Priority: c.Priority,
		Text:     strings.TrimRight(b.String(), "\n"),
	}
}

// BlogBatch lists a competitor's new regular blog posts.
func BlogBatch(competitor string, items []feed.Item) monitor.Alert {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 *New blog posts: %s*\n", escape(competitor))
	for _, it := range items {
		fmt.Fprintf(&b, "• %s\n", link(it.Link, it.Title))
	}
	return monitor.Alert{
		Kind:     monitor.EventBlogPost,
		Priority: monitor.PriorityLow,
		Text:     strings.TrimRight(b.String(), "\n"),
	}
}

// Launches lists new launches in a topic.
func Launches(topic monitor.Topic, posts []monitor.Launch) monitor.Alert {
	var b strings.Builder
	name := topic.Name
	if name == "" {
		name = topic.Slug
	}
	fmt.Fprintf(&b, "🚀 *New launches in %s*\n", escape(name))
	for _, p := range posts {
		fmt.Fprintf(&b, "• %s: %s (%d votes)\n", link(p.URL, p.Name), escape(p.Tagline), p.VotesCount)
	}
	return monitor.Alert{
		Kind:     monitor.EventProductHunt,
		Priority: monitor.PriorityLow,
		Text:     strings.TrimRight(b.String(), "\n"),
	}
}

// DigestHeader is the first message of every digest.
func DigestHeader(now time.Time, high, medium, low int) string {
	return fmt.Sprintf("📊 *Scopehound digest: %s*\n%s %d high · %s %d medium · %s %d low",
		now.UTC().Format("Monday, January 2, 2006"),
		priorityEmoji[monitor.PriorityHigh], high,
		priorityEmoji[monitor.PriorityMedium], medium,
		priorityEmoji[monitor.PriorityLow], low)
}
