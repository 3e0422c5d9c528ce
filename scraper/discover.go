package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DiscoverFeed returns the first RSS or Atom feed a page advertises through
// <link rel="alternate">, resolved against pageURL. Empty when none is found.
func DiscoverFeed(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var found string
	doc.Find(`link[rel~="alternate"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
		if typ != "application/rss+xml" && typ != "application/atom+xml" {
			return true
		}
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		found = ref.String()
		return false
	})
	return found
}
