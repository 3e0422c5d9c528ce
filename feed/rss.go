// Package feed parses blog feeds and flags announcement posts.
package feed

import (
	"regexp"
	"strings"
)

// MaxItems bounds how many items ParseRSS returns.
const MaxItems = 10

// Item is one feed entry.
type Item struct {
	ID    string
	Title string
	Link  string
}

var (
	itemRe  = regexp.MustCompile(`(?is)<item\b[^>]*>(.*?)</item\s*>`)
	entryRe = regexp.MustCompile(`(?is)<entry\b[^>]*>(.*?)</entry\s*>`)
	titleRe = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title\s*>`)
	linkRe  = regexp.MustCompile(`(?is)<link\b[^>]*>(.*?)</link\s*>`)
	guidRe  = regexp.MustCompile(`(?is)<guid\b[^>]*>(.*?)</guid\s*>`)
	idRe    = regexp.MustCompile(`(?is)<id\b[^>]*>(.*?)</id\s*>`)
	hrefRe  = regexp.MustCompile(`(?is)<link\b[^>]*?\bhref\s*=\s*["']([^"']+)["'][^>]*>`)
	cdataRe = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
)

// ParseRSS extracts up to MaxItems entries from an RSS document. Atom <entry>
// blocks are read when the document has no <item>. Malformed input yields
// whatever items could be recovered.
func ParseRSS(xml string) []Item {
	blocks := itemRe.FindAllStringSubmatch(xml, MaxItems)
	atom := false
	if len(blocks) == 0 {
		blocks = entryRe.FindAllStringSubmatch(xml, MaxItems)
		atom = true
	}

	items := make([]Item, 0, len(blocks))
	for _, b := range blocks {
		body := b[1]
		it := Item{Title: field(body, titleRe)}
		if atom {
			it.Link = attr(body, hrefRe)
			it.ID = field(body, idRe)
		} else {
			it.Link = field(body, linkRe)
			it.ID = field(body, guidRe)
		}
		if it.ID == "" {
			it.ID = it.Link
		}
		if it.ID == "" {
			it.ID = it.Title
		}
		if it.ID == "" {
			continue
		}
		items = append(items, it)
	}
	return items
}

// IDs projects items to their identities, in order.
func IDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func field(body string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return unwrapCDATA(m[1])
}

func attr(body string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func unwrapCDATA(s string) string {
	s = cdataRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
