package scraper

import (
	"regexp"
	"strings"

	"scopehound/pkg/monitor"
)

var (
	titleRe = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title\s*>`)
	h1Re    = regexp.MustCompile(`(?is)<h1\b[^>]*>(.*?)</h1\s*>`)

	metaDescriptionRe = metaPatterns("description")
	ogTitleRe         = metaPatterns("og:title")
	ogDescriptionRe   = metaPatterns("og:description")
)

// metaPatterns matches <meta> content for key with the attributes in either order.
func metaPatterns(key string) []*regexp.Regexp {
	k := regexp.QuoteMeta(key)
	name := `\b(?:name|property)\s*=\s*["']` + k + `["']`
	content := `\bcontent\s*=\s*(?:"([^"]*)"|'([^']*)')`
	return []*regexp.Regexp{
		regexp.MustCompile(`(?is)<meta\b[^>]*?` + name + `[^>]*?` + content),
		regexp.MustCompile(`(?is)<meta\b[^>]*?` + content + `[^>]*?` + name),
	}
}

func firstMatch(html string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		for _, g := range m[1:] {
			if g != "" {
				return strings.TrimSpace(g)
			}
		}
		return ""
	}
	return ""
}

// ExtractSeoSignals pulls title, meta description, OG tags and every H1 out of raw HTML.
// Missing fields are empty.
func ExtractSeoSignals(html string) *monitor.SeoSignals {
	s := &monitor.SeoSignals{
		Title:           firstMatch(html, titleRe),
		MetaDescription: firstMatch(html, metaDescriptionRe...),
		OgTitle:         firstMatch(html, ogTitleRe...),
		OgDescription:   firstMatch(html, ogDescriptionRe...),
		H1s:             []string{},
	}
	for _, m := range h1Re.FindAllStringSubmatch(html, -1) {
		s.H1s = append(s.H1s, strings.TrimSpace(tagRe.ReplaceAllString(m[1], "")))
	}
	return s
}

// SeoChange is one differing SEO field.
type SeoChange struct {
	Field string
	Old   string
	New   string
}

// CompareSeoSignals lists the fields that differ between two observations,
// or nil when none do. H1s are compared as their comma-joined string.
func CompareSeoSignals(old, cur *monitor.SeoSignals) []SeoChange {
	if old == nil {
		old = &monitor.SeoSignals{}
	}
	if cur == nil {
		cur = &monitor.SeoSignals{}
	}

	pairs := []SeoChange{
		{Field: "title", Old: old.Title, New: cur.Title},
		{Field: "metaDescription", Old: old.MetaDescription, New: cur.MetaDescription},
		{Field: "ogTitle", Old: old.OgTitle, New: cur.OgTitle},
		{Field: "ogDescription", Old: old.OgDescription, New: cur.OgDescription},
		{Field: "h1s", Old: strings.Join(old.H1s, ", "), New: strings.Join(cur.H1s, ", ")},
	}

	var changes []SeoChange
	for _, p := range pairs {
		if p.Old != p.New {
			changes = append(changes, p)
		}
	}
	return changes
}
