package scraper

import (
	"regexp"
	"strings"
)

const maxTextRunes = 10_000

var (
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	scriptRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleRe   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	spaceRe   = regexp.MustCompile(`\s+`)

	// Attributes whose values change on every request.
	volatileAttrRe = regexp.MustCompile(`(?i)\s(?:nonce|data-reactid|data-turbo-track|data-n-head|data-csrf|data-csrf-token|csrf-token|csrf_token|authenticity_token)\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)

	// Elements that only carry a per-request CSRF token.
	csrfMetaRe  = regexp.MustCompile(`(?i)<meta\b[^>]*\bname\s*=\s*["']?(?:csrf-token|csrf-param|_csrf|csrf_token)["']?[^>]*>`)
	csrfInputRe = regexp.MustCompile(`(?i)<input\b[^>]*\bname\s*=\s*["']?(?:authenticity_token|_csrf|csrf_token|csrfmiddlewaretoken|_token)["']?[^>]*>`)

	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&amp;", "&",
	)
)

// stripNoise removes comments, scripts and styles. Removals can splice new
// markup together, so it runs to a fixpoint.
func stripNoise(html string) string {
	for i := 0; i < 4; i++ {
		next := commentRe.ReplaceAllString(html, "")
		next = scriptRe.ReplaceAllString(next, "")
		next = styleRe.ReplaceAllString(next, "")
		if next == html {
			break
		}
		html = next
	}
	return html
}

// NormalizeForHash returns the canonical form of a page used for fingerprinting.
func NormalizeForHash(html string) string {
	s := stripNoise(html)
	s = csrfMetaRe.ReplaceAllString(s, "")
	s = csrfInputRe.ReplaceAllString(s, "")
	s = volatileAttrRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// HTMLToText returns the visible text of a page, truncated to 10,000 characters.
func HTMLToText(html string) string {
	s := stripNoise(html)
	s = tagRe.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if r := []rune(s); len(r) > maxTextRunes {
		s = strings.TrimSpace(string(r[:maxTextRunes]))
	}
	return s
}
