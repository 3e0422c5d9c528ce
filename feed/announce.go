package feed

import (
	"strings"

	"scopehound/pkg/monitor"
)

// DetectAnnouncement returns the category of the first keyword, in configured
// order, that appears in the lower-cased title. Empty when nothing matches.
func DetectAnnouncement(title string, keywords monitor.KeywordMap) string {
	lower := strings.ToLower(title)
	for _, c := range keywords {
		for _, kw := range c.Keywords {
			kw = strings.ToLower(kw)
			if kw != "" && strings.Contains(lower, kw) {
				return c.Category
			}
		}
	}
	return ""
}
