package scan

import (
	"fmt"
	"strings"

	"scopehound/pkg/monitor"
)

// ComparePricing lists removed plans, price changes and new plans, matching
// plans by case-insensitive name. Nil when nothing differs or when there is
// no previous pricing to compare against.
func ComparePricing(old, cur *monitor.Pricing) []string {
	if old == nil || cur == nil {
		return nil
	}

	curByName := make(map[string]monitor.Plan, len(cur.Plans))
	for _, p := range cur.Plans {
		curByName[strings.ToLower(p.Name)] = p
	}
	oldByName := make(map[string]monitor.Plan, len(old.Plans))

	var changes []string
	for _, p := range old.Plans {
		key := strings.ToLower(p.Name)
		oldByName[key] = p
		now, ok := curByName[key]
		switch {
		case !ok:
			changes = append(changes, "Removed plan: "+p.Name)
		case now.Price != p.Price:
			changes = append(changes, fmt.Sprintf("%s: %s → %s", now.Name, p.Price, now.Price))
		}
	}
	for _, p := range cur.Plans {
		if _, ok := oldByName[strings.ToLower(p.Name)]; !ok {
			changes = append(changes, fmt.Sprintf("New plan: %s (%s)", p.Name, p.Price))
		}
	}
	return changes
}
