package scan

import (
	"sort"
	"time"

	"scopehound/pkg/monitor"
)

// Prune drops events older than days before now and keeps the
// monitor.MaxHistoryEvents most recent, oldest first. Negative days keep
// everything the cap allows.
func Prune(events []monitor.HistoryEvent, days int, now time.Time) []monitor.HistoryEvent {
	out := make([]monitor.HistoryEvent, 0, len(events))
	if days < 0 {
		out = append(out, events...)
	} else {
		cutoff := now.AddDate(0, 0, -days)
		for _, e := range events {
			if !e.Date.Before(cutoff) {
				out = append(out, e)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if len(out) > monitor.MaxHistoryEvents {
		out = out[len(out)-monitor.MaxHistoryEvents:]
	}
	return out
}
