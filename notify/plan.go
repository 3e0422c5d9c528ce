package notify

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"scopehound/pkg/monitor"
)

// LowBatchSeparator joins low-priority alerts into one message.
const LowBatchSeparator = "\n\n―――\n\n"

// Plan orders alerts for delivery: the digest header, each high alert, each
// medium alert, then every low alert collapsed into one message. Insertion
// order is kept within a tier. No alerts means no messages.
func Plan(alerts []monitor.Alert, now time.Time) []string {
	if len(alerts) == 0 {
		return nil
	}

	byPriority := func(p monitor.Priority) []monitor.Alert {
		return lo.Filter(alerts, func(a monitor.Alert, _ int) bool { return a.Priority == p })
	}
	high := byPriority(monitor.PriorityHigh)
	medium := byPriority(monitor.PriorityMedium)
	// Anything without a recognised priority is delivered with the low batch.
	low := lo.Filter(alerts, func(a monitor.Alert, _ int) bool {
		return a.Priority != monitor.PriorityHigh && a.Priority != monitor.PriorityMedium
	})

	text := func(a monitor.Alert, _ int) string { return a.Text }

	messages := make([]string, 0, 2+len(high)+len(medium))
	messages = append(messages, DigestHeader(now, len(high), len(medium), len(low)))
	messages = append(messages, lo.Map(high, text)...)
	messages = append(messages, lo.Map(medium, text)...)
	if len(low) > 0 {
		messages = append(messages, strings.Join(lo.Map(low, text), LowBatchSeparator))
	}
	return messages
}
