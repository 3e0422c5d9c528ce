package scan

import (
	"context"

	"github.com/samber/lo"

	"scopehound/notify"
	"scopehound/pkg/monitor"
)

// maxTopicPostIDs bounds the remembered launch IDs per topic.
const maxTopicPostIDs = 200

// scanLaunches runs the launch-feed sub-machine for every configured topic.
func (r *run) scanLaunches(ctx context.Context) {
	settings := r.cfg.Settings
	if settings.ProductHuntToken == "" || len(settings.ProductHuntTopics) == 0 || r.launches == nil {
		return
	}

	for _, topic := range settings.ProductHuntTopics {
		if ctx.Err() != nil {
			return
		}
		logger := r.logger.With("topic", topic.Slug)
		posts := r.launches.Posts(ctx, settings.ProductHuntToken, topic.Slug, settings.PHMinVotes)
		ids := lo.Map(posts, func(p monitor.Launch, _ int) string { return p.ID })

		prev := r.state.ProductHunt[topic.Slug]
		if prev == nil || len(prev.PostIDs) == 0 {
			if len(ids) > 0 {
				r.state.Topic(topic.Slug).PostIDs = ids
				logger.Info("Launch topic seeded", "posts", len(ids))
			}
			continue
		}

		fresh := lo.Filter(posts, func(p monitor.Launch, _ int) bool { return !lo.Contains(prev.PostIDs, p.ID) })
		if len(fresh) > 0 {
			r.emit(notify.Launches(topic, fresh))
			for _, p := range fresh {
				r.record(monitor.HistoryEvent{
					Type:     monitor.EventProductHunt,
					Priority: monitor.PriorityLow,
					Summary:  p.Name + ": " + p.Tagline,
					URL:      p.URL,
					Votes:    p.VotesCount,
					Topic:    topic.Slug,
				})
			}
			logger.Info("New launches detected", "count", len(fresh))
		}

		if len(ids) > 0 {
			merged := lo.Uniq(append(ids, prev.PostIDs...))
			if len(merged) > maxTopicPostIDs {
				merged = merged[:maxTopicPostIDs]
			}
			prev.PostIDs = merged
		}
	}
}
