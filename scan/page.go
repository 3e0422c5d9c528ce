package scan

import (
	"context"
	"fmt"
	"strings"

	"scopehound/diff"
	"scopehound/llm"
	"scopehound/notify"
	"scopehound/pkg/monitor"
	"scopehound/scraper"
)

// checkPage runs the per-page state machine. It returns the fetched body
// when the fetch succeeded.
func (r *run) checkPage(ctx context.Context, c monitor.Competitor, cs *monitor.CompetitorState, page monitor.Page) (string, bool) {
	logger := r.logger.With("competitor", c.Name, "page_id", page.ID)

	body, ok := r.fetcher.Fetch(ctx, page.URL)
	if !ok {
		logger.Info("Page skipped this scan", "url", page.URL)
		return "", false
	}

	newHash := scraper.Hash(body)
	newText := scraper.HTMLToText(body)
	newSeo := scraper.ExtractSeoSignals(body)

	ps := cs.Pages[page.ID]
	if !ps.Indexed() {
		if page.Type == monitor.PagePricing {
			if p := r.analyst.ExtractPricing(ctx, newText); p != nil {
				cs.Pricing = p
			}
		}
		cs.Pages[page.ID] = &monitor.PageState{
			Hash:         newHash,
			TextSnapshot: newText,
			LastChecked:  r.now,
		}
		cs.Seo[page.ID] = newSeo
		logger.Info("Page indexed", "hash", newHash)
		return body, true
	}

	oldSeo := cs.Seo[page.ID]
	var seoChanges []scraper.SeoChange
	if oldSeo != nil {
		seoChanges = scraper.CompareSeoSignals(oldSeo, newSeo)
	}

	if newHash == ps.Hash {
		ps.LastChecked = r.now
		if seoChanges != nil {
			r.emitSeo(c, page, seoChanges)
		}
		cs.Seo[page.ID] = newSeo
		logger.Debug("Page unchanged", "seo_changes", len(seoChanges))
		return body, true
	}

	d := diff.Compute(ps.TextSnapshot, newText)

	var pricingChanges []string
	if page.Type == monitor.PagePricing {
		if p := r.analyst.ExtractPricing(ctx, newText); p != nil {
			pricingChanges = ComparePricing(cs.Pricing, p)
			cs.Pricing = p
		}
	}

	analysis := r.analyst.AnalyzePageChange(ctx, c.Name, page.Label, page.Type, d)
	if analysis == nil {
		analysis = llm.DefaultAnalysis(page.Label, page.Type)
	}

	r.emit(notify.PageChange(c.Name, page, analysis, pricingChanges))
	r.record(monitor.HistoryEvent{
		Competitor:     c.Name,
		PageID:         page.ID,
		PageLabel:      page.Label,
		Type:           monitor.EventPageChange,
		Priority:       analysis.Priority,
		Summary:        analysis.Summary,
		Analysis:       analysis.Analysis,
		Recommendation: analysis.Recommendation,
		URL:            page.URL,
		Diff: &monitor.DiffExcerpt{
			Before:      d.Before,
			After:       d.After,
			ChangeRatio: d.ChangeRatio,
		},
	})
	if seoChanges != nil {
		r.emitSeo(c, page, seoChanges)
	}

	now := r.now
	ps.Hash = newHash
	ps.TextSnapshot = newText
	ps.LastChecked = now
	ps.LastChanged = &now
	cs.Seo[page.ID] = newSeo

	logger.Info("Page changed",
		"priority", analysis.Priority,
		"change_ratio", d.ChangeRatio,
		"pricing_changes", len(pricingChanges))
	return body, true
}

func (r *run) emitSeo(c monitor.Competitor, page monitor.Page, changes []scraper.SeoChange) {
	fields := make([]string, len(changes))
	for i, ch := range changes {
		fields[i] = ch.Field
	}
	r.emit(notify.SeoAlert(c.Name, page.Label, page.URL, changes))
	r.record(monitor.HistoryEvent{
		Competitor: c.Name,
		PageID:     page.ID,
		PageLabel:  page.Label,
		Type:       monitor.EventSeoChange,
		Priority:   monitor.PriorityLow,
		Summary:    fmt.Sprintf("SEO changed on %s: %s", page.Label, strings.Join(fields, ", ")),
		URL:        page.URL,
	})
}
