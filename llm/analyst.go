package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"scopehound/diff"
	"scopehound/pkg/monitor"
)

// RedesignRatio is the diff ratio above which a change is reported as a
// redesign without consulting the model.
const RedesignRatio = 0.8

const (
	pricingTokens  = 1000
	analysisTokens = 500
	classifyTokens = 200

	maxPromptText = 6000
)

// Analysis is the validated result of a page-change analysis.
type Analysis struct {
	Summary        string
	Analysis       string
	Priority       monitor.Priority
	Recommendation string
}

// Classification is the validated result of an announcement classification.
type Classification struct {
	Category string
	Priority monitor.Priority
	Summary  string
}

// Analyst runs the scan engine's prompts. A nil runner means no model is
// available and every call reports failure.
type Analyst struct {
	runner Runner
	model  string
	logger *slog.Logger
}

// NewAnalyst creates an analyst. An empty model selects DefaultModel.
func NewAnalyst(runner Runner, model string, logger *slog.Logger) *Analyst {
	if model == "" {
		model = DefaultModel
	}
	return &Analyst{runner: runner, model: model, logger: logger}
}

func (a *Analyst) ask(ctx context.Context, prompt string, maxTokens int, purpose string) (string, bool) {
	if a == nil || a.runner == nil {
		return "", false
	}
	start := time.Now()
	text, err := a.runner.Run(ctx, a.model, Request{
		Messages: []Message{
			{Role: "system", Content: "You are a competitive intelligence analyst. Respond with a single JSON object and nothing else."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		a.logger.Warn("Model call failed", "purpose", purpose, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return "", false
	}
	a.logger.Debug("Model call completed", "purpose", purpose, "duration_ms", time.Since(start).Milliseconds())
	return text, true
}

type pricingPlan struct {
	Name     string     `json:"name"`
	Price    flexString `json:"price"`
	Features []string   `json:"features"`
}

// pricingDoc requires a plans array; a missing key decodes to nil.
type pricingDoc struct {
	Plans *[]pricingPlan `json:"plans"`
	Notes string         `json:"notes"`
}

// ExtractPricing asks the model for the pricing plans in a page's visible
// text. Nil when the model is unavailable or its answer is unusable.
func (a *Analyst) ExtractPricing(ctx context.Context, text string) *monitor.Pricing {
	prompt := fmt.Sprintf(`Extract the pricing plans from this page text.
Return only JSON in the form {"plans":[{"name":"","price":"","features":[""]}],"notes":""}.
If the page contains no pricing, return {"plans":[],"notes":"No pricing found"}.

Page text:
%s`, clip(text, maxPromptText))

	raw, ok := a.ask(ctx, prompt, pricingTokens, "extract_pricing")
	if !ok {
		return nil
	}
	var doc pricingDoc
	if !decodeObject(raw, &doc) || doc.Plans == nil {
		a.logger.Warn("Model returned no usable pricing JSON", "preview", clip(raw, 200))
		return nil
	}

	plans := *doc.Plans
	p := &monitor.Pricing{Plans: make([]monitor.Plan, 0, len(plans)), Notes: doc.Notes}
	for _, plan := range plans {
		name := strings.TrimSpace(plan.Name)
		if name == "" {
			continue
		}
		features := plan.Features
		if features == nil {
			features = []string{}
		}
		p.Plans = append(p.Plans, monitor.Plan{
			Name:     name,
			Price:    strings.TrimSpace(string(plan.Price)),
			Features: features,
		})
	}
	if len(plans) > 0 && len(p.Plans) == 0 {
		a.logger.Warn("Model returned pricing plans without names", "plans", len(plans))
		return nil
	}
	return p
}

type analysisDoc struct {
	Summary        string `json:"summary"`
	Analysis       string `json:"analysis"`
	Priority       string `json:"priority"`
	Recommendation string `json:"recommendation"`
}

// AnalyzePageChange explains a page change. Changes above RedesignRatio are
// reported as a redesign without a model call. Nil when the model is
// unavailable or its answer is unusable.
func (a *Analyst) AnalyzePageChange(ctx context.Context, competitor, pageLabel string, pageType monitor.PageType, d diff.Result) *Analysis {
	if d.ChangeRatio > RedesignRatio {
		return Redesign(competitor, pageLabel, pageType)
	}

	prompt := fmt.Sprintf(`%s changed their %s page (type: %s).

Removed text:
%s

Added text:
%s

Return only JSON: {"summary":"one sentence","analysis":"what this means competitively","priority":"high|medium|low","recommendation":"what we should do"}`,
		competitor, pageLabel, pageType, orNone(d.Before), orNone(d.After))

	raw, ok := a.ask(ctx, prompt, analysisTokens, "analyze_page_change")
	if !ok {
		return nil
	}
	var doc analysisDoc
	if !decodeObject(raw, &doc) {
		a.logger.Warn("Model returned no usable analysis JSON", "preview", clip(raw, 200))
		return nil
	}
	priority, ok := monitor.ParsePriority(doc.Priority)
	if !ok || strings.TrimSpace(doc.Summary) == "" {
		a.logger.Warn("Model analysis failed validation", "priority", doc.Priority)
		return nil
	}
	return &Analysis{
		Summary:        strings.TrimSpace(doc.Summary),
		Analysis:       strings.TrimSpace(doc.Analysis),
		Priority:       priority,
		Recommendation: strings.TrimSpace(doc.Recommendation),
	}
}

// Redesign is the analysis reported for a page whose text mostly changed.
func Redesign(competitor, pageLabel string, pageType monitor.PageType) *Analysis {
	priority := monitor.PriorityMedium
	if pageType == monitor.PagePricing {
		priority = monitor.PriorityHigh
	}
	return &Analysis{
		Summary:        fmt.Sprintf("%s page significantly redesigned", pageLabel),
		Analysis:       fmt.Sprintf("Most of the content on %s's %s page changed since the last scan.", competitor, pageLabel),
		Priority:       priority,
		Recommendation: "Review the page manually.",
	}
}

// DefaultAnalysis is used when the model gives no usable answer.
func DefaultAnalysis(pageLabel string, pageType monitor.PageType) *Analysis {
	priority := monitor.PriorityMedium
	switch pageType {
	case monitor.PagePricing:
		priority = monitor.PriorityHigh
	case monitor.PageBlog, monitor.PageCareers:
		priority = monitor.PriorityLow
	}
	return &Analysis{
		Summary:  fmt.Sprintf("%s page content changed", pageLabel),
		Priority: priority,
	}
}

type classificationDoc struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Summary  string `json:"summary"`
}

// ClassifyAnnouncement rates a blog post that matched an announcement keyword.
// Any failure yields {category, medium, title}.
func (a *Analyst) ClassifyAnnouncement(ctx context.Context, competitor, title, category string) Classification {
	fallback := Classification{Category: category, Priority: monitor.PriorityMedium, Summary: title}

	prompt := fmt.Sprintf(`%s published a blog post titled %q. It looks like a %s announcement.
Return only JSON: {"category":"%s","priority":"high|medium|low","summary":"one sentence on why it matters"}`,
		competitor, title, category, category)

	raw, ok := a.ask(ctx, prompt, classifyTokens, "classify_announcement")
	if !ok {
		return fallback
	}
	var doc classificationDoc
	if !decodeObject(raw, &doc) {
		return fallback
	}
	priority, ok := monitor.ParsePriority(doc.Priority)
	if !ok {
		return fallback
	}
	out := Classification{
		Category: strings.TrimSpace(doc.Category),
		Priority: priority,
		Summary:  strings.TrimSpace(doc.Summary),
	}
	if out.Category == "" {
		out.Category = category
	}
	if out.Summary == "" {
		out.Summary = title
	}
	return out
}

func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
