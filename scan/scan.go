// Package scan runs one change-detection pass over a tenant's competitors and
// turns what changed into alerts, history and a refreshed dashboard.
package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"scopehound/dashboard"
	"scopehound/diff"
	"scopehound/llm"
	"scopehound/pkg/monitor"
)

// Fetcher retrieves a page or feed body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, bool)
}

// Analyst runs the model-backed analyses. Failures are reported as nil
// results, or as the default classification.
type Analyst interface {
	ExtractPricing(ctx context.Context, text string) *monitor.Pricing
	AnalyzePageChange(ctx context.Context, competitor, pageLabel string, pageType monitor.PageType, d diff.Result) *llm.Analysis
	ClassifyAnnouncement(ctx context.Context, competitor, title, category string) llm.Classification
}

// Launches queries the product-launch feed.
type Launches interface {
	Posts(ctx context.Context, token, topic string, minVotes int) []monitor.Launch
}

// Store persists per-tenant documents.
type Store interface {
	LoadConfig(ctx context.Context, tenant string) (*monitor.Config, error)
	LoadState(ctx context.Context, tenant string, cfg *monitor.Config, now time.Time) (*monitor.State, error)
	SaveState(ctx context.Context, tenant string, state *monitor.State) error
	LoadHistory(ctx context.Context, tenant string) ([]monitor.HistoryEvent, error)
	SaveHistory(ctx context.Context, tenant string, events []monitor.HistoryEvent) error
	SaveDashboard(ctx context.Context, tenant string, projection any) error
	HistoryDays(ctx context.Context, tenant string) int
	ListTenants(ctx context.Context) ([]string, error)
}

// Dispatcher delivers alerts to a tenant's chat webhook.
type Dispatcher interface {
	Dispatch(ctx context.Context, webhookURL string, alerts []monitor.Alert, now time.Time) int
}

// Result summarises one scan.
type Result struct {
	ScanID    string
	Tenant    string
	Alerts    []monitor.Alert
	Events    []monitor.HistoryEvent
	Delivered int // Messages accepted by the delivery channel, including the header
}

// AlertsSent is the number of alerts the scan produced.
func (r *Result) AlertsSent() int {
	if r == nil {
		return 0
	}
	return len(r.Alerts)
}

// Scanner runs scans. It holds no per-scan state and is safe for concurrent
// use across tenants.
type Scanner struct {
	fetcher    Fetcher
	analyst    Analyst
	launches   Launches
	store      Store
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a scanner.
func New(fetcher Fetcher, analyst Analyst, launches Launches, store Store, dispatcher Dispatcher, logger *slog.Logger) *Scanner {
	return &Scanner{
		fetcher:    fetcher,
		analyst:    analyst,
		launches:   launches,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// run is the mutable context of one scan.
type run struct {
	*Scanner
	logger *slog.Logger
	cfg    *monitor.Config
	state  *monitor.State
	now    time.Time
	alerts []monitor.Alert
	events []monitor.HistoryEvent
}

func (r *run) emit(a monitor.Alert) {
	r.alerts = append(r.alerts, a)
}

func (r *run) record(e monitor.HistoryEvent) {
	e.Date = r.now
	r.events = append(r.events, e)
}

// Run scans one tenant. A nil override loads the tenant's configuration from
// the store. Failures of external dependencies are logged and never returned;
// the only error is context cancellation, in which case nothing is written.
func (s *Scanner) Run(ctx context.Context, override *monitor.Config, tenant string) (*Result, error) {
	scanID := uuid.NewString()
	logger := s.logger.With("scan_id", scanID, "tenant", tenant)
	result := &Result{ScanID: scanID, Tenant: tenant}
	start := time.Now()
	now := s.now().UTC()

	cfg := override
	if cfg == nil {
		loaded, err := s.store.LoadConfig(ctx, tenant)
		if err != nil {
			logger.Error("Failed to load config, skipping scan", "error", err)
			return result, nil
		}
		cfg = loaded
	}
	if len(cfg.Competitors) == 0 {
		logger.Info("No competitors configured, nothing to scan")
		return result, nil
	}

	state, err := s.store.LoadState(ctx, tenant, cfg, now)
	if err != nil {
		logger.Error("Failed to load state, skipping scan", "error", err)
		return result, nil
	}

	logger.Info("Scan starting", "competitors", len(cfg.Competitors))
	r := &run{Scanner: s, logger: logger, cfg: cfg, state: state, now: now}

	for _, c := range cfg.Competitors {
		if err := ctx.Err(); err != nil {
			logger.Info("Context cancelled, discarding scan", "error", err)
			return nil, err
		}
		r.scanCompetitor(ctx, c)
	}
	r.scanLaunches(ctx)

	if err := ctx.Err(); err != nil {
		logger.Info("Context cancelled, discarding scan", "error", err)
		return nil, err
	}

	result.Alerts = r.alerts
	result.Events = r.events
	if len(r.alerts) > 0 {
		result.Delivered = s.dispatcher.Dispatch(ctx, cfg.Settings.SlackWebhookURL, r.alerts, now)
	}

	r.persist(ctx, tenant)

	logger.Info("Scan completed",
		"alerts", len(r.alerts),
		"events", len(r.events),
		"delivered", result.Delivered,
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (r *run) scanCompetitor(ctx context.Context, c monitor.Competitor) {
	cs := r.state.Competitor(c.Name)
	bodies := make(map[string]string, len(c.Pages))
	for _, page := range c.Pages {
		if body, ok := r.checkPage(ctx, c, cs, page); ok {
			bodies[page.ID] = body
		}
	}
	r.checkBlog(ctx, c, cs, bodies)
}

// persist writes state, pruned history and the dashboard, in that order.
// Write failures are logged; the scan still counts as completed.
func (r *run) persist(ctx context.Context, tenant string) {
	if err := r.store.SaveState(ctx, tenant, r.state); err != nil {
		r.logger.Error("Failed to save state", "error", err)
	}

	days := r.store.HistoryDays(ctx, tenant)
	history, err := r.store.LoadHistory(ctx, tenant)
	if err != nil {
		// Writing only this scan's events would drop the stored history.
		r.logger.Error("Failed to load history, not saving it this scan", "error", err)
		history = Prune(r.events, days, r.now)
	} else {
		history = Prune(append(history, r.events...), days, r.now)
		if err := r.store.SaveHistory(ctx, tenant, history); err != nil {
			r.logger.Error("Failed to save history", "error", err)
		}
	}

	projection := dashboard.Build(r.cfg, r.state, history, r.now)
	if err := r.store.SaveDashboard(ctx, tenant, projection); err != nil {
		r.logger.Error("Failed to save dashboard", "error", err)
	}
}
