package scan

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"scopehound/llm"
	"scopehound/notify"
	"scopehound/pkg/monitor"
	"scopehound/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher serves canned bodies; unknown URLs fail.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: make(map[string]string)}
}

func (f *fakeFetcher) set(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[url] = body
}

func (f *fakeFetcher) remove(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bodies, url)
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bodies[url]
	return b, ok
}

// recordingDispatcher keeps every dispatched batch.
type recordingDispatcher struct {
	mu      sync.Mutex
	batches [][]monitor.Alert
	plans   [][]string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ string, alerts []monitor.Alert, now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, alerts)
	plan := notify.Plan(alerts, now)
	d.plans = append(d.plans, plan)
	return len(plan)
}

// countingKV counts writes on top of an in-memory store.
type countingKV struct {
	*storage.Memory
	mu   sync.Mutex
	puts int
}

func (c *countingKV) Put(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
	return c.Memory.Put(ctx, key, value)
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	fetcher    *fakeFetcher
	kv         *countingKV
	store      *storage.Store
	dispatcher *recordingDispatcher
	clock      *clock
	scanner    *Scanner
}

func newHarness(analyst Analyst, launches Launches) *harness {
	h := &harness{
		fetcher:    newFakeFetcher(),
		kv:         &countingKV{Memory: storage.NewMemory()},
		dispatcher: &recordingDispatcher{},
		clock:      &clock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)},
	}
	h.store = storage.NewStore(h.kv, discardLogger())
	if analyst == nil {
		analyst = llm.NewAnalyst(nil, "", discardLogger())
	}
	h.scanner = New(h.fetcher, analyst, launches, h.store, h.dispatcher, discardLogger()).WithClock(h.clock.now)
	return h
}

func (h *harness) run(t *testing.T, cfg *monitor.Config) *Result {
	t.Helper()
	res, err := h.scanner.Run(context.Background(), cfg, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

func (h *harness) state(t *testing.T, cfg *monitor.Config) *monitor.State {
	t.Helper()
	s, err := h.store.LoadState(context.Background(), "", cfg, h.clock.now())
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	return s
}

func exConfig() *monitor.Config {
	return &monitor.Config{Competitors: []monitor.Competitor{{
		Name:    "Ex",
		Website: "https://ex.test",
		Pages:   []monitor.Page{{ID: "home", URL: "https://ex.test/", Label: "Home", Type: monitor.PageGeneral}},
	}}}
}

const s1Body = `<html><head><title>Home</title></head><body><h1>Hi</h1></body></html>`

func kinds(alerts []monitor.Alert) []monitor.EventType {
	out := make([]monitor.EventType, len(alerts))
	for i, a := range alerts {
		out[i] = a.Kind
	}
	return out
}

func TestFirstRunIndexing(t *testing.T) {
	h := newHarness(nil, nil)
	cfg := exConfig()
	h.fetcher.set("https://ex.test/", s1Body)

	res := h.run(t, cfg)
	if len(res.Alerts) != 0 {
		t.Fatalf("Expected no alerts on first run, got %v", kinds(res.Alerts))
	}
	if len(h.dispatcher.batches) != 0 {
		t.Error("Nothing should be dispatched without alerts")
	}

	st := h.state(t, cfg)
	page := st.Competitors["Ex"].Pages["home"]
	if !page.Indexed() {
		t.Fatal("Expected page hash to be set")
	}
	if page.LastChanged != nil {
		t.Errorf("lastChanged = %v, want nil", page.LastChanged)
	}
	seo := st.Competitors["Ex"].Seo["home"]
	if seo.Title != "Home" || len(seo.H1s) != 1 || seo.H1s[0] != "Hi" {
		t.Errorf("Unexpected SEO baseline %+v", seo)
	}
	if st.Version != monitor.StateVersion {
		t.Errorf("Version = %d", st.Version)
	}
}

func TestUnchangedSecondScan(t *testing.T) {
	h := newHarness(nil, nil)
	cfg := exConfig()
	h.fetcher.set("https://ex.test/", s1Body)
	h.run(t, cfg)

	before := h.state(t, cfg).Competitors["Ex"]
	beforePage, _ := json.Marshal(struct {
		Hash, Text string
		Seo        *monitor.SeoSignals
	}{before.Pages["home"].Hash, before.Pages["home"].TextSnapshot, before.Seo["home"]})

	h.clock.advance(time.Hour)
	res := h.run(t, cfg)
	if len(res.Alerts) != 0 {
		t.Fatalf("Expected no alerts, got %v", kinds(res.Alerts))
	}

	after := h.state(t, cfg).Competitors["Ex"]
	afterPage, _ := json.Marshal(struct {
		Hash, Text string
		Seo        *monitor.SeoSignals
	}{after.Pages["home"].Hash, after.Pages["home"].TextSnapshot, after.Seo["home"]})
	if string(beforePage) != string(afterPage) {
		t.Errorf("Page state changed:\n before %s\n after  %s", beforePage, afterPage)
	}
	if after.Pages["home"].LastChanged != nil {
		t.Error("lastChanged should still be nil")
	}
	if !after.Pages["home"].LastChecked.Equal(h.clock.now()) {
		t.Errorf("lastChecked = %v, want %v", after.Pages["home"].LastChecked, h.clock.now())
	}
}

func TestSeoOnlyChange(t *testing.T) {
	h := newHarness(nil, nil)
	cfg := exConfig()
	// The title sits in a script block, so the fingerprint ignores it but the
	// SEO extractor still sees it.
	h.fetcher.set("https://ex.test/", `<html><head><script><title>Home</title></script></head><body><h1>Hi</h1></body></html>`)
	h.run(t, cfg)

	h.fetcher.set("https://ex.test/", `<html><head><script><title>Home v2</title></script></head><body><h1>Hi</h1></body></html>`)
	res := h.run(t, cfg)

	if len(res.Alerts) != 1 || res.Alerts[0].Kind != monitor.EventSeoChange {
		t.Fatalf("Expected one seo_change alert, got %v", kinds(res.Alerts))
	}
	a := res.Alerts[0]
	if a.Priority != monitor.PriorityLow {
		t.Errorf("priority = %s, want low", a.Priority)
	}
	if !strings.Contains(a.Text, `"Home" → "Home v2"`) {
		t.Errorf("Alert does not list the title change:\n%s", a.Text)
	}
	if got := h.state(t, cfg).Competitors["Ex"].Seo["home"].Title; got != "Home v2" {
		t.Errorf("Stored title = %q, want Home v2", got)
	}
}

func TestPageChangeUsesDefaultAnalysisWithoutModel(t *testing.T) {
	h := newHarness(nil, nil)
	cfg := exConfig()
	h.fetcher.set("https://ex.test/", `<html><head><title>Home</title></head><body><h1>Hi</h1><p>We build developer tools for teams.</p></body></html>`)
	h.run(t, cfg)

	h.clock.advance(time.Hour)
	h.fetcher.set("https://ex.test/", `<html><head><title>Home</title></head><body><h1>Hi</h1><p>We build developer tools for teams. Now with an AI assistant built in.</p></body></html>`)
	res := h.run(t, cfg)

	if len(res.Alerts) != 1 || res.Alerts[0].Kind != monitor.EventPageChange {
		t.Fatalf("Expected one page_change alert, got %v", kinds(res.Alerts))
	}
	if res.Alerts[0].Priority != monitor.PriorityMedium {
		t.Errorf("priority = %s, want medium", res.Alerts[0].Priority)
	}

	page := h.state(t, cfg).Competitors["Ex"].Pages["home"]
	if page.LastChanged == nil || !page.LastChanged.Equal(h.clock.now()) {
		t.Errorf("lastChanged = %v, want %v", page.LastChanged, h.clock.now())
	}
	if page.LastChanged.After(page.LastChecked) {
		t.Error("lastChanged must not be after lastChecked")
	}

	history, err := h.store.LoadHistory(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Type != monitor.EventPageChange || history[0].Diff == nil {
		t.Fatalf("Unexpected history %+v", history)
	}
	if !strings.Contains(history[0].Diff.After, "AI assistant") {
		t.Errorf("Diff excerpt = %q", history[0].Diff.After)
	}
}

// scriptedRunner answers pricing prompts from a queue and analysis prompts
// with a fixed response.
type scriptedRunner struct {
	mu       sync.Mutex
	pricing  []string
	analysis string
	calls    int
}

func (s *scriptedRunner) Run(_ context.Context, _ string, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if strings.Contains(req.Messages[len(req.Messages)-1].Content, "Extract the pricing plans") {
		out := s.pricing[0]
		if len(s.pricing) > 1 {
			s.pricing = s.pricing[1:]
		}
		return out, nil
	}
	return s.analysis, nil
}

func TestPricingChange(t *testing.T) {
	runner := &scriptedRunner{
		pricing: []string{
			`{"plans":[{"name":"Pro","price":"$19","features":[]}],"notes":""}`,
			`Sure: {"plans":[{"name":"Pro","price":"$29","features":[]}],"notes":""}`,
		},
		analysis: `{"summary":"Pro price increased","analysis":"Moving upmarket","priority":"high","recommendation":"Hold"}`,
	}
	h := newHarness(llm.NewAnalyst(runner, "", discardLogger()), nil)
	cfg := &monitor.Config{Competitors: []monitor.Competitor{{
		Name:  "Acme",
		Pages: []monitor.Page{{ID: "pricing", URL: "https://acme.test/pricing", Label: "Pricing", Type: monitor.PagePricing}},
	}}}

	h.fetcher.set("https://acme.test/pricing", `<html><body><h1>Pricing</h1><p>Pro $19</p></body></html>`)
	if res := h.run(t, cfg); len(res.Alerts) != 0 {
		t.Fatalf("Expected silent first run, got %v", kinds(res.Alerts))
	}
	if p := h.state(t, cfg).Competitors["Acme"].Pricing; p == nil || p.Plans[0].Price != "$19" {
		t.Fatalf("Pricing baseline = %+v", p)
	}

	h.fetcher.set("https://acme.test/pricing", `<html><body><h1>Pricing</h1><p>Pro $29</p></body></html>`)
	res := h.run(t, cfg)

	if len(res.Alerts) != 1 || res.Alerts[0].Kind != monitor.EventPageChange {
		t.Fatalf("Expected exactly one page_change alert, got %v", kinds(res.Alerts))
	}
	a := res.Alerts[0]
	if a.Priority != monitor.PriorityHigh {
		t.Errorf("priority = %s, want high", a.Priority)
	}
	if !strings.Contains(a.Text, "Pro: $19 → $29") {
		t.Errorf("Alert missing price change:\n%s", a.Text)
	}
	if p := h.state(t, cfg).Competitors["Acme"].Pricing; p.Plans[0].Price != "$29" {
		t.Errorf("Stored pricing = %+v", p)
	}
}

func TestFetchFailureLeavesStateUntouched(t *testing.T) {
	h := newHarness(nil, nil)
	cfg := exConfig()
	h.fetcher.set("https://ex.test/", s1Body)
	h.run(t, cfg)
	before := *h.state(t, cfg).Competitors["Ex"].Pages["home"]

	h.clock.advance(time.Hour)
	h.fetcher.remove("https://ex.test/")
	res := h.run(t, cfg)
	if len(res.Alerts) != 0 {
		t.Fatalf("Expected no alerts, got %v", kinds(res.Alerts))
	}

	after := *h.state(t, cfg).Competitors["Ex"].Pages["home"]
	if after.Hash != before.Hash || !after.LastChecked.Equal(before.LastChecked) {
		t.Errorf("Page state changed after failed fetch: before %+v after %+v", before, after)
	}
}

func TestFailedFirstFetchDoesNotCreatePage(t *testing.T) {
	h := newHarness(nil, nil)
	cfg := exConfig()
	h.run(t, cfg)
	if _, ok := h.state(t, cfg).Competitors["Ex"].Pages["home"]; ok {
		t.Error("A page that was never fetched must not have a state entry")
	}
}

func TestEmptyConfigWritesNothing(t *testing.T) {
	h := newHarness(nil, nil)
	res := h.run(t, &monitor.Config{})
	if res.AlertsSent() != 0 {
		t.Errorf("AlertsSent = %d", res.AlertsSent())
	}
	if h.kv.puts != 0 {
		t.Errorf("Expected no writes, got %d", h.kv.puts)
	}

	// Same when the stored config is empty.
	res, err := h.scanner.Run(context.Background(), nil, "")
	if err != nil || res.AlertsSent() != 0 || h.kv.puts != 0 {
		t.Errorf("Stored empty config: res=%+v err=%v puts=%d", res, err, h.kv.puts)
	}
}

func TestScanWritesStateHistoryAndDashboard(t *testing.T) {
	h := newHarness(nil, nil)
	h.fetcher.set("https://ex.test/", s1Body)
	h.run(t, exConfig())

	for _, key := range []string{"monitor_state", "change_history", "dashboard_cache"} {
		if _, err := h.kv.Get(context.Background(), key); err != nil {
			t.Errorf("Expected %s to be written: %v", key, err)
		}
	}
	if h.kv.puts != 3 {
		t.Errorf("Expected exactly 3 writes, got %d", h.kv.puts)
	}
}

func TestCancelledScanWritesNothing(t *testing.T) {
	h := newHarness(nil, nil)
	h.fetcher.set("https://ex.test/", s1Body)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := h.scanner.Run(ctx, exConfig(), "")
	if err == nil {
		t.Fatalf("Expected cancellation error, got result %+v", res)
	}
	if h.kv.puts != 0 {
		t.Errorf("Expected no writes, got %d", h.kv.puts)
	}
}

func blogConfig() *monitor.Config {
	return &monitor.Config{Competitors: []monitor.Competitor{{
		Name:    "Acme",
		BlogRSS: "https://acme.test/feed.xml",
	}}}
}

func rss(titles ...string) string {
	var b strings.Builder
	b.WriteString("<rss><channel>")
	for _, t := range titles {
		b.WriteString("<item><title>" + t + "</title><guid>" + t + "</guid></item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

func TestBlogAnnouncementVsRegularPost(t *testing.T) {
	h := newHarness(nil, nil)
	cfg := blogConfig()

	h.fetcher.set("https://acme.test/feed.xml", rss("Welcome to our blog"))
	if res := h.run(t, cfg); len(res.Alerts) != 0 {
		t.Fatalf("Expected silent seeding, got %v", kinds(res.Alerts))
	}
	if ids := h.state(t, cfg).Competitors["Acme"].Blog.PostIDs; len(ids) != 1 {
		t.Fatalf("Seeded post IDs = %v", ids)
	}

	h.fetcher.set("https://acme.test/feed.xml", rss("Acme raises Series B", "5 tips for X", "Welcome to our blog"))
	res := h.run(t, cfg)

	if len(res.Alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %v", kinds(res.Alerts))
	}
	ann, batch := res.Alerts[0], res.Alerts[1]
	if ann.Kind != monitor.EventAnnouncement || ann.Priority != monitor.PriorityMedium || !strings.Contains(ann.Text, "Funding") {
		t.Errorf("Unexpected announcement %+v", ann)
	}
	if batch.Kind != monitor.EventBlogPost || batch.Priority != monitor.PriorityLow || !strings.Contains(batch.Text, "5 tips for X") {
		t.Errorf("Unexpected batch %+v", batch)
	}
	if strings.Contains(batch.Text, "Series B") {
		t.Error("Announcement must not also appear in the batch")
	}

	plan := h.dispatcher.plans[len(h.dispatcher.plans)-1]
	if len(plan) != 3 || !strings.HasPrefix(plan[0], "📊") || plan[1] != ann.Text || plan[2] != batch.Text {
		t.Errorf("Unexpected dispatch order %q", plan)
	}

	ids := h.state(t, cfg).Competitors["Acme"].Blog.PostIDs
	if len(ids) != 3 || ids[0] != "Acme raises Series B" {
		t.Errorf("Post IDs = %v", ids)
	}
}

func TestBlogFeedWithNoItemsKeepsState(t *testing.T) {
	h := newHarness(nil, nil)
	cfg := blogConfig()
	h.fetcher.set("https://acme.test/feed.xml", rss("One"))
	h.run(t, cfg)

	h.fetcher.set("https://acme.test/feed.xml", "<html>maintenance</html>")
	if res := h.run(t, cfg); len(res.Alerts) != 0 {
		t.Fatalf("Expected no alerts, got %v", kinds(res.Alerts))
	}
	if ids := h.state(t, cfg).Competitors["Acme"].Blog.PostIDs; len(ids) != 1 || ids[0] != "One" {
		t.Errorf("Post IDs = %v", ids)
	}
}

func TestFeedDiscovery(t *testing.T) {
	h := newHarness(nil, nil)
	cfg := &monitor.Config{Competitors: []monitor.Competitor{{
		Name:  "Acme",
		Pages: []monitor.Page{{ID: "blog", URL: "https://acme.test/blog/", Label: "Blog", Type: monitor.PageBlog}},
	}}}
	h.fetcher.set("https://acme.test/blog/", `<html><head><link rel="alternate" type="application/rss+xml" href="feed.xml"></head><body>Posts</body></html>`)
	h.fetcher.set("https://acme.test/blog/feed.xml", rss("First post"))

	h.run(t, cfg)
	cs := h.state(t, cfg).Competitors["Acme"]
	if cs.Blog.FeedURL != "https://acme.test/blog/feed.xml" {
		t.Errorf("FeedURL = %q", cs.Blog.FeedURL)
	}
	if len(cs.Blog.PostIDs) != 1 {
		t.Errorf("Expected discovered feed to be seeded, got %v", cs.Blog.PostIDs)
	}

	h.fetcher.set("https://acme.test/blog/feed.xml", rss("Second post", "First post"))
	res := h.run(t, cfg)
	if len(res.Alerts) != 1 || res.Alerts[0].Kind != monitor.EventBlogPost {
		t.Errorf("Expected one blog batch, got %v", kinds(res.Alerts))
	}
}

// stubLaunches returns the next queued response per call.
type stubLaunches struct {
	responses [][]monitor.Launch
}

func (s *stubLaunches) Posts(_ context.Context, _, _ string, _ int) []monitor.Launch {
	if len(s.responses) == 0 {
		return nil
	}
	out := s.responses[0]
	s.responses = s.responses[1:]
	return out
}

func TestLaunchFeed(t *testing.T) {
	launches := &stubLaunches{responses: [][]monitor.Launch{
		{{ID: "1", Name: "Old"}},
		nil, // query failure
		{{ID: "2", Name: "Widget", Tagline: "Widgets", VotesCount: 50}, {ID: "1", Name: "Old"}},
	}}
	h := newHarness(nil, launches)
	cfg := exConfig()
	cfg.Settings = monitor.Settings{
		ProductHuntToken:  "tok",
		ProductHuntTopics: []monitor.Topic{{Slug: "dev-tools", Name: "Developer Tools"}},
	}
	h.fetcher.set("https://ex.test/", s1Body)

	if res := h.run(t, cfg); len(res.Alerts) != 0 {
		t.Fatalf("Expected silent seeding, got %v", kinds(res.Alerts))
	}
	if res := h.run(t, cfg); len(res.Alerts) != 0 {
		t.Fatalf("Expected nothing on failed query, got %v", kinds(res.Alerts))
	}
	if ids := h.state(t, cfg).ProductHunt["dev-tools"].PostIDs; len(ids) != 1 {
		t.Fatalf("Failed query must not change post IDs, got %v", ids)
	}

	res := h.run(t, cfg)
	if len(res.Alerts) != 1 || res.Alerts[0].Kind != monitor.EventProductHunt || res.Alerts[0].Priority != monitor.PriorityLow {
		t.Fatalf("Expected one launch alert, got %+v", res.Alerts)
	}
	if !strings.Contains(res.Alerts[0].Text, "Widget") || strings.Contains(res.Alerts[0].Text, "Old") {
		t.Errorf("Unexpected launch alert:\n%s", res.Alerts[0].Text)
	}
	ids := h.state(t, cfg).ProductHunt["dev-tools"].PostIDs
	if len(ids) != 2 {
		t.Errorf("Post IDs = %v", ids)
	}
}

func TestLaunchFeedSkippedWithoutToken(t *testing.T) {
	launches := &stubLaunches{responses: [][]monitor.Launch{{{ID: "1"}}}}
	h := newHarness(nil, launches)
	cfg := exConfig()
	cfg.Settings.ProductHuntTopics = []monitor.Topic{{Slug: "ai"}}
	h.fetcher.set("https://ex.test/", s1Body)
	h.run(t, cfg)
	if len(launches.responses) != 1 {
		t.Error("Launch feed should not be queried without a token")
	}
}

func TestRedesignSkipsModel(t *testing.T) {
	runner := &scriptedRunner{analysis: `{"summary":"x","analysis":"","priority":"low","recommendation":""}`}
	h := newHarness(llm.NewAnalyst(runner, "", discardLogger()), nil)
	cfg := exConfig()

	h.fetcher.set("https://ex.test/", `<html><body><p>We build developer tools for teams.</p></body></html>`)
	h.run(t, cfg)
	h.fetcher.set("https://ex.test/", `<html><body><p>Completely different copy about our new direction.</p></body></html>`)
	res := h.run(t, cfg)

	if runner.calls != 0 {
		t.Errorf("Expected no model calls for a redesign, got %d", runner.calls)
	}
	if len(res.Alerts) != 1 || res.Alerts[0].Priority != monitor.PriorityMedium {
		t.Fatalf("Expected one medium page_change alert, got %+v", res.Alerts)
	}
	if !strings.Contains(res.Alerts[0].Text, "significantly redesigned") {
		t.Errorf("Unexpected alert text:\n%s", res.Alerts[0].Text)
	}
}

func TestUnusablePricingAnswerKeepsBaseline(t *testing.T) {
	runner := &scriptedRunner{
		pricing: []string{
			`{"plans":[{"name":"Pro","price":"$19"}]}`,
			`{"error":"I cannot help with that"}`,
		},
		analysis: `{"summary":"Pricing page copy changed","analysis":"","priority":"medium","recommendation":""}`,
	}
	h := newHarness(llm.NewAnalyst(runner, "", discardLogger()), nil)
	cfg := &monitor.Config{Competitors: []monitor.Competitor{{
		Name:  "Acme",
		Pages: []monitor.Page{{ID: "pricing", URL: "https://acme.test/pricing", Label: "Pricing", Type: monitor.PagePricing}},
	}}}

	h.fetcher.set("https://acme.test/pricing", `<html><body><h1>Pricing</h1><p>Pro $19</p></body></html>`)
	h.run(t, cfg)

	h.fetcher.set("https://acme.test/pricing", `<html><body><h1>Pricing</h1><p>Pro $19, now with SSO</p></body></html>`)
	res := h.run(t, cfg)

	if len(res.Alerts) != 1 || res.Alerts[0].Kind != monitor.EventPageChange {
		t.Fatalf("Expected one page_change alert, got %v", kinds(res.Alerts))
	}
	if strings.Contains(res.Alerts[0].Text, "Removed plan") {
		t.Errorf("Unusable extraction must not report removed plans:\n%s", res.Alerts[0].Text)
	}
	p := h.state(t, cfg).Competitors["Acme"].Pricing
	if p == nil || len(p.Plans) != 1 || p.Plans[0].Price != "$19" {
		t.Errorf("Pricing baseline overwritten: %+v", p)
	}
}
