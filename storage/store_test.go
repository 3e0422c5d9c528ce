package storage

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"scopehound/pkg/monitor"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func TestMigrateV1(t *testing.T) {
	raw := []byte(`{"Acme":{"blogPostIds":["a","b"],"pricingHash":"deadbeef","pricing":{"plans":[]}},"Gone":{"blogPostIds":["z"]},"productHunt":{"ai":{"postIds":["p1"]}}}`)
	cfg := &monitor.Config{
		Competitors: []monitor.Competitor{{
			Name: "Acme",
			Pages: []monitor.Page{
				{ID: "home", Type: monitor.PageGeneral},
				{ID: "pricing", Type: monitor.PagePricing},
			},
		}},
		Settings: monitor.Settings{ProductHuntTopics: []monitor.Topic{{Slug: "ai", Name: "AI"}}},
	}

	state, migrated, err := DecodeState(raw, cfg, testNow)
	if err != nil {
		t.Fatalf("DecodeState failed: %v", err)
	}
	if !migrated {
		t.Error("Expected migration to run")
	}
	if state.Version != 2 {
		t.Errorf("Version = %d, want 2", state.Version)
	}

	acme := state.Competitors["Acme"]
	if acme == nil {
		t.Fatal("Expected Acme state")
	}
	if !reflect.DeepEqual(acme.Blog.PostIDs, []string{"a", "b"}) {
		t.Errorf("blog.postIds = %v", acme.Blog.PostIDs)
	}
	if acme.Pricing == nil || acme.Pricing.Plans == nil || len(acme.Pricing.Plans) != 0 {
		t.Errorf("pricing = %+v, want empty plans", acme.Pricing)
	}
	page := acme.Pages["pricing"]
	if page == nil || page.Hash != "deadbeef" || page.TextSnapshot != "" || page.LastChanged != nil || !page.LastChecked.Equal(testNow) {
		t.Errorf("pricing page = %+v", page)
	}
	if _, ok := acme.Pages["home"]; ok {
		t.Error("Non-pricing page should not be seeded")
	}
	if _, ok := state.Competitors["Gone"]; ok {
		t.Error("Unconfigured competitor should not be migrated")
	}
	if got := state.ProductHunt["ai"]; got == nil || !reflect.DeepEqual(got.PostIDs, []string{"p1"}) {
		t.Errorf("productHunt.ai = %+v", got)
	}

	// Re-decoding the persisted result is a no-op.
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	again, migrated, err := DecodeState(data, cfg, testNow.Add(time.Hour))
	if err != nil || migrated {
		t.Fatalf("Second decode: migrated=%v err=%v", migrated, err)
	}
	if !reflect.DeepEqual(again.Competitors["Acme"].Blog.PostIDs, []string{"a", "b"}) {
		t.Error("Second decode lost blog post IDs")
	}
	if again.Competitors["Acme"].Pages["pricing"].Hash != "deadbeef" {
		t.Error("Second decode lost pricing hash")
	}
}

func TestMigrateV1WithoutPricingPage(t *testing.T) {
	raw := []byte(`{"_version":1,"Acme":{"pricingHash":"deadbeef"}}`)
	cfg := &monitor.Config{Competitors: []monitor.Competitor{{Name: "Acme", Pages: []monitor.Page{{ID: "home", Type: monitor.PageGeneral}}}}}

	state, migrated, err := DecodeState(raw, cfg, testNow)
	if err != nil || !migrated {
		t.Fatalf("DecodeState: migrated=%v err=%v", migrated, err)
	}
	if len(state.Competitors["Acme"].Pages) != 0 {
		t.Errorf("Expected no seeded pages, got %+v", state.Competitors["Acme"].Pages)
	}
}

func TestLoadStateCorruptStartsFresh(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	if err := kv.Put(ctx, "monitor_state", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	s := NewStore(kv, discardLogger())

	state, err := s.LoadState(ctx, "", &monitor.Config{}, testNow)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if state.Version != monitor.StateVersion || len(state.Competitors) != 0 {
		t.Errorf("Expected fresh state, got %+v", state)
	}
}

func TestStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory(), discardLogger())

	state := monitor.NewState()
	state.Competitor("Acme").Pages["home"] = &monitor.PageState{Hash: "abc", TextSnapshot: "Hello", LastChecked: testNow}
	if err := s.SaveState(ctx, "u1", state); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	raw, err := s.KV().Get(ctx, "user_state:u1:monitor")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["_version"] != float64(2) {
		t.Errorf("_version = %v", doc["_version"])
	}

	loaded, err := s.LoadState(ctx, "u1", &monitor.Config{}, testNow)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if got := loaded.Competitors["Acme"].Pages["home"]; got.Hash != "abc" || got.TextSnapshot != "Hello" {
		t.Errorf("Loaded page = %+v", got)
	}
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory(), discardLogger())

	empty, err := s.LoadConfig(ctx, "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(empty.Competitors) != 0 {
		t.Errorf("Expected empty config, got %+v", empty)
	}

	cfg := &monitor.Config{
		Competitors: []monitor.Competitor{{Name: "Acme", Website: "https://acme.test"}},
		Settings: monitor.Settings{
			SlackWebhookURL:      "https://hooks.test/x",
			AnnouncementKeywords: monitor.KeywordMap{{Category: "hiring", Keywords: []string{"hiring"}}},
		},
	}
	if err := s.SaveConfig(ctx, "u1", cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := s.LoadConfig(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("LoadConfig = %+v, want %+v", got, cfg)
	}
}

func TestHistoryDays(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	s := NewStore(kv, discardLogger())

	_ = kv.Put(ctx, "user:scouty", []byte(`{"tier":"scout","email":"x@y.test"}`))
	_ = kv.Put(ctx, "user:big", []byte(`{"tier":"strategic"}`))
	_ = kv.Put(ctx, "user:broken", []byte(`nope`))

	tests := []struct {
		tenant string
		want   int
	}{
		{"", 90},
		{"scouty", 30},
		{"big", -1},
		{"broken", 90},
		{"nobody", 90},
	}
	for _, tt := range tests {
		if got := s.HistoryDays(ctx, tt.tenant); got != tt.want {
			t.Errorf("HistoryDays(%q) = %d, want %d", tt.tenant, got, tt.want)
		}
	}
}

func TestListTenants(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	s := NewStore(kv, discardLogger())

	_ = kv.Put(ctx, "user_config:b:competitors", []byte(`[]`))
	_ = kv.Put(ctx, "user_config:a:competitors", []byte(`[]`))
	_ = kv.Put(ctx, "user_config:a:settings", []byte(`{}`))
	_ = kv.Put(ctx, "user_config:c:settings", []byte(`{}`))
	_ = kv.Put(ctx, "config:competitors", []byte(`[]`))

	got, err := s.ListTenants(ctx)
	if err != nil {
		t.Fatalf("ListTenants failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ListTenants = %v, want [a b]", got)
	}
}
