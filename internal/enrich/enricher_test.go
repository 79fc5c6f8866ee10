package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelcore/internal/domain/entity"
	"intelcore/internal/infra/kv"
	"intelcore/internal/resilience/retry"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// taskServer fakes the inference endpoints, one route per task, and records
// every request.
type taskServer struct {
	*httptest.Server
	mu       sync.Mutex
	calls    map[string]int
	tokens   []string
	failWith int // when non-zero, every route responds with this status
}

func newTaskServer(t *testing.T) *taskServer {
	t.Helper()
	ts := &taskServer{calls: make(map[string]int)}

	responses := map[string]string{
		"/lang":      `[[{"label":"fr","score":0.99}]]`,
		"/translate": `[{"translation_text":"translated text"}]`,
		"/zeroshot":  `{"labels":["Cyber","Energy","Maritime"],"scores":[0.9,0.8,0.1]}`,
		"/summary":   `[{"summary_text":"short summary"}]`,
		"/sentiment": `[[{"label":"negative","score":0.7}]]`,
		"/ner":       `[{"word":"Beirut","entity_group":"LOC","score":0.99}]`,
	}

	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.calls[r.URL.Path]++
		ts.tokens = append(ts.tokens, r.Header.Get("Authorization"))
		fail := ts.failWith
		ts.mu.Unlock()

		if fail != 0 {
			w.WriteHeader(fail)
			return
		}
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *taskServer) callCount(path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.calls[path]
}

func (ts *taskServer) totalCalls() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	n := 0
	for _, c := range ts.calls {
		n += c
	}
	return n
}

func testConfig(base string) Config {
	return Config{
		Tokens:            []string{"tok-a", "tok-b"},
		UseEndpoints:      true,
		MaxEnrich:         25,
		CacheTTL:          time.Hour,
		TaskTimeout:       5 * time.Second,
		LangModel:         base + "/lang",
		TranslateModel:    base + "/translate",
		ZeroShotModel:     base + "/zeroshot",
		SummaryModel:      base + "/summary",
		SentimentModel:    base + "/sentiment",
		NERModel:          base + "/ner",
		ZeroShotMinScore:  0.35,
		ZeroShotMaxLabels: 5,
		SummaryMaxLength:  120,
		SummaryMinLength:  40,
	}
}

func testEnricher(cfg Config, store kv.Store) *Enricher {
	hf := NewHFClient(nil, NewTokenPool(cfg.Tokens), cfg.UseEndpoints)
	hf.retryConfig = fastRetry()
	return New(cfg, hf, store, nil)
}

func scoredFixture() entity.ScoredItem {
	return entity.ScoredItem{
		Src:         "test-wire",
		Title:       "Explosion au port",
		Link:        "https://example.com/fr-1",
		Description: "Plusieurs installations touchées.",
		Tags:        []string{"Middle East"},
		Key:         "explosion-port",
		Score:       0.8,
	}
}

func TestEnrichAll_FullPipeline(t *testing.T) {
	srv := newTaskServer(t)
	e := testEnricher(testConfig(srv.URL), kv.NewMemoryStore())

	out := e.EnrichAll(context.Background(), []entity.ScoredItem{scoredFixture()})
	require.Len(t, out, 1)

	got := out[0]
	assert.True(t, got.Enriched)
	assert.Equal(t, "fr", got.Lang)
	assert.True(t, got.Translated)
	assert.Equal(t, "translated text", got.NormalizedText)
	assert.Equal(t, "short summary", got.Summary)
	// Maritime scored below the acceptance floor.
	assert.Equal(t, []string{"Cyber", "Energy"}, got.ZSLabels)
	assert.JSONEq(t, `[[{"label":"negative","score":0.7}]]`, string(got.Sentiment))
	require.Len(t, got.Entities, 1)
	assert.Equal(t, entity.Entity{Word: "Beirut", Group: "LOC", Score: 0.99}, got.Entities[0])

	// Merged tags keep the original labels first.
	assert.Equal(t, []string{"Middle East", "Cyber", "Energy"}, got.Tags)

	// Non-English input goes through translation exactly once.
	assert.Equal(t, 1, srv.callCount("/translate"))
}

func TestEnrichAll_CacheHit(t *testing.T) {
	srv := newTaskServer(t)
	e := testEnricher(testConfig(srv.URL), kv.NewMemoryStore())

	first := e.EnrichAll(context.Background(), []entity.ScoredItem{scoredFixture()})
	callsAfterFirst := srv.totalCalls()
	second := e.EnrichAll(context.Background(), []entity.ScoredItem{scoredFixture()})

	assert.Equal(t, callsAfterFirst, srv.totalCalls(), "cached run must not hit the provider")
	assert.Equal(t, first[0].Summary, second[0].Summary)
	assert.Equal(t, first[0].Tags, second[0].Tags)
	assert.True(t, second[0].Enriched)
}

func TestEnrichAll_CapPassesTailThrough(t *testing.T) {
	srv := newTaskServer(t)
	cfg := testConfig(srv.URL)
	cfg.MaxEnrich = 1
	e := testEnricher(cfg, kv.NewMemoryStore())

	a := scoredFixture()
	b := scoredFixture()
	b.Link = "https://example.com/fr-2"
	b.Title = "Second story"

	out := e.EnrichAll(context.Background(), []entity.ScoredItem{a, b})
	require.Len(t, out, 2)
	assert.True(t, out[0].Enriched)
	assert.False(t, out[1].Enriched)
	assert.Equal(t, "Second story", out[1].Title)
	assert.Equal(t, []string{"Middle East"}, out[1].Tags)
}

func TestEnrichAll_AuthRejectionFailsSoft(t *testing.T) {
	srv := newTaskServer(t)
	srv.failWith = http.StatusUnauthorized
	store := kv.NewMemoryStore()
	e := testEnricher(testConfig(srv.URL), store)

	out := e.EnrichAll(context.Background(), []entity.ScoredItem{scoredFixture()})
	require.Len(t, out, 1)

	assert.False(t, out[0].Enriched)
	assert.Empty(t, out[0].Summary)
	assert.Equal(t, []string{"Middle East"}, out[0].Tags)
	// Credential rejections are terminal for the item: one attempt, no cache.
	assert.Equal(t, 1, srv.totalCalls())
	assert.Equal(t, 0, store.Len())
}

func TestEnrichAll_TaskFailureLeavesFieldEmpty(t *testing.T) {
	srv := newTaskServer(t)
	cfg := testConfig(srv.URL)
	// Point the summary task at a missing route; everything else succeeds.
	cfg.SummaryModel = srv.URL + "/missing"
	e := testEnricher(cfg, kv.NewMemoryStore())

	out := e.EnrichAll(context.Background(), []entity.ScoredItem{scoredFixture()})
	require.Len(t, out, 1)
	assert.True(t, out[0].Enriched)
	assert.Empty(t, out[0].Summary)
	assert.Equal(t, "translated text", out[0].NormalizedText)
}

func TestEnrichAll_CancelledContextPassesThrough(t *testing.T) {
	srv := newTaskServer(t)
	e := testEnricher(testConfig(srv.URL), kv.NewMemoryStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := e.EnrichAll(ctx, []entity.ScoredItem{scoredFixture()})
	require.Len(t, out, 1)
	assert.False(t, out[0].Enriched)
	assert.Equal(t, 0, srv.totalCalls())
}

func TestHFClient_RotatesTokens(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"en","score":0.99}]]`))
	}))
	defer srv.Close()

	hf := NewHFClient(srv.Client(), NewTokenPool([]string{"tok-a", "tok-b", "tok-c"}), true)
	hf.retryConfig = fastRetry()

	lang, err := hf.DetectLanguage(context.Background(), srv.URL, "hello")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	// Each attempt advances the pool, so the rate-limited retries walked the
	// credentials in declaration order.
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bearer tok-a", "Bearer tok-b", "Bearer tok-c"}, seen)
}

func TestHFClient_AuthErrorFailsFast(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	hf := NewHFClient(srv.Client(), NewTokenPool([]string{"tok-a"}), true)
	hf.retryConfig = fastRetry()

	_, err := hf.Call(context.Background(), srv.URL, map[string]any{"inputs": "x"})
	require.Error(t, err)
	assert.True(t, retry.IsAuthError(err))
	assert.Equal(t, 1, calls)
}

func TestTokenPool(t *testing.T) {
	p := NewTokenPool([]string{"a", "b"})
	assert.Equal(t, 2, p.Size())
	assert.Equal(t, "a", p.Next())
	assert.Equal(t, "b", p.Next())
	assert.Equal(t, "a", p.Next())

	empty := NewTokenPool(nil)
	assert.Equal(t, 0, empty.Size())
	assert.Equal(t, "", empty.Next())
}

func TestZeroShot_FiltersAndCaps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"labels":["A","B","C","D"],"scores":[0.9,0.8,0.7,0.2]}`))
	}))
	defer srv.Close()

	hf := NewHFClient(srv.Client(), NewTokenPool(nil), true)
	hf.retryConfig = fastRetry()

	got, err := hf.ZeroShot(context.Background(), srv.URL, "text", []string{"A", "B", "C", "D"}, 0.35, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestApply_TagMergeKeepsOriginalOrder(t *testing.T) {
	it := entity.ScoredItem{Tags: []string{"A", "B"}}
	got := apply(it, cachedEnrichment{ZSLabels: []string{"B", "C"}})
	assert.Equal(t, []string{"A", "B", "C"}, got.Tags)
	assert.True(t, got.Enriched)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "hél", truncateRunes("héllo wörld", 3))
	assert.Equal(t, "", truncateRunes("", 5))
}

func TestLoadConfig_TokensJSON(t *testing.T) {
	t.Setenv("HF_TOKENS_JSON", `["x","y"]`)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, cfg.Tokens)
	assert.Equal(t, 25, cfg.MaxEnrich)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 8*time.Second, cfg.TaskTimeout)
}

func TestLoadConfig_NumberedTokens(t *testing.T) {
	t.Setenv("HF_TOKENS_JSON", "")
	t.Setenv("HF_TOKEN_A", "first")
	t.Setenv("HF_TOKEN_B", "second")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, cfg.Tokens)
}

func TestLoadConfig_MalformedJSONFails(t *testing.T) {
	t.Setenv("HF_TOKENS_JSON", "{not json")
	_, err := LoadConfig()
	require.Error(t, err)
}
