package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelcore/internal/domain/entity"
	"intelcore/internal/pkg/signing"
	"intelcore/internal/registry"
)

type stubAgg struct {
	mu       sync.Mutex
	items    []entity.ScoredItem
	clusters []entity.Cluster
	err      error
	errFirst int // fail this many leading Items calls

	gotSinceHours float64
	gotLimit      int
	gotMinSources int
}

func (a *stubAgg) Items(_ context.Context, sinceHours float64, limit int) ([]entity.ScoredItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gotSinceHours = sinceHours
	a.gotLimit = limit
	if a.errFirst > 0 {
		a.errFirst--
		return nil, assert.AnError
	}
	return a.items, a.err
}

func (a *stubAgg) Clusters(_ context.Context, sinceHours float64, limit, minSources int) ([]entity.Cluster, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gotSinceHours = sinceHours
	a.gotLimit = limit
	a.gotMinSources = minSources
	return a.clusters, a.err
}

type stubEnricher struct{}

func (stubEnricher) EnrichAll(_ context.Context, items []entity.ScoredItem) []entity.EnrichedItem {
	out := make([]entity.EnrichedItem, 0, len(items))
	for _, it := range items {
		out = append(out, entity.EnrichedItem{ScoredItem: it, Summary: "stub summary", Enriched: true})
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	t.Setenv("FEED_SOURCES_JSON", `[
		{"src":"alpha","url":"https://alpha.example/rss","weight":0.8,"region":"Europe"},
		{"src":"beta","url":"https://beta.example/rss","weight":0.6,"region":"Asia"}
	]`)
	reg, err := registry.Load()
	require.NoError(t, err)
	return reg
}

func newTestServer(t *testing.T, agg Aggregator, enricher Enricher, secret string) (*Server, http.Handler) {
	t.Helper()
	s := NewServer(newTestRegistry(t), agg, enricher, testLogger())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s, s.Handler(secret, testLogger())
}

func get(h http.Handler, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func scoredStub() []entity.ScoredItem {
	return []entity.ScoredItem{
		{Src: "alpha", Title: "Missile strike near harbour", Link: "https://alpha.example/1", Tags: []string{"Conflict/Military"}, TS: 100, Score: 0.8, Key: "missile-strike-near-harbour"},
		{Src: "beta", Title: "Missile strike near harbour", Link: "https://beta.example/2", Tags: []string{"Conflict/Military"}, TS: 200, Score: 0.7, Key: "missile-strike-near-harbour"},
	}
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")

	rec := get(h, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")

	var body struct {
		OK      bool  `json:"ok"`
		TS      int64 `json:"ts"`
		Sources int   `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, int64(1772366400000), body.TS)
	assert.Equal(t, 2, body.Sources)
}

func TestSources(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")

	rec := get(h, "/api/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	var sources []entity.FeedSource
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sources))
	require.Len(t, sources, 2)
	assert.Equal(t, "alpha", sources[0].Src)
}

func TestTopics(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")

	rec := get(h, "/api/topics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Topics     []string            `json:"topics"`
		Regions    []string            `json:"regions"`
		GeoBuckets map[string][]string `json:"geoBuckets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Topics, "Cyber")
	assert.Contains(t, body.Regions, "Europe")
	assert.NotEmpty(t, body.GeoBuckets)
}

func TestFeeds_DefaultsAndETag(t *testing.T) {
	agg := &stubAgg{items: scoredStub()}
	_, h := newTestServer(t, agg, nil, "")

	rec := get(h, "/api/feeds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24.0, agg.gotSinceHours)
	assert.Equal(t, 80, agg.gotLimit)
	assert.Equal(t, "public, max-age=120", rec.Header().Get("Cache-Control"))

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var items []entity.ScoredItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 2)

	// Replaying the request with the ETag yields 304 with no body.
	rec = get(h, "/api/feeds", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestFeeds_EmptyWindowIsEmptyArray(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")

	rec := get(h, "/api/feeds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestFeeds_BadParams(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")

	for _, target := range []string{
		"/api/feeds?sinceHours=abc",
		"/api/feeds?limit=-5",
		"/api/feeds?limit=many",
	} {
		rec := get(h, target, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)

		var body struct {
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.OK)
		assert.Contains(t, body.Error, "invalid")
	}
}

func TestClusters_ParamsForwarded(t *testing.T) {
	agg := &stubAgg{}
	_, h := newTestServer(t, agg, nil, "")

	rec := get(h, "/api/clusters?sinceHours=6&limit=10&minSources=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6.0, agg.gotSinceHours)
	assert.Equal(t, 10, agg.gotLimit)
	assert.Equal(t, 2, agg.gotMinSources)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestEnrich_UnavailableWithoutEnricher(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")

	rec := get(h, "/api/enrich", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.OK)
	assert.Contains(t, body.Error, "not configured")
}

func TestEnrich(t *testing.T) {
	agg := &stubAgg{items: scoredStub()}
	_, h := newTestServer(t, agg, stubEnricher{}, "")

	rec := get(h, "/api/enrich", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, 40, agg.gotLimit)

	var body struct {
		Count int                   `json:"count"`
		Items []entity.EnrichedItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Items, 2)
	assert.True(t, body.Items[0].Enriched)
	assert.Equal(t, "stub summary", body.Items[0].Summary)
}

func TestClustersEnriched(t *testing.T) {
	agg := &stubAgg{items: scoredStub()}
	_, h := newTestServer(t, agg, stubEnricher{}, "")

	rec := get(h, "/api/clusters/enriched", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var clusters []entity.EnrichedCluster
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clusters))
	// Both stub items share a story key, so they collapse into one cluster.
	require.Len(t, clusters, 1)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, clusters[0].Sources)
	assert.True(t, clusters[0].Items[0].Enriched)
}

func TestClustersEnriched_MinSources(t *testing.T) {
	agg := &stubAgg{items: scoredStub()}
	_, h := newTestServer(t, agg, stubEnricher{}, "")

	rec := get(h, "/api/clusters/enriched?minSources=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSearch(t *testing.T) {
	agg := &stubAgg{items: scoredStub()}
	_, h := newTestServer(t, agg, nil, "")

	rec := get(h, "/api/search?q=missile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// The window is fetched unbounded; the limit applies to matches only.
	assert.Equal(t, 0, agg.gotLimit)
	assert.Equal(t, 48.0, agg.gotSinceHours)

	var body struct {
		Q     string              `json:"q"`
		Count int                 `json:"count"`
		Items []entity.ScoredItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "missile", body.Q)
	assert.Equal(t, 2, body.Count)
}

func TestSearch_NoMatches(t *testing.T) {
	agg := &stubAgg{items: scoredStub()}
	_, h := newTestServer(t, agg, nil, "")

	rec := get(h, "/api/search?q=submarine", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int                 `json:"count"`
		Items []entity.ScoredItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Items)
}

func TestOptionsPreflight(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")

	for _, target := range []string{"/api/feeds", "/api/anything", "/nope"} {
		req := httptest.NewRequest(http.MethodOptions, target, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code, target)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestSecurityHeaders(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")

	rec := get(h, "/api/health", nil)
	assert.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestResponseSigning(t *testing.T) {
	agg := &stubAgg{items: scoredStub()}
	secret := "test-secret"
	_, h := newTestServer(t, agg, nil, secret)

	for _, target := range []string{"/api/health", "/api/feeds", "/api/clusters"} {
		rec := get(h, target, nil)
		require.Equal(t, http.StatusOK, rec.Code, target)

		sig := rec.Header().Get(signing.Header)
		require.NotEmpty(t, sig, target)
		assert.True(t, signing.Verify(secret, rec.Body.Bytes(), sig), target)
	}

	// Unsigned routes carry no signature.
	rec := get(h, "/api/sources", nil)
	assert.Empty(t, rec.Header().Get(signing.Header))
}

func TestResponseSigning_DisabledWithoutSecret(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{items: scoredStub()}, nil, "")

	rec := get(h, "/api/feeds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(signing.Header))
}

func TestUnknownRoute(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")
	rec := get(h, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	_, h := newTestServer(t, &stubAgg{}, nil, "")
	rec := get(h, "/api/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
