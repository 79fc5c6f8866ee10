package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"intelcore/internal/cluster"
	"intelcore/internal/domain/entity"
	"intelcore/internal/handler/http/respond"
	"intelcore/internal/registry"
	"intelcore/internal/usecase/search"
)

// Query parameter defaults per endpoint.
const (
	feedsDefaultSinceHours    = 24.0
	feedsDefaultLimit         = 80
	clustersDefaultSinceHours = 24.0
	clustersDefaultLimit      = 40
	enrichDefaultLimit        = 40
	defaultMinSources         = 1
)

// Aggregator is the pipeline surface the handlers consume.
type Aggregator interface {
	Items(ctx context.Context, sinceHours float64, limit int) ([]entity.ScoredItem, error)
	Clusters(ctx context.Context, sinceHours float64, limit, minSources int) ([]entity.Cluster, error)
}

// Enricher applies the AI enrichment pipeline to a scored batch.
type Enricher interface {
	EnrichAll(ctx context.Context, items []entity.ScoredItem) []entity.EnrichedItem
}

// Server holds the handler dependencies. All endpoints are read-only.
type Server struct {
	registry *registry.Registry
	agg      Aggregator
	enricher Enricher
	logger   *slog.Logger
	now      func() time.Time
}

// NewServer creates the API server. enricher may be nil when enrichment is not
// configured; the enrichment endpoints then respond 503.
func NewServer(reg *registry.Registry, agg Aggregator, enricher Enricher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		registry: reg,
		agg:      agg,
		enricher: enricher,
		logger:   logger,
		now:      time.Now,
	}
}

// handleHealth serves GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"ts":      s.now().UnixMilli(),
		"sources": s.registry.Len(),
	})
}

// handleSources serves GET /api/sources.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	respond.JSON(w, http.StatusOK, s.registry.Sources())
}

// handleTopics serves GET /api/topics.
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	regions := make([]string, 0, len(registry.Geos()))
	for _, g := range registry.Geos() {
		regions = append(regions, g.Label)
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	respond.JSON(w, http.StatusOK, map[string]any{
		"topics":     registry.TopicLabels(),
		"regions":    regions,
		"geoBuckets": registry.GeoBuckets(),
	})
}

// handleFeeds serves GET /api/feeds with an ETag over the exact body bytes.
func (s *Server) handleFeeds(w http.ResponseWriter, r *http.Request) {
	sinceHours, err := floatParam(r, "sinceHours", feedsDefaultSinceHours)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit", feedsDefaultLimit)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	items, err := s.agg.Items(r.Context(), sinceHours, limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []entity.ScoredItem{}
	}

	body, err := json.Marshal(items)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	sum := sha256.Sum256(body)
	etag := hex.EncodeToString(sum[:])
	w.Header().Set("Cache-Control", "public, max-age=120")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("write feeds response", slog.Any("error", err))
	}
}

// handleClusters serves GET /api/clusters.
func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	sinceHours, err := floatParam(r, "sinceHours", clustersDefaultSinceHours)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit", clustersDefaultLimit)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	minSources, err := intParam(r, "minSources", defaultMinSources)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	clusters, err := s.agg.Clusters(r.Context(), sinceHours, limit, minSources)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if clusters == nil {
		clusters = []entity.Cluster{}
	}
	respond.JSON(w, http.StatusOK, clusters)
}

// handleEnrich serves GET /api/enrich. Enriched payloads are never cached at
// the HTTP layer; the enrichment cache already bounds upstream cost.
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	items, ok := s.enrichWindow(w, r)
	if !ok {
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respond.JSON(w, http.StatusOK, map[string]any{
		"count": len(items),
		"items": items,
	})
}

// handleClustersEnriched serves GET /api/clusters/enriched.
func (s *Server) handleClustersEnriched(w http.ResponseWriter, r *http.Request) {
	minSources, err := intParam(r, "minSources", defaultMinSources)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	items, ok := s.enrichWindow(w, r)
	if !ok {
		return
	}

	clusters := cluster.FilterMinSourcesEnriched(cluster.BuildEnriched(items), minSources)
	if clusters == nil {
		clusters = []entity.EnrichedCluster{}
	}
	w.Header().Set("Cache-Control", "no-store")
	respond.JSON(w, http.StatusOK, clusters)
}

// enrichWindow aggregates and enriches the requested window, writing the
// error response itself when something fails.
func (s *Server) enrichWindow(w http.ResponseWriter, r *http.Request) ([]entity.EnrichedItem, bool) {
	if s.enricher == nil {
		respond.Error(w, http.StatusServiceUnavailable, fmt.Errorf("enrichment is not configured"))
		return nil, false
	}

	sinceHours, err := floatParam(r, "sinceHours", clustersDefaultSinceHours)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return nil, false
	}
	limit, err := intParam(r, "limit", enrichDefaultLimit)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return nil, false
	}

	items, err := s.agg.Items(r.Context(), sinceHours, limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return nil, false
	}

	enriched := s.enricher.EnrichAll(r.Context(), items)
	if enriched == nil {
		enriched = []entity.EnrichedItem{}
	}
	return enriched, true
}

// handleSearch serves GET /api/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	sinceHours, err := floatParam(r, "sinceHours", search.DefaultSinceHours)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit", search.DefaultLimit)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	// The window is fetched unbounded; the limit applies to matches.
	items, err := s.agg.Items(r.Context(), sinceHours, 0)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	matched := search.Filter(items, q, limit)
	if matched == nil {
		matched = []entity.ScoredItem{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"q":     q,
		"count": len(matched),
		"items": matched,
	})
}
