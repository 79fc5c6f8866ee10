// Package aggregate orchestrates the ingestion pipeline: concurrent feed
// fetches, parsing, scoring, windowing and clustering, plus the best-effort
// first-seen and cluster-memory KV writes.
package aggregate

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"intelcore/internal/cluster"
	"intelcore/internal/domain/entity"
	"intelcore/internal/infra/kv"
	"intelcore/internal/observability/metrics"
	"intelcore/internal/registry"
	"intelcore/internal/score"
)

const (
	// fetchParallelism bounds concurrent feed downloads. Feeds settle
	// independently; the bound only protects local sockets.
	fetchParallelism = 12

	// warmSinceHours / warmLimit parameterise the scheduled warm run.
	warmSinceHours = 12.0
	warmLimit      = 60
)

// Fetcher downloads the raw payload of one feed source.
type Fetcher interface {
	Fetch(ctx context.Context, src entity.FeedSource) ([]byte, error)
}

// Parser converts a raw payload into normalised items.
type Parser interface {
	Parse(src entity.FeedSource, payload []byte) ([]entity.RawItem, error)
}

// Service provides the aggregation use cases. It is safe for concurrent use.
type Service struct {
	registry *registry.Registry
	fetcher  Fetcher
	parser   Parser
	scorer   *score.Scorer
	store    kv.Store
	now      func() time.Time
}

// NewService creates an aggregation Service. store may be nil to disable the
// first-seen and cluster-memory writes.
func NewService(reg *registry.Registry, fetcher Fetcher, parser Parser, scorer *score.Scorer, store kv.Store) *Service {
	return &Service{
		registry: reg,
		fetcher:  fetcher,
		parser:   parser,
		scorer:   scorer,
		store:    store,
		now:      time.Now,
	}
}

// Stats summarises one pipeline run.
type Stats struct {
	Sources  int
	Fetched  int
	Items    int
	Returned int
	Duration time.Duration
}

// Items runs the full pipeline and returns the scored items of the window:
// sorted by score descending, filtered to age <= sinceHours, truncated to
// limit. A feed that fails contributes nothing; the call itself only fails on
// context cancellation.
func (s *Service) Items(ctx context.Context, sinceHours float64, limit int) ([]entity.ScoredItem, error) {
	items, _, err := s.run(ctx, sinceHours, limit)
	return items, err
}

// Clusters runs the pipeline and groups the window into story clusters,
// dropping clusters corroborated by fewer than minSources sources. The
// clustering stage works over up to 2x limit items of headroom so that a
// corroborating tail item is not cut off before it can join its cluster.
func (s *Service) Clusters(ctx context.Context, sinceHours float64, limit, minSources int) ([]entity.Cluster, error) {
	items, _, err := s.run(ctx, sinceHours, 2*limit)
	if err != nil {
		return nil, err
	}

	clusters := cluster.FilterMinSources(cluster.Build(items), minSources)
	if limit > 0 && len(clusters) > limit {
		clusters = clusters[:limit]
	}
	s.rememberClusters(ctx, clusters)
	return clusters, nil
}

// Warm runs the pipeline with the scheduled-warm parameters, priming the
// enrichment-independent caches. Failures are logged by the caller.
func (s *Service) Warm(ctx context.Context) (Stats, error) {
	_, stats, err := s.run(ctx, warmSinceHours, warmLimit)
	return stats, err
}

// run executes fetch, parse, score, window and the first-seen writes.
func (s *Service) run(ctx context.Context, sinceHours float64, limit int) ([]entity.ScoredItem, Stats, error) {
	logger := slog.Default()
	start := s.now()
	sources := s.registry.Sources()
	stats := Stats{Sources: len(sources)}

	var (
		mu   sync.Mutex
		raws []entity.RawItem
	)

	// All-settled fan-out: a failing feed logs and contributes nothing, so
	// the group only ever returns the context error.
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(fetchParallelism)
	for _, src := range sources {
		src := src
		eg.Go(func() error {
			if egCtx.Err() != nil {
				return egCtx.Err()
			}

			payload, err := s.fetcher.Fetch(egCtx, src)
			if err != nil {
				logger.Warn("feed fetch failed, skipping source",
					slog.String("src", src.Src),
					slog.String("url", src.URL),
					slog.Any("error", err))
				return nil
			}

			items, err := s.parser.Parse(src, payload)
			if err != nil {
				logger.Warn("feed parse failed, skipping source",
					slog.String("src", src.Src),
					slog.Any("error", err))
				return nil
			}
			metrics.RecordItemsParsed(src.Src, len(items))

			mu.Lock()
			stats.Fetched++
			raws = append(raws, items...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, stats, err
	}

	scored := s.scorer.ScoreAll(raws)
	stats.Items = len(scored)

	// The window compares the exact age, not the wire-rounded AgeH.
	windowed := scored[:0:0]
	for _, it := range scored {
		if score.AgeHours(start, it.TS) <= sinceHours {
			windowed = append(windowed, it)
		}
	}
	if limit > 0 && len(windowed) > limit {
		windowed = windowed[:limit]
	}
	stats.Returned = len(windowed)
	stats.Duration = time.Since(start)

	s.rememberItems(ctx, windowed)
	metrics.RecordAggregation(stats.Duration)
	logger.Info("aggregation completed",
		slog.Int("sources", stats.Sources),
		slog.Int("fetched", stats.Fetched),
		slog.Int("items", stats.Items),
		slog.Int("returned", stats.Returned),
		slog.Duration("duration", stats.Duration),
	)
	return windowed, stats, nil
}

// firstSeenRecord is the KV value of one first-seen entry.
type firstSeenRecord struct {
	FirstSeenTS int64  `json:"firstSeenTs"`
	Link        string `json:"link"`
	Title       string `json:"title"`
}

// clusterRecord is the KV value of one cluster-memory entry.
type clusterRecord struct {
	Key        string   `json:"key"`
	LastSeenTS int64    `json:"lastSeenTs"`
	Sources    []string `json:"sources"`
	Tags       []string `json:"tags"`
}

// rememberItems writes first-seen records for items not yet in the KV.
// Best effort: failures are logged and the pipeline result is unaffected.
func (s *Service) rememberItems(ctx context.Context, items []entity.ScoredItem) {
	if s.store == nil {
		return
	}
	// Writes must survive a request-level cancellation.
	safeCtx := context.WithoutCancel(ctx)

	for _, it := range items {
		key := kv.ItemPrefix + kv.HashKey(it.Link)
		if _, ok, err := s.store.Get(safeCtx, key); err != nil || ok {
			if err != nil {
				slog.Warn("first-seen read failed", slog.String("src", it.Src), slog.Any("error", err))
			}
			continue
		}

		raw, err := json.Marshal(firstSeenRecord{FirstSeenTS: it.TS, Link: it.Link, Title: it.Title})
		if err != nil {
			continue
		}
		if err := s.store.Put(safeCtx, key, raw, kv.FirstSeenTTL); err != nil {
			slog.Warn("first-seen write failed", slog.String("src", it.Src), slog.Any("error", err))
		}
	}
}

// rememberClusters refreshes the cluster-memory records. Last writer wins.
func (s *Service) rememberClusters(ctx context.Context, clusters []entity.Cluster) {
	if s.store == nil {
		return
	}
	safeCtx := context.WithoutCancel(ctx)

	for _, c := range clusters {
		raw, err := json.Marshal(clusterRecord{
			Key:        c.Key,
			LastSeenTS: c.LastSeenTS,
			Sources:    c.Sources,
			Tags:       c.Tags,
		})
		if err != nil {
			continue
		}
		if err := s.store.Put(safeCtx, kv.ClusterPrefix+c.Key, raw, kv.ClusterTTL); err != nil {
			slog.Warn("cluster memory write failed", slog.String("key", c.Key), slog.Any("error", err))
		}
	}
}
