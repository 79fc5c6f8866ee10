// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Pipeline metrics track the aggregation stages
var (
	// FeedFetchTotal counts feed fetch outcomes per source
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_total",
			Help: "Feed fetch attempts by source and outcome",
		},
		[]string{"src", "outcome"},
	)

	// FeedFetchDuration measures feed fetch duration in seconds per source
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Feed fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"src"},
	)

	// FeedItemsParsed counts items surviving the parse stage per source
	FeedItemsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_parsed_total",
			Help: "Feed items parsed and normalised per source",
		},
		[]string{"src"},
	)

	// AggregationDuration measures full pipeline duration in seconds
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "End-to-end aggregation pipeline duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

// Enrichment metrics track the AI enrichment tasks
var (
	// EnrichTaskTotal counts enrichment task outcomes by task name
	EnrichTaskTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrich_task_total",
			Help: "Enrichment task executions by task and outcome",
		},
		[]string{"task", "outcome"},
	)

	// EnrichTaskDuration measures enrichment task duration by task name
	EnrichTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enrich_task_duration_seconds",
			Help:    "Enrichment task duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)

	// EnrichCacheTotal counts enrichment cache lookups by outcome (hit/miss)
	EnrichCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrich_cache_total",
			Help: "Enrichment cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

// KV and streaming metrics
var (
	// KVOpsTotal counts KV operations by op and outcome
	KVOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kv_ops_total",
			Help: "KV operations by op and outcome",
		},
		[]string{"op", "outcome"},
	)

	// SSEConnections tracks currently open SSE connections
	SSEConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections",
			Help: "Currently open SSE connections",
		},
	)

	// SSEEventsTotal counts emitted SSE events by type
	SSEEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_events_total",
			Help: "Emitted SSE events by type",
		},
		[]string{"event"},
	)
)

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordFeedFetch records one feed fetch outcome.
func RecordFeedFetch(src string, ok bool, duration time.Duration) {
	FeedFetchTotal.WithLabelValues(src, outcome(ok)).Inc()
	FeedFetchDuration.WithLabelValues(src).Observe(duration.Seconds())
}

// RecordItemsParsed records the number of items a source contributed.
func RecordItemsParsed(src string, count int) {
	FeedItemsParsed.WithLabelValues(src).Add(float64(count))
}

// RecordAggregation records one full pipeline run.
func RecordAggregation(duration time.Duration) {
	AggregationDuration.Observe(duration.Seconds())
}

// RecordEnrichTask records one enrichment task execution.
func RecordEnrichTask(task string, ok bool, duration time.Duration) {
	EnrichTaskTotal.WithLabelValues(task, outcome(ok)).Inc()
	EnrichTaskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// RecordEnrichCache records one enrichment cache lookup.
func RecordEnrichCache(hit bool) {
	if hit {
		EnrichCacheTotal.WithLabelValues("hit").Inc()
	} else {
		EnrichCacheTotal.WithLabelValues("miss").Inc()
	}
}

// RecordKVOp records one KV operation.
func RecordKVOp(op string, ok bool) {
	KVOpsTotal.WithLabelValues(op, outcome(ok)).Inc()
}

// RecordSSEEvent records one emitted SSE event.
func RecordSSEEvent(event string) {
	SSEEventsTotal.WithLabelValues(event).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
