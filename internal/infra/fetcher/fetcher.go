// Package fetcher retrieves raw feed payloads over HTTP with reliability
// patterns: per-attempt timeouts, bounded retry with jitter, and a shared
// circuit breaker. One feed's failure never affects its siblings.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"intelcore/internal/domain/entity"
	"intelcore/internal/observability/metrics"
	"intelcore/internal/resilience/circuitbreaker"
	"intelcore/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

const (
	userAgent    = "intelcore/1.0 (+https://intel.example)"
	acceptHeader = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

	// maxBodyBytes bounds a single feed payload. Feeds past the registry cap
	// would be discarded anyway.
	maxBodyBytes = 4 << 20
)

// Fetcher downloads feed payloads. It holds the process-wide circuit breaker
// for upstream feed hosts.
type Fetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	timeout        time.Duration
}

// Config holds fetcher tuning knobs.
type Config struct {
	// Timeout is the per-attempt timeout. Default 8s.
	Timeout time.Duration
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{Timeout: 8 * time.Second}
}

// New creates a Fetcher with the given HTTP client and configuration.
// A nil client falls back to a plain http.Client; the per-attempt timeout is
// enforced via context, not the client.
func New(client *http.Client, cfg Config) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &Fetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		timeout:        cfg.Timeout,
	}
}

// Fetch downloads the payload of a single feed source. On failure it returns
// the last error after the retry schedule is exhausted.
func (f *Fetcher) Fetch(ctx context.Context, src entity.FeedSource) ([]byte, error) {
	var body []byte
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, src.URL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("src", src.Src),
					slog.String("state", f.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		body = cbResult.([]byte)
		return nil
	})

	if retryErr != nil {
		metrics.RecordFeedFetch(src.Src, false, time.Since(start))
		return nil, retryErr
	}

	metrics.RecordFeedFetch(src.Src, true, time.Since(start))
	return body, nil
}

// doFetch performs a single HTTP attempt without retry or circuit breaker.
func (f *Fetcher) doFetch(ctx context.Context, feedURL string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	// Edge caching hint: feeds are re-fetched at most every few minutes.
	req.Header.Set("Cache-Control", "max-age=180")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Debug("close feed response body", slog.Any("error", cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("feed fetch %s", feedURL),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return body, nil
}
