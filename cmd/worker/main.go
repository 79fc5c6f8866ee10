package main

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"intelcore/internal/handler/http/respond"
	"intelcore/internal/infra/fetcher"
	"intelcore/internal/infra/kv"
	"intelcore/internal/infra/parser"
	"intelcore/internal/observability/logging"
	"intelcore/internal/registry"
	"intelcore/internal/score"
	"intelcore/internal/usecase/aggregate"
	"intelcore/pkg/config"
)

// The worker warms the aggregation caches on a fixed schedule so the first
// API request after a quiet period does not pay the full fan-out cost.
func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	reg, err := registry.Load()
	if err != nil {
		logger.Error("failed to load feed registry", slog.Any("error", err))
		os.Exit(1)
	}

	store, closeStore := initStore(logger)
	defer closeStore()

	agg := aggregate.NewService(
		reg,
		fetcher.New(createHTTPClient(), fetcher.Config{Timeout: config.GetEnvDuration("FETCH_TIMEOUT", 8*time.Second)}),
		parser.New(),
		score.New(),
		store,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startMetricsServer(ctx, logger)
	startCronWorker(ctx, logger, agg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("worker shutting down")
	cancel()
}

// initStore selects the KV backend, mirroring the API process.
func initStore(logger *slog.Logger) (kv.Store, func()) {
	addr := os.Getenv("KV_REDIS_ADDR")
	if addr == "" {
		logger.Info("kv: using in-memory store")
		return kv.NewMemoryStore(), func() {}
	}

	store, err := kv.NewRedisStore(context.Background(), addr,
		os.Getenv("KV_REDIS_PASSWORD"), config.GetEnvInt("KV_REDIS_DB", 0))
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("kv: using redis store", slog.String("addr", addr))
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}
}

// createHTTPClient creates an HTTP client with connection pooling.
// TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// startCronWorker schedules the warm-cache job. The schedule is configurable
// but warm parameters are fixed: the job exists to prime caches, not to serve.
func startCronWorker(ctx context.Context, logger *slog.Logger, agg *aggregate.Service) {
	schedule := config.GetEnvString("WARM_SCHEDULE", "@every 10m")

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		runWarmJob(ctx, logger, agg)
	}); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	logger.Info("worker started", slog.String("schedule", schedule))

	// Prime once at startup instead of waiting for the first tick.
	go runWarmJob(ctx, logger, agg)
}

// runWarmJob executes one warm-cache run. Failures are logged and ignored.
func runWarmJob(ctx context.Context, logger *slog.Logger, agg *aggregate.Service) {
	jobCtx, cancel := context.WithTimeout(ctx, config.GetEnvDuration("WARM_TIMEOUT", 5*time.Minute))
	defer cancel()

	logger.Info("warm run started")
	stats, err := agg.Warm(jobCtx)
	if err != nil {
		logger.Error("warm run failed", slog.String("error", respond.SanitizeError(err)))
		return
	}

	logger.Info("warm run completed",
		slog.Int("sources", stats.Sources),
		slog.Int("fetched", stats.Fetched),
		slog.Int("items", stats.Items),
		slog.Int("returned", stats.Returned),
		slog.Duration("duration", stats.Duration),
	)
}
