package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"intelcore/internal/enrich"
	hhttp "intelcore/internal/handler/http"
	"intelcore/internal/infra/fetcher"
	"intelcore/internal/infra/kv"
	"intelcore/internal/infra/parser"
	"intelcore/internal/infra/summarizer"
	"intelcore/internal/observability/logging"
	"intelcore/internal/registry"
	"intelcore/internal/score"
	"intelcore/internal/usecase/aggregate"
	"intelcore/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	reg, err := registry.Load()
	if err != nil {
		logger.Error("failed to load feed registry", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("feed registry loaded", slog.Int("sources", reg.Len()))

	store, closeStore := initStore(logger)
	defer closeStore()

	enricher := initEnricher(logger, store)

	agg := aggregate.NewService(
		reg,
		fetcher.New(nil, fetcher.Config{Timeout: config.GetEnvDuration("FETCH_TIMEOUT", 8*time.Second)}),
		parser.New(),
		score.New(),
		store,
	)

	server := hhttp.NewServer(reg, agg, enricher, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", server.Handler(os.Getenv("API_SECRET"), logger))

	runServer(logger, mux)
}

// initStore selects the KV backend: Redis when KV_REDIS_ADDR is set, the
// in-memory store otherwise.
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

// initEnricher wires the enrichment pipeline. Without credentials the
// enricher is nil and the enrichment endpoints respond 503.
func initEnricher(logger *slog.Logger, store kv.Store) hhttp.Enricher {
	cfg, err := enrich.LoadConfig()
	if err != nil {
		logger.Error("failed to load enrichment configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if len(cfg.Tokens) == 0 {
		logger.Warn("enrichment disabled: no credentials configured")
		return nil
	}

	summ, err := summarizer.FromEnv(logger)
	if err != nil {
		logger.Error("failed to configure summary provider", slog.Any("error", err))
		os.Exit(1)
	}

	hf := enrich.NewHFClient(nil, enrich.NewTokenPool(cfg.Tokens), cfg.UseEndpoints)
	logger.Info("enrichment enabled",
		slog.Int("tokens", len(cfg.Tokens)),
		slog.Int("max_enrich", cfg.MaxEnrich),
		slog.Bool("use_endpoints", cfg.UseEndpoints))
	return enrich.New(cfg, hf, store, summ)
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := ":" + config.GetEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
