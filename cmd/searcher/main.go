// Command searcher serves one variant of the abstract search engine over HTTP.
//
// It loads the corpus and the variant's prebuilt artifacts, optionally caches
// results in Redis and publishes search events to Kafka, and exposes
// /api/v1/search plus document, info, variant and cache endpoints.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml] [-variant arxiv-sentences-jina-bm25]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	variantName := flag.String("variant", "", "variant to serve (overrides engine.variant)")
	flag.Parse()

	// a missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *variantName != "" {
		cfg.Engine.Variant = *variantName
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "variant", cfg.Engine.Variant)

	if err := run(cfg); err != nil {
		slog.Error("search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		ms := metrics.NewServer(cfg.Metrics.Port)
		ms.Start()
		defer shutdown(cfg, "metrics server", ms.Shutdown)
	}

	checker := health.NewChecker()
	var ready atomic.Bool
	checker.Register("engine", health.FlagCheck(&ready, "loading artifacts"))

	rt, err := bootstrap.Open(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.Postgres != nil {
		checker.Register("postgres", health.PingCheck(rt.Postgres.Ping))
	}

	eng, err := rt.Engine(ctx, cfg.Engine.Variant)
	if err != nil {
		return err
	}
	c, err := rt.Corpus(ctx, eng.Variant().Dataset)
	if err != nil {
		return err
	}
	ready.Store(true)
	for family, emb := range rt.Embedders() {
		checker.Register("embedder-"+family, func(context.Context) health.ComponentHealth {
			if emb.State() == resilience.StateOpen {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: "circuit open"}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	opts := []handler.Option{handler.WithMetrics(m)}

	if cfg.Redis.Addr != "" {
		rc, err := pkgredis.New(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			defer rc.Close()
			checker.Register("redis", health.PingCheck(rc.Ping))
			opts = append(opts, handler.WithCache(cache.New(rc, cfg.Redis.CacheTTL, m)))
			slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval, m)
		go collector.Run(ctx)
		defer collector.Wait()
		opts = append(opts, handler.WithTracker(collector))
		slog.Info("search events enabled", "topic", cfg.Kafka.Topics.SearchEvents)
	}

	h := handler.New(eng, c, rt.Registry, opts...)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.NewRouter(h, checker, m, cfg.Server.RequestTimeout),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdown(cfg, "http server", server.Shutdown)
	}()

	slog.Info("search service listening", "addr", server.Addr, "variant", eng.Variant().Name)
	err = server.ListenAndServe()
	// stop the collector before the deferred Wait
	stop()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func shutdown(cfg *config.Config, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		slog.Error("shutdown error", "component", name, "error", err)
	}
}
