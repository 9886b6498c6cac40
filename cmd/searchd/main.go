// Command searchd runs the in-memory text search engine behind an HTTP
// API, with optional Redis result caching and Kafka-fed analytics.
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
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/requests"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/service/cache"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/service/handler"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	defaultPolicy, err := search.ParsePolicy(cfg.Search.DefaultPolicy)
	if err != nil {
		slog.Error("invalid default policy", "policy", cfg.Search.DefaultPolicy, "error", err)
		os.Exit(1)
	}
	engine, err := search.New(cfg.Search.StopWords)
	if err != nil {
		slog.Error("failed to create search server", "error", err)
		os.Exit(1)
	}
	window := requests.NewWindow(engine)
	slog.Info("search engine ready",
		"stop_words", len(cfg.Search.StopWords),
		"default_policy", defaultPolicy.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Search.CacheEnabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis)
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	var agg *analytics.Aggregator
	var analyticsH *analytics.Handler
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.AnalyticsTopic)
		defer producer.Close()
		collector = analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		collector.Start(ctx)
		defer collector.Close()

		agg = analytics.NewAggregator(nil)
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.AnalyticsTopic, analytics.HandleEvent(agg))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("analytics consumer error", "error", err)
			}
		}()
		analyticsH = analytics.NewHandler(agg)
		slog.Info("analytics pipeline started", "topic", cfg.Kafka.AnalyticsTopic)

		if pgClient, err := postgres.New(cfg.Postgres); err != nil {
			slog.Warn("postgres unavailable, snapshot persistence disabled", "error", err)
		} else {
			defer pgClient.Close()
			store := aggregator.NewStore(pgClient)
			store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
		}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents", engine.DocumentCount()),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(engine, window, queryCache, collector, m, defaultPolicy)
	mux := http.NewServeMux()
	h.Register(mux)
	if analyticsH != nil {
		mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	}
	if m != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}
