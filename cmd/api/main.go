package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/refundlens/api/controllers"
	"github.com/angelmondragon/refundlens/api/routes"
	"github.com/angelmondragon/refundlens/internal/cache"
	"github.com/angelmondragon/refundlens/internal/collector"
	"github.com/angelmondragon/refundlens/internal/cron"
	"github.com/angelmondragon/refundlens/internal/dashboard"
	"github.com/angelmondragon/refundlens/pkg/config"
	"github.com/angelmondragon/refundlens/pkg/logger"
	"github.com/angelmondragon/refundlens/pkg/metrics"
	"github.com/angelmondragon/refundlens/pkg/redis"
	"github.com/angelmondragon/refundlens/pkg/shopify"
)

const (
	serviceName     = "refundlens-api"
	shutdownTimeout = 10 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipelineMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	var (
		store       cache.Store
		pinger      controllers.Pinger
		redisClient *redis.Client
		redisStore  *cache.RedisStore
	)
	store = cache.NewMemoryStore()
	if cfg.Cache.UsesRedis() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		redisStore, err = cache.NewRedisStore(redisClient, cfg.Cache.TTL)
		if err != nil {
			return err
		}
		store = redisStore
		pinger = redisClient
	}

	resultCache, err := cache.New(cache.Params{
		Store:   store,
		Logger:  logg,
		Metrics: pipelineMetrics,
		TTL:     cfg.Cache.TTL,
	})
	if err != nil {
		return err
	}

	shopClient, err := shopify.NewClient(ctx, cfg.Shopify, logg)
	if err != nil {
		return err
	}
	orderCollector, err := collector.New(collector.Params{
		Fetcher:   shopClient,
		Logger:    logg,
		Metrics:   pipelineMetrics,
		PageDelay: cfg.Shopify.PageDelay,
		PageLimit: cfg.Shopify.PageLimit,
	})
	if err != nil {
		return err
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Collector:      orderCollector,
		Cache:          resultCache,
		Logger:         logg,
		LookbackMonths: cfg.Orders.LookbackMonths,
	})
	if err != nil {
		return err
	}

	sweeper, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(cache.NewSweepJob(resultCache, logg)),
		Metrics:  jobMetrics,
		Interval: cfg.Cache.Sweep(),
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, loc, pinger, registry, dashboardService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"cache_backend": cfg.Cache.Backend,
		"cache_ttl":     resultCache.TTL().String(),
		"sweep_every":   sweeper.Interval().String(),
		"timezone":      loc.String(),
	})
	logg.Info(ctx, "starting api server")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := sweeper.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logg.Info(ctx, "api server stopped gracefully")
	return nil
}
