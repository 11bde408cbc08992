package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/source"
	"github.com/angelmondragon/packfinderz-ops/internal/cron"
	"github.com/angelmondragon/packfinderz-ops/internal/stores"
	"github.com/angelmondragon/packfinderz-ops/pkg/bigquery"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	"github.com/angelmondragon/packfinderz-ops/pkg/db"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
	"github.com/angelmondragon/packfinderz-ops/pkg/metrics"
	"github.com/angelmondragon/packfinderz-ops/pkg/migrate"
	"github.com/angelmondragon/packfinderz-ops/pkg/redis"
)

const lockName = "operations-digest"

func main() {
	once := flag.Bool("once", false, "run a single digest cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	// the store list always comes from postgres, whatever the report source
	if err := cfg.DB.EnsureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		logg.Error(context.Background(), "database config incomplete", err)
		os.Exit(1)
	}
	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var bqClient *bigquery.Client
	if !cfg.Source.UsesDB() {
		bqClient, err = bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap bigquery", err)
			os.Exit(1)
		}
		defer func() {
			if err := bqClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing bigquery client", err)
			}
		}()
	}

	src, err := source.FromConfig(cfg, dbClient.DB(), bqClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create record source", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Source:        src,
		Report:        cfg.Report,
		SourceTimeout: cfg.Source.Timeout,
		Metrics:       metrics.NewReportMetrics(prometheus.DefaultRegisterer),
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	digestJob, err := cron.NewDigestJob(cron.DigestJobParams{
		Logger:    logg,
		Stores:    stores.NewRepository(dbClient.DB()),
		Reports:   analyticsService,
		Snapshots: redisClient,
		Metrics:   metrics.NewDigestMetrics(prometheus.DefaultRegisterer),
		Config:    cfg.Digest,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create digest job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockKey(cfg.App.Env)), cfg.Digest.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(digestJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Digest.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Digest.Interval.String(),
	})

	if *once {
		logg.Info(ctx, "running single digest cycle")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "digest cycle failed", err)
			stop()
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		stop()
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("%s:%s", lockName, env)
}
