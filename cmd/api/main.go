package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-ops/api"
	"github.com/angelmondragon/packfinderz-ops/api/routes"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/source"
	"github.com/angelmondragon/packfinderz-ops/pkg/bigquery"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	"github.com/angelmondragon/packfinderz-ops/pkg/db"
	"github.com/angelmondragon/packfinderz-ops/pkg/instance"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
	"github.com/angelmondragon/packfinderz-ops/pkg/metrics"
	"github.com/angelmondragon/packfinderz-ops/pkg/migrate"
	"github.com/angelmondragon/packfinderz-ops/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	var (
		dbPinger    db.Pinger
		redisPinger redis.Pinger
		bqPinger    bigquery.Pinger
		gormDB      *gorm.DB
		bqClient    *bigquery.Client
	)

	if cfg.Source.UsesDB() {
		dbClient, err := db.New(context.Background(), cfg.DB, logg)
		requireResource(context.Background(), logg, "database", err)
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
		requireResource(context.Background(), logg, "dev migrations", err)
		dbPinger = dbClient
		gormDB = dbClient.DB()
	} else {
		bqClient, err = bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
		requireResource(context.Background(), logg, "bigquery client", err)
		defer func() {
			if err := bqClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing bigquery client", err)
			}
		}()
		bqPinger = bqClient
	}

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		requireResource(context.Background(), logg, "redis", err)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
	}

	src, err := source.FromConfig(cfg, gormDB, bqClient, logg)
	requireResource(context.Background(), logg, "record source", err)

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Source:        src,
		Report:        cfg.Report,
		SourceTimeout: cfg.Source.Timeout,
		Metrics:       metrics.NewReportMetrics(prometheus.DefaultRegisterer),
		Logger:        logg,
	})
	requireResource(context.Background(), logg, "analytics service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"source":   cfg.Source.Kind,
		"instance": instance.ID(),
	})
	logg.Info(ctx, "starting api server")

	router := routes.NewRouter(cfg, logg, dbPinger, redisPinger, bqPinger, analyticsService, prometheus.DefaultGatherer)
	if err := api.Serve(ctx, api.NewServer(addr, router), logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		stop()
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
