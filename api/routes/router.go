package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/packfinderz-ops/api/controllers"
	analyticscontrollers "github.com/angelmondragon/packfinderz-ops/api/controllers/analytics"
	"github.com/angelmondragon/packfinderz-ops/api/middleware"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics"
	"github.com/angelmondragon/packfinderz-ops/pkg/bigquery"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	"github.com/angelmondragon/packfinderz-ops/pkg/db"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
	"github.com/angelmondragon/packfinderz-ops/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redis.Pinger,
	bigqueryClient bigquery.Pinger,
	analyticsService analytics.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["db"] = dbP
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	if bigqueryClient != nil {
		deps["bigquery"] = bigqueryClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.StoreHeaders(logg),
			middleware.StoreContext(logg),
		)
		r.Get("/analytics/operations", analyticscontrollers.OperationsReport(analyticsService, cfg.Report, logg))
	})

	return r
}
