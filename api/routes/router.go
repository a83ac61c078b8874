package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kitstore/uniform-stock-backend/api/controllers"
	"github.com/kitstore/uniform-stock-backend/api/middleware"
	stocksvc "github.com/kitstore/uniform-stock-backend/internal/stock"
	uniformsvc "github.com/kitstore/uniform-stock-backend/internal/uniforms"
	"github.com/kitstore/uniform-stock-backend/pkg/config"
	"github.com/kitstore/uniform-stock-backend/pkg/db"
	"github.com/kitstore/uniform-stock-backend/pkg/logger"
	"github.com/kitstore/uniform-stock-backend/pkg/metrics"
	"github.com/kitstore/uniform-stock-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	promRegistry *prometheus.Registry,
	reconcileMetrics *metrics.ReconcileMetrics,
	stockService stocksvc.Service,
	uniformService uniformsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	updatePolicy := middleware.NewUpdateRateLimitPolicy(
		"uniform-update",
		cfg.RateLimit.UpdateWindow,
		cfg.RateLimit.UpdateIPLimit,
		cfg.RateLimit.UpdateMemberLimit,
	)

	var idemStore redis.IdempotencyStore
	var limiterStore middleware.RateLimiterStore
	var redisPinger redis.Pinger
	if redisClient != nil {
		idemStore = redisClient
		limiterStore = redisClient
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisPinger))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/members/{memberID}/uniforms", func(r chi.Router) {
			r.Use(middleware.MemberContext(logg))
			r.Get("/", controllers.GetMemberUniform(uniformService, logg))
			r.With(
				middleware.UpdateRateLimit(updatePolicy, limiterStore, logg),
				middleware.Idempotency(idemStore, reconcileMetrics, logg, cfg.Reconcile.IdempotencyTTL),
			).Put("/", controllers.UpdateMemberUniform(uniformService, logg))
			r.Delete("/", controllers.DeleteMemberUniform(uniformService, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", controllers.ListStockRecords(stockService, logg))
			r.Get("/low", controllers.ListLowStockRecords(stockService, logg))
			r.Post("/", controllers.CreateStockRecord(stockService, logg))
			r.Route("/{stockID}", func(r chi.Router) {
				r.Get("/", controllers.GetStockRecord(stockService, logg))
				r.Put("/", controllers.UpdateStockRecord(stockService, logg))
				r.Delete("/", controllers.DeleteStockRecord(stockService, logg))
			})
		})
	})

	return r
}
