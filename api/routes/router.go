package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/refundlens/api/controllers"
	"github.com/angelmondragon/refundlens/api/middleware"
	"github.com/angelmondragon/refundlens/api/responses"
	"github.com/angelmondragon/refundlens/internal/dashboard"
	"github.com/angelmondragon/refundlens/pkg/config"
	pkgerrors "github.com/angelmondragon/refundlens/pkg/errors"
	"github.com/angelmondragon/refundlens/pkg/logger"
)

// NewRouter wires the dashboard API. redisClient may be nil when the cache is
// in memory; gatherer may be nil to serve the default registry.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	loc *time.Location,
	redisClient controllers.Pinger,
	gatherer prometheus.Gatherer,
	dashboardService dashboard.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, redisClient))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/orders", controllers.Orders(dashboardService, loc, logg))
		r.Get("/orders/export", controllers.ExportOrders(dashboardService, loc, logg))
		r.Get("/analytics", controllers.Analytics(dashboardService, loc, logg))
	})

	return r
}
