package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Zipfit/internal/catalog"
	"github.com/MikeSquared-Agency/Zipfit/internal/config"
	"github.com/MikeSquared-Agency/Zipfit/internal/hermes"
	"github.com/MikeSquared-Agency/Zipfit/internal/metrics"
	"github.com/MikeSquared-Agency/Zipfit/internal/narrator"
	"github.com/MikeSquared-Agency/Zipfit/internal/scoring"
	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

func NewRouter(s store.Store, h hermes.Client, c *catalog.Catalog, e *scoring.Engine, n narrator.Narrator, m *metrics.Metrics, cfg config.ServerConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	rankings := NewRankingsHandler(s, h, c, e, n, m, logger)
	localities := NewLocalitiesHandler(s, h, c, logger)
	overrides := NewOverridesHandler(s, h, c, logger)
	admin := NewAdminHandler(c, h, e)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rankings", rankings.Create)
		r.Get("/rankings/{id}", rankings.Get)

		r.Get("/localities", localities.List)
		r.Get("/localities/{zip}", localities.Get)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Put("/localities/{zip}", localities.Put)
			r.Delete("/localities/{zip}", localities.Delete)

			r.Get("/overrides", overrides.List)
			r.Put("/overrides/{zip}", overrides.Put)
			r.Delete("/overrides/{zip}", overrides.Delete)

			r.Get("/catalog", admin.Status)
			r.Post("/catalog/refresh", admin.Refresh)
		})
	})

	return r
}

// NewMetricsRouter serves /health and the Prometheus /metrics endpoint on the
// metrics port.
func NewMetricsRouter(c *catalog.Catalog) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"localities": c.Size(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
