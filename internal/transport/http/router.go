package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketpulse/internal/config"
	"marketpulse/internal/middleware"
	"marketpulse/internal/services"
)

// NewRouter assembles the middleware stack and mounts every handler.
func NewRouter(cfg *config.Config, analysis *services.AnalysisService, version string, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.NewMetrics("marketpulse").Handler)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger).Handler)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout, logger))

	NewHealthHandler(version).RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		NewAnalysisHandler(analysis, logger).RegisterRoutes(r)
	})

	return r
}
