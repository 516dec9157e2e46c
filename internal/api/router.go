// Package api provides the HTTP API for the air quality tracker.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/breatheroute/airtracker/internal/api/handler"
	"github.com/breatheroute/airtracker/internal/api/middleware"
	"github.com/breatheroute/airtracker/internal/narration"
	"github.com/breatheroute/airtracker/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	Reports   handler.ReportGenerator
	History   handler.HistoryLister
	Narration *narration.Tracker
	Registry  *resilience.Registry

	// Subsystems are pinged by the readiness check (e.g. the database pool).
	Subsystems map[string]handler.Pinger

	// ReportRateLimit is the per-IP report budget per minute (default 30).
	ReportRateLimit int
	RequireTLS      bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing()) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger, "/v1/ops/health", "/v1/ops/ready"))
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS, "/v1/ops/health", "/v1/ops/ready"))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:    cfg.Version,
		BuildTime:  cfg.BuildTime,
		Registry:   cfg.Registry,
		Subsystems: cfg.Subsystems,
	})
	metadataHandler := handler.NewMetadataHandler()
	airbotHandler := handler.NewAirbotHandler()

	reportRateLimit := middleware.RateLimitByIP(middleware.PerMinute(cfg.ReportRateLimit))
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/enums", metadataHandler.GetEnums)
			r.Get("/thresholds", metadataHandler.GetThresholds)
		})

		// Reports hit upstream providers on a cache miss
		if cfg.Reports != nil {
			reportHandler := handler.NewReportHandler(cfg.Reports, cfg.Logger)
			r.With(reportRateLimit).Get("/reports", reportHandler.GetReport)
		}

		if cfg.Narration != nil {
			narrationHandler := handler.NewNarrationHandler(cfg.Narration)
			r.With(standardRateLimit, middleware.RequireJSON).Post("/narrations:claim", narrationHandler.Claim)
			r.With(standardRateLimit).Delete("/narrations/{sessionId}", narrationHandler.Reset)
		}

		r.With(standardRateLimit).Get("/airbot", airbotHandler.Ask)

		if cfg.History != nil {
			historyHandler := handler.NewHistoryHandler(cfg.History, cfg.Logger)
			r.With(standardRateLimit).Get("/history", historyHandler.ListHistory)
		}
	})

	return r
}
