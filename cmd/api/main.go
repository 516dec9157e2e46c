// Package main provides the entrypoint for the air quality tracker API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/breatheroute/airtracker/internal/api"
	"github.com/breatheroute/airtracker/internal/api/handler"
	"github.com/breatheroute/airtracker/internal/api/middleware"
	"github.com/breatheroute/airtracker/internal/app"
	"github.com/breatheroute/airtracker/internal/config"
	"github.com/breatheroute/airtracker/internal/narration"
	"github.com/breatheroute/airtracker/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airtracker-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting air quality tracker API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.DotEnvLoaded {
		log.Debug().Msg("loaded .env file")
	}

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Insecure:       cfg.OTLPInsecure,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	meter := otel.Meter(serviceName)
	httpMetrics, err := middleware.NewMetrics(meter)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	reportMetrics, err := telemetry.NewReportMetrics(meter)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize report metrics")
		os.Exit(1)
	}

	repo, dbPinger, closeHistory, err := app.OpenHistory(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open history store")
	}
	defer closeHistory()

	subsystems := map[string]handler.Pinger{}
	if dbPinger != nil {
		subsystems["postgres"] = dbPinger
	}

	stack := app.Build(app.Options{
		Config:  cfg,
		Logger:  log,
		Metrics: reportMetrics,
		History: repo,
	})
	log.Info().
		Int("providers", stack.Registry.Len()).
		Msg("report service initialized")

	tracker := narration.NewTracker(narration.TrackerConfig{})
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, tracker, log)

	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		Metrics:         httpMetrics,
		Reports:         stack.Reports,
		History:         repo,
		Narration:       tracker,
		Registry:        stack.Registry,
		Subsystems:      subsystems,
		ReportRateLimit: cfg.RateLimitPerMinute,
		RequireTLS:      cfg.RequireTLS,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// sweepSessions drops idle narration sessions until ctx is cancelled.
func sweepSessions(ctx context.Context, tracker *narration.Tracker, log zerolog.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := tracker.Sweep(); n > 0 {
				log.Debug().Int("dropped", n).Int("active", tracker.Len()).Msg("swept idle narration sessions")
			}
		}
	}
}
