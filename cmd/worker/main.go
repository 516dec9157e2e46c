// Package main provides the cache warmer: it refreshes reports for the
// configured cities on a schedule and on Pub/Sub triggers.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/breatheroute/airtracker/internal/api/models"
	"github.com/breatheroute/airtracker/internal/api/response"
	"github.com/breatheroute/airtracker/internal/app"
	"github.com/breatheroute/airtracker/internal/config"
	"github.com/breatheroute/airtracker/internal/telemetry"
	"github.com/breatheroute/airtracker/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airtracker-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting air quality cache warmer")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	reportMetrics, err := telemetry.NewReportMetrics(otel.Meter(serviceName))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize report metrics")
	}

	repo, _, closeHistory, err := app.OpenHistory(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open history store")
	}
	defer closeHistory()

	stack := app.Build(app.Options{
		Config:  cfg,
		Logger:  log,
		Metrics: reportMetrics,
		History: repo,
	})

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.WarmConfig{
			Cities:      cfg.WarmCities,
			Concurrency: cfg.WarmConcurrency,
			Interval:    cfg.WarmInterval,
		},
		Logger:    log.With().Str("component", "warmer").Logger(),
		Refresher: stack.Reports,
	})

	scheduler := worker.NewScheduler(job, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer scheduler.Stop()

	if cfg.PubSubProjectID != "" && cfg.PubSubSubscriber != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.PubSubSubscriber,
			RefreshJob:       job,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured, running on schedule only")
	}

	// Health endpoint for the container platform.
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := models.HealthStatusOK
		if job.GetMetrics().ConsecutiveFails > 2 {
			status = models.HealthStatusDegraded
		}
		response.JSON(w, r, http.StatusOK, models.Health{
			Status:  status,
			Time:    models.Timestamp(time.Now()),
			Details: map[string]interface{}{"version": Version},
		})
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		snapshot := job.MetricsSnapshot()
		air := stack.AirQuality.CacheStatus()
		wx := stack.Weather.CacheStats()
		snapshot["air_quality_cache_entries"] = air.Entries
		snapshot["air_quality_cache_fresh"] = air.FreshEntries
		snapshot["weather_cache_entries"] = wx.Entries
		snapshot["weather_cache_fresh"] = wx.FreshEntries
		response.JSON(w, r, http.StatusOK, snapshot)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
