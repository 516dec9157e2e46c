package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/airtracker/internal/report"
)

// Refresher regenerates a city's report, bypassing the cache.
type Refresher interface {
	Refresh(ctx context.Context, city string) (*report.Result, error)
}

// RefreshJob warms the report cache for a fixed set of cities.
type RefreshJob struct {
	config    WarmConfig
	logger    zerolog.Logger
	refresher Refresher

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns        int64
	CitiesRefreshed  int64
	CitiesFailed     int64
	ConsecutiveFails int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config    WarmConfig
	Logger    zerolog.Logger
	Refresher Refresher
}

// NewRefreshJob creates a new cache warming job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:    cfg.Config.withDefaults(),
		logger:    cfg.Logger,
		refresher: cfg.Refresher,
		metrics:   &RefreshMetrics{},
	}
}

// Config returns the effective configuration.
func (j *RefreshJob) Config() WarmConfig {
	return j.config
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalCities int
	Successful  int
	Failed      int
	Errors      []RefreshError
}

// RefreshError records a city that could not be refreshed.
type RefreshError struct {
	City  string
	Error string
}

// Healthy reports whether at least half of the cities were refreshed.
func (r *RefreshResult) Healthy() bool {
	return r.Failed <= r.Successful
}

// Run refreshes every configured city.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	return j.RunCities(ctx, j.config.Cities)
}

// RunCities refreshes the given cities with the job's concurrency and timeout.
func (j *RefreshJob) RunCities(ctx context.Context, cities []string) *RefreshResult {
	cities = uniqueCities(cities)
	startTime := time.Now()
	result := &RefreshResult{
		StartTime:   startTime,
		TotalCities: len(cities),
	}

	j.logger.Info().
		Int("total_cities", result.TotalCities).
		Int("concurrency", j.config.Concurrency).
		Msg("starting cache warm job")

	citiesChan := make(chan string, len(cities))
	resultsChan := make(chan cityResult, len(cities))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, citiesChan, resultsChan)
		}()
	}

	for _, c := range cities {
		citiesChan <- c
	}
	close(citiesChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for cr := range resultsChan {
		if cr.err == nil {
			result.Successful++
			continue
		}
		result.Failed++
		result.Errors = append(result.Errors, RefreshError{City: cr.city, Error: cr.err.Error()})
	}

	// Cities never picked up after cancellation count as failures.
	if skipped := result.TotalCities - result.Successful - result.Failed; skipped > 0 {
		result.Failed += skipped
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	event := j.logger.Info()
	if result.Failed > 0 {
		event = j.logger.Warn()
	}
	event.
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("cache warm job completed")

	return result
}

type cityResult struct {
	city string
	err  error
}

func (j *RefreshJob) refreshWorker(ctx context.Context, cities <-chan string, results chan<- cityResult) {
	for city := range cities {
		select {
		case <-ctx.Done():
			return
		default:
			results <- cityResult{city: city, err: j.refreshCity(ctx, city)}
		}
	}
}

func (j *RefreshJob) refreshCity(ctx context.Context, city string) error {
	if j.refresher == nil {
		return nil
	}

	cityCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	result, err := j.refresher.Refresh(cityCtx, city)
	if err != nil {
		j.logger.Debug().Err(err).Str("city", city).Msg("city refresh failed")
		return err
	}

	event := j.logger.Debug().Str("city", city)
	if result != nil && result.Report != nil {
		event = event.Int("aqi", int(result.Report.AQI))
	}
	event.Msg("city refreshed")
	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.CitiesRefreshed += int64(result.Successful)
	j.metrics.CitiesFailed += int64(result.Failed)
	if result.Healthy() {
		j.metrics.ConsecutiveFails = 0
	} else {
		j.metrics.ConsecutiveFails++
	}
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:        j.metrics.TotalRuns,
		CitiesRefreshed:  j.metrics.CitiesRefreshed,
		CitiesFailed:     j.metrics.CitiesFailed,
		ConsecutiveFails: j.metrics.ConsecutiveFails,
		LastRunAt:        j.metrics.LastRunAt,
		LastRunDuration:  j.metrics.LastRunDuration,
		TotalDuration:    j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"cities_refreshed":  m.CitiesRefreshed,
		"cities_failed":     m.CitiesFailed,
		"consecutive_fails": m.ConsecutiveFails,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
