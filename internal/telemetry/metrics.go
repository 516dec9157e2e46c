package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReportMetrics holds the instruments recorded while generating air quality
// reports. A nil *ReportMetrics records nothing.
type ReportMetrics struct {
	reports         metric.Int64Counter
	readings        metric.Int64Counter
	providerLatency metric.Float64Histogram
	providerCalls   metric.Int64Counter
	cacheLookups    metric.Int64Counter
}

// NewReportMetrics creates report instruments on the given meter.
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	var m ReportMetrics
	var errs [5]error

	m.reports, errs[0] = meter.Int64Counter("airtracker.report.total",
		metric.WithDescription("Reports generated, by outcome"),
		metric.WithUnit("{report}"),
	)
	m.readings, errs[1] = meter.Int64Counter("airtracker.reading.classified",
		metric.WithDescription("Pollutant readings classified, by pollutant and band"),
		metric.WithUnit("{reading}"),
	)
	m.providerLatency, errs[2] = meter.Float64Histogram("provider.request.duration",
		metric.WithDescription("Duration of OpenWeatherMap calls, including cache hits"),
		metric.WithUnit("s"),
	)
	m.providerCalls, errs[3] = meter.Int64Counter("provider.request.total",
		metric.WithDescription("OpenWeatherMap calls, by operation and error"),
		metric.WithUnit("{request}"),
	)
	m.cacheLookups, errs[4] = meter.Int64Counter("airtracker.report.cache.lookups",
		metric.WithDescription("Report cache lookups, by result"),
		metric.WithUnit("{lookup}"),
	)

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordReport counts a report outcome ("ok", "not_found", "invalid", "error").
func (m *ReportMetrics) RecordReport(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.reports.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordReading counts one classified reading.
func (m *ReportMetrics) RecordReading(ctx context.Context, pollutant, band string) {
	if m == nil {
		return
	}
	m.readings.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pollutant", pollutant),
		attribute.String("band", band),
	))
}

// RecordProviderRequest records latency and outcome of an upstream call.
func (m *ReportMetrics) RecordProviderRequest(ctx context.Context, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider.operation", operation),
		attribute.Bool("error", err != nil),
	)
	m.providerLatency.Record(ctx, duration.Seconds(), attrs)
	m.providerCalls.Add(ctx, 1, attrs)
}

// RecordCacheLookup counts a report cache lookup as a hit or a miss.
func (m *ReportMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
