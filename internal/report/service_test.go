package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/breatheroute/airtracker/internal/advisory"
	"github.com/breatheroute/airtracker/internal/airquality"
	"github.com/breatheroute/airtracker/internal/geocoding"
	"github.com/breatheroute/airtracker/internal/history"
	"github.com/breatheroute/airtracker/internal/report"
	"github.com/breatheroute/airtracker/internal/weather"
)

type fakeGeocoder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeGeocoder) Resolve(_ context.Context, city string) (*geocoding.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &geocoding.Location{Name: "Delhi", Country: "IN", Lat: 28.6517, Lon: 77.2219}, nil
}

type fakePollution struct {
	pollution *airquality.Pollution
	err       error
}

func (f *fakePollution) GetPollution(_ context.Context, lat, lon float64) (*airquality.Pollution, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.pollution
	p.Lat, p.Lon = lat, lon
	return &p, nil
}

type fakeWeather struct {
	err error
}

func (f *fakeWeather) GetCurrentWeather(_ context.Context, lat, lon float64) (*weather.Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &weather.Observation{Lat: lat, Lon: lon, TemperatureC: 31.2, WindSpeedMs: 3.6, HumidityPct: 48}, nil
}

type failingHistory struct{}

func (failingHistory) Record(context.Context, *history.Entry) error {
	return errors.New("database down")
}

func (failingHistory) List(context.Context, history.ListOptions) ([]*history.Entry, error) {
	return nil, nil
}

func moderatePollution() *fakePollution {
	return &fakePollution{pollution: &airquality.Pollution{
		AQI: 3,
		Components: airquality.Components{
			PM25: 30.5,
			PM10: 60,
			CO:   450.6,
			NO2:  20,
		},
	}}
}

type fixture struct {
	geocoder  *fakeGeocoder
	pollution *fakePollution
	weather   *fakeWeather
	history   *history.InMemoryRepository
	now       time.Time
	service   *report.Service
}

func newFixture() *fixture {
	f := &fixture{
		geocoder:  &fakeGeocoder{},
		pollution: moderatePollution(),
		weather:   &fakeWeather{},
		history:   history.NewInMemoryRepository(0),
		now:       time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
	f.service = report.NewService(report.ServiceConfig{
		Geocoder:   f.geocoder,
		AirQuality: f.pollution,
		Weather:    f.weather,
		History:    f.history,
		Logger:     zerolog.Nop(),
		CacheTTL:   time.Minute,
		Now:        func() time.Time { return f.now },
	})
	return f
}

func TestService_Generate(t *testing.T) {
	f := newFixture()

	result, err := f.service.Generate(context.Background(), "delhi")
	require.NoError(t, err)

	assert.Equal(t, "Delhi", result.Report.City)
	assert.Equal(t, advisory.AQIModerate, result.Report.AQI)
	require.NotNil(t, result.Report.Weather)
	assert.Equal(t, 48.0, result.Report.Weather.HumidityPct)
	assert.Len(t, result.Narrative.Blocks, 6)
	assert.Equal(t, f.now, result.GeneratedAt)

	entries, err := f.history.List(context.Background(), history.ListOptions{City: "Delhi"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].AQI)
}

func TestService_Generate_Caches(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.service.Generate(ctx, "Delhi")
	require.NoError(t, err)
	second, err := f.service.Generate(ctx, "  DELHI ")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, f.geocoder.calls)

	f.now = f.now.Add(2 * time.Minute)
	_, err = f.service.Generate(ctx, "delhi")
	require.NoError(t, err)
	assert.Equal(t, 2, f.geocoder.calls)
}

func TestService_Refresh_BypassesCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.Generate(ctx, "Delhi")
	require.NoError(t, err)
	_, err = f.service.Refresh(ctx, "Delhi")
	require.NoError(t, err)

	assert.Equal(t, 2, f.geocoder.calls)
}

func TestService_Generate_WeatherFailureOmitsWeather(t *testing.T) {
	f := newFixture()
	f.weather.err = weather.ErrProviderUnavailable

	result, err := f.service.Generate(context.Background(), "Delhi")
	require.NoError(t, err)

	assert.Nil(t, result.Report.Weather)
	assert.Nil(t, result.Weather)
	kinds := make([]advisory.BlockKind, 0, len(result.Narrative.Blocks))
	for _, b := range result.Narrative.Blocks {
		kinds = append(kinds, b.Kind)
	}
	assert.Equal(t, []advisory.BlockKind{advisory.BlockHeader, advisory.BlockPollutants, advisory.BlockPlants}, kinds)
}

func TestService_Generate_WithoutWeatherSource(t *testing.T) {
	svc := report.NewService(report.ServiceConfig{
		Geocoder:   &fakeGeocoder{},
		AirQuality: moderatePollution(),
		Logger:     zerolog.Nop(),
	})

	result, err := svc.Generate(context.Background(), "Delhi")
	require.NoError(t, err)
	assert.Nil(t, result.Report.Weather)
}

func TestService_Generate_Errors(t *testing.T) {
	t.Run("empty city", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Generate(context.Background(), "   ")
		assert.ErrorIs(t, err, geocoding.ErrEmptyCity)
		assert.Equal(t, 0, f.geocoder.calls)
	})

	t.Run("city not found", func(t *testing.T) {
		f := newFixture()
		f.geocoder.err = geocoding.ErrCityNotFound
		_, err := f.service.Generate(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, geocoding.ErrCityNotFound)
	})

	t.Run("pollution unavailable", func(t *testing.T) {
		f := newFixture()
		f.pollution.err = airquality.ErrProviderUnavailable
		_, err := f.service.Generate(context.Background(), "Delhi")
		assert.ErrorIs(t, err, report.ErrPollutionUnavailable)
		assert.ErrorIs(t, err, airquality.ErrProviderUnavailable)
	})

	t.Run("invalid reading", func(t *testing.T) {
		f := newFixture()
		f.pollution.pollution.Components.NO2 = -1
		_, err := f.service.Generate(context.Background(), "Delhi")
		assert.ErrorIs(t, err, advisory.ErrInvalidReading)

		entries, _ := f.history.List(context.Background(), history.ListOptions{})
		assert.Empty(t, entries)
	})
}

func TestService_Generate_HistoryFailureIsIgnored(t *testing.T) {
	svc := report.NewService(report.ServiceConfig{
		Geocoder:   &fakeGeocoder{},
		AirQuality: moderatePollution(),
		History:    failingHistory{},
		Logger:     zerolog.Nop(),
	})

	result, err := svc.Generate(context.Background(), "Delhi")
	require.NoError(t, err)
	assert.NotNil(t, result.Report)
}

func TestService_Generate_RecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	f := newFixture()
	f.geocoder.err = geocoding.ErrCityNotFound

	_, err := f.service.Generate(context.Background(), "Atlantis")
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "report.Generate", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
