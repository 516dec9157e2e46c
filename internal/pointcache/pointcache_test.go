package pointcache_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/airtracker/internal/pointcache"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCache(t *testing.T, stale time.Duration) (*pointcache.Cache[string], *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := pointcache.New[string](pointcache.Config{
		Name:     "test",
		TTL:      5 * time.Minute,
		StaleTTL: stale,
		GridSize: 0.05,
		Now:      clk.Now,
		Logger:   zerolog.Nop(),
	})
	return c, clk
}

func counting(calls *atomic.Int32, value string, err error) pointcache.FetchFunc[string] {
	return func(context.Context) (string, error) {
		calls.Add(1)
		return value, err
	}
}

func TestGet_CachesWithinTTL(t *testing.T) {
	c, clk := newCache(t, 0)
	var calls atomic.Int32

	v, err := c.Get(context.Background(), 28.65, 77.22, counting(&calls, "delhi", nil))
	require.NoError(t, err)
	assert.Equal(t, "delhi", v)

	clk.Advance(4 * time.Minute)
	v, err = c.Get(context.Background(), 28.65, 77.22, counting(&calls, "other", nil))
	require.NoError(t, err)
	assert.Equal(t, "delhi", v)
	assert.Equal(t, int32(1), calls.Load())

	clk.Advance(2 * time.Minute)
	v, err = c.Get(context.Background(), 28.65, 77.22, counting(&calls, "refreshed", nil))
	require.NoError(t, err)
	assert.Equal(t, "refreshed", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_NearbyPointsShareCell(t *testing.T) {
	c, _ := newCache(t, 0)
	var calls atomic.Int32

	_, err := c.Get(context.Background(), 28.651, 77.221, counting(&calls, "a", nil))
	require.NoError(t, err)
	v, err := c.Get(context.Background(), 28.659, 77.229, counting(&calls, "b", nil))
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, err = c.Get(context.Background(), 19.07, 72.87, counting(&calls, "mumbai", nil))
	require.NoError(t, err)
	assert.Equal(t, "mumbai", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_ServesStaleOnError(t *testing.T) {
	c, clk := newCache(t, time.Hour)
	var calls atomic.Int32
	boom := errors.New("upstream down")

	_, err := c.Get(context.Background(), 51.5, -0.12, counting(&calls, "london", nil))
	require.NoError(t, err)

	clk.Advance(30 * time.Minute)
	v, err := c.Get(context.Background(), 51.5, -0.12, counting(&calls, "", boom))
	require.NoError(t, err)
	assert.Equal(t, "london", v)

	clk.Advance(31 * time.Minute)
	_, err = c.Get(context.Background(), 51.5, -0.12, counting(&calls, "", boom))
	assert.ErrorIs(t, err, boom)
}

func TestGet_NoStaleFallbackWhenDisabled(t *testing.T) {
	c, clk := newCache(t, 0)
	var calls atomic.Int32
	boom := errors.New("upstream down")

	_, err := c.Get(context.Background(), 51.5, -0.12, counting(&calls, "london", nil))
	require.NoError(t, err)

	clk.Advance(6 * time.Minute)
	_, err = c.Get(context.Background(), 51.5, -0.12, counting(&calls, "", boom))
	assert.ErrorIs(t, err, boom)
}

func TestGet_CollapsesConcurrentMisses(t *testing.T) {
	c, _ := newCache(t, 0)
	var calls atomic.Int32
	release := make(chan struct{})

	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "beijing", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), 39.9, 116.4, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "beijing", v)
	}
}

func TestGet_CallerCancellation(t *testing.T) {
	c, _ := newCache(t, 0)
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, 13.08, 80.27, func(context.Context) (string, error) {
		<-release
		return "chennai", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidateAndStats(t *testing.T) {
	c, clk := newCache(t, time.Hour)
	var calls atomic.Int32

	assert.Equal(t, pointcache.Stats{}, c.Stats())

	_, err := c.Get(context.Background(), 28.65, 77.22, counting(&calls, "delhi", nil))
	require.NoError(t, err)
	fetchedAt := clk.Now()
	clk.Advance(time.Minute)
	_, err = c.Get(context.Background(), 19.07, 72.87, counting(&calls, "mumbai", nil))
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 2, stats.FreshEntries)
	assert.Equal(t, fetchedAt.Add(time.Minute), stats.LastFetchedAt)

	clk.Advance(4*time.Minute + 30*time.Second)
	stats = c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.FreshEntries)

	c.Invalidate()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		valid    bool
	}{
		{28.65, 77.22, true},
		{-90, -180, true},
		{90, 180, true},
		{90.1, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.valid, pointcache.ValidCoordinates(tc.lat, tc.lon), "%v,%v", tc.lat, tc.lon)
	}
}
