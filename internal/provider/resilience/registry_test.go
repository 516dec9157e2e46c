package resilience_test

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/airtracker/internal/provider/resilience"
)

type fakeBreaker struct {
	state  gobreaker.State
	counts gobreaker.Counts
}

func (f *fakeBreaker) CircuitBreakerState() gobreaker.State   { return f.state }
func (f *fakeBreaker) CircuitBreakerCounts() gobreaker.Counts { return f.counts }

func TestRegistry_Health(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("openweathermap-air", &fakeBreaker{counts: gobreaker.Counts{Requests: 4, ConsecutiveFailures: 1}})

	assert.Equal(t, 1, registry.Len())

	h := registry.Health("openweathermap-air")
	require.NotNil(t, h)
	assert.Equal(t, "openweathermap-air", h.Name)
	assert.Equal(t, gobreaker.StateClosed, h.CircuitState)
	assert.Equal(t, uint32(4), h.Counts.Requests)
	assert.True(t, h.Healthy())
	assert.Nil(t, h.LastSuccessAt)
	assert.Nil(t, h.LastFailureAt)

	assert.Nil(t, registry.Health("missing"))
}

func TestRegistry_RecordOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("openweathermap-geo", &fakeBreaker{})

	registry.RecordSuccess("openweathermap-geo")
	registry.RecordSuccess("openweathermap-geo")
	registry.RecordFailure("openweathermap-geo", errors.New("upstream error: Service Unavailable"))
	registry.RecordFailure("openweathermap-geo", nil)

	h := registry.Health("openweathermap-geo")
	require.NotNil(t, h)
	assert.Equal(t, uint64(2), h.Successes)
	assert.Equal(t, uint64(2), h.Failures)
	require.NotNil(t, h.LastSuccessAt)
	require.NotNil(t, h.LastFailureAt)
	assert.Equal(t, "upstream error: Service Unavailable", h.LastError)
}

func TestRegistry_RecordUnknownProviderIgnored(t *testing.T) {
	registry := resilience.NewRegistry()

	registry.RecordSuccess("ghost")
	registry.RecordFailure("ghost", errors.New("boom"))

	assert.Equal(t, 0, registry.Len())
	assert.Nil(t, registry.Health("ghost"))
}

func TestRegistry_RegisterReplacesHistory(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("openweathermap-weather", &fakeBreaker{})
	registry.RecordFailure("openweathermap-weather", errors.New("timeout"))

	registry.Register("openweathermap-weather", &fakeBreaker{})

	h := registry.Health("openweathermap-weather")
	require.NotNil(t, h)
	assert.Zero(t, h.Failures)
	assert.Empty(t, h.LastError)
}

func TestRegistry_SnapshotSortedAndUnhealthy(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("openweathermap-weather", &fakeBreaker{state: gobreaker.StateHalfOpen})
	registry.Register("openweathermap-air", &fakeBreaker{state: gobreaker.StateOpen})
	registry.Register("openweathermap-geo", &fakeBreaker{})

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "openweathermap-air", snapshot[0].Name)
	assert.Equal(t, "openweathermap-geo", snapshot[1].Name)
	assert.Equal(t, "openweathermap-weather", snapshot[2].Name)

	assert.Equal(t, []string{"openweathermap-air", "openweathermap-weather"}, registry.Unhealthy())
}

func TestProviderHealth_Condition(t *testing.T) {
	tests := []struct {
		state    gobreaker.State
		expected resilience.Condition
		label    string
	}{
		{gobreaker.StateClosed, resilience.ConditionHealthy, "healthy"},
		{gobreaker.StateHalfOpen, resilience.ConditionRecovering, "recovering"},
		{gobreaker.StateOpen, resilience.ConditionTripped, "tripped"},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			h := &resilience.ProviderHealth{CircuitState: tc.state}
			assert.Equal(t, tc.expected, h.Condition())
			assert.Equal(t, tc.label, h.Condition().String())
			assert.Equal(t, tc.state == gobreaker.StateClosed, h.Healthy())
		})
	}

	assert.Equal(t, "unknown", resilience.Condition(42).String())
}
