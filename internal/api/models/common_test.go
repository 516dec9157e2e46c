package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/airtracker/internal/api/models"
)

func TestTimestamp_MarshalUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ts := models.Timestamp(time.Date(2026, 3, 4, 10, 30, 15, 999, ist))

	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-04T05:00:15Z"`, string(out))
}

func TestTimestamp_Unmarshal(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-04T05:00:15Z"`), &ts))
	assert.True(t, ts.Time().Equal(time.Date(2026, 3, 4, 5, 0, 15, 0, time.UTC)))

	before := ts
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.Equal(t, before, ts)

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`1709528415`), &ts))
}

func TestOptionalTimestamp(t *testing.T) {
	assert.Nil(t, models.OptionalTimestamp(time.Time{}))

	now := time.Now()
	ts := models.OptionalTimestamp(now)
	require.NotNil(t, ts)
	assert.True(t, ts.Time().Equal(now))
}
