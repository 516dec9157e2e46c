package owmapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/airtracker/internal/provider/owmapi"
)

type payload struct {
	Name string `json:"name"`
}

func TestAPI_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "28.651700", r.URL.Query().Get("lat"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Delhi"}`))
	}))
	defer server.Close()

	api := owmapi.New(owmapi.Config{APIKey: "secret", BaseURL: server.URL + "/data/2.5/", HTTPClient: http.DefaultClient}, "")

	q := owmapi.Coordinates(28.6517, 77.2219)
	q.Set("units", "metric")

	var out payload
	require.NoError(t, api.Get(context.Background(), "weather", q, &out))
	assert.Equal(t, "Delhi", out.Name)
}

func TestAPI_Get_DefaultBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/1.0/direct", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	api := owmapi.New(owmapi.Config{HTTPClient: http.DefaultClient}, server.URL+"/geo/1.0")

	var out []payload
	require.NoError(t, api.Get(context.Background(), "direct", url.Values{"q": {"Delhi"}}, &out))
	assert.Empty(t, out)
}

func TestAPI_Get_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	api := owmapi.New(owmapi.Config{BaseURL: server.URL, HTTPClient: http.DefaultClient}, "")

	err := api.Get(context.Background(), "air_pollution", nil, &payload{})
	assert.ErrorIs(t, err, owmapi.ErrUnexpectedStatus)

	var statusErr *owmapi.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "unexpected status code: 401 from air_pollution endpoint", err.Error())
}

func TestAPI_Get_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	api := owmapi.New(owmapi.Config{BaseURL: server.URL, HTTPClient: http.DefaultClient}, "")

	err := api.Get(context.Background(), "weather", nil, &payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode weather response")
}

func TestAPI_Get_DefaultResilientClient(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"name":"London"}`))
	}))
	defer server.Close()

	api := owmapi.New(owmapi.Config{BaseURL: server.URL, Provider: "test"}, "")

	var out payload
	require.NoError(t, api.Get(context.Background(), "weather", nil, &out))
	assert.Equal(t, "London", out.Name)
	assert.Equal(t, 2, calls)
}
