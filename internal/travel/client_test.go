package travel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dispatch-cli/internal/config"
	"github.com/sells-group/dispatch-cli/internal/resilience"
)

func newTestAPIClient(baseURL string) *APIClient {
	c := NewAPIClient(config.TravelConfig{
		APIBaseURL:        baseURL,
		APIKey:            "test-key",
		RequestsPerSecond: 1000,
		TimeoutSecs:       2,
	})
	c.retry = resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		JitterFraction: 0,
	}
	return c
}

func TestAPIClient_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/route", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "30.267200", r.URL.Query().Get("origin_lat"))
		assert.Equal(t, "30.508300", r.URL.Query().Get("dest_lat"))
		_, _ = w.Write([]byte(`{"minutes": 17.5}`))
	}))
	defer srv.Close()

	minutes, err := newTestAPIClient(srv.URL).Route(context.Background(), originPt, destPt)
	require.NoError(t, err)
	assert.InDelta(t, 17.5, minutes, 0.001)
}

func TestAPIClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"minutes": 9}`))
	}))
	defer srv.Close()

	minutes, err := newTestAPIClient(srv.URL).Route(context.Background(), originPt, destPt)
	require.NoError(t, err)
	assert.InDelta(t, 9, minutes, 0.001)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAPIClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestAPIClient(srv.URL).Route(context.Background(), originPt, destPt)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAPIClient_NegativeMinutesRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"minutes": -4}`))
	}))
	defer srv.Close()

	_, err := newTestAPIClient(srv.URL).Route(context.Background(), originPt, destPt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative minutes")
}

func TestAPIClient_Unconfigured(t *testing.T) {
	c := NewAPIClient(config.TravelConfig{})
	assert.False(t, c.Available())

	_, err := c.Route(context.Background(), originPt, destPt)
	require.Error(t, err)
}
