package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dispatch-cli/internal/config"
)

func TestAlerter_Evaluate_NoAlerts(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{PendingBacklogThreshold: 50})

	snap := &Snapshot{
		JobsTotal:   40,
		JobsPending: 10,
		Crews:       3,
	}

	alerts := a.Evaluate(snap)
	assert.Empty(t, alerts)
}

func TestAlerter_Evaluate_PendingBacklog(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{PendingBacklogThreshold: 50})

	snap := &Snapshot{
		JobsPending: 75,
		Crews:       3,
	}

	alerts := a.Evaluate(snap)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertPendingBacklog, alerts[0].Type)
	assert.Equal(t, "high", alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "75 job requests pending")
}

func TestAlerter_Evaluate_BacklogDisabledByZeroThreshold(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{PendingBacklogThreshold: 0})

	alerts := a.Evaluate(&Snapshot{JobsPending: 500, Crews: 1})
	assert.Empty(t, alerts)
}

func TestAlerter_Evaluate_NoCrews(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{PendingBacklogThreshold: 50})

	snap := &Snapshot{
		JobsPending: 3,
		Crews:       0,
	}

	alerts := a.Evaluate(snap)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertNoCrews, alerts[0].Type)
	assert.Contains(t, alerts[0].Message, "no crews are registered")
}

func TestAlerter_Evaluate_MultipleAlerts(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{PendingBacklogThreshold: 10})

	snap := &Snapshot{
		JobsPending: 20,
		Crews:       0,
	}

	alerts := a.Evaluate(snap)
	assert.Len(t, alerts, 2)

	types := make(map[AlertType]bool)
	for _, alert := range alerts {
		types[alert.Type] = true
	}
	assert.True(t, types[AlertPendingBacklog])
	assert.True(t, types[AlertNoCrews])
}

func TestAlerter_SendAlerts_Webhook(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var alert Alert
		require.NoError(t, json.NewDecoder(r.Body).Decode(&alert))
		assert.Equal(t, AlertNoCrews, alert.Type)
	}))
	defer srv.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: srv.URL})
	sent := a.SendAlerts(context.Background(), []Alert{
		{Type: AlertNoCrews, Severity: "high", Message: "test"},
	})

	assert.Equal(t, 1, sent)
	assert.Equal(t, int32(1), received.Load())
}

func TestAlerter_SendAlerts_NoWebhookConfigured(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{})
	sent := a.SendAlerts(context.Background(), []Alert{
		{Type: AlertNoCrews, Severity: "high", Message: "test"},
	})
	assert.Zero(t, sent)
}

func TestAlerter_SendAlerts_WebhookErrorCounted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: srv.URL})
	sent := a.SendAlerts(context.Background(), []Alert{
		{Type: AlertPendingBacklog, Severity: "high", Message: "one"},
		{Type: AlertNoCrews, Severity: "high", Message: "two"},
	})
	assert.Zero(t, sent)
}
