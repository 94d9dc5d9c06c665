package telemetry

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	r := New()
	r.PacketsDelivered.Inc()
	r.PacketsDropped.WithLabelValues("no_route").Inc()
	r.ActiveAlerts.Set(3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sim_packets_delivered_total")
	assert.Contains(t, body, "sim_conjunction_active_alerts")
}

func TestStageTimerObservesIntoHistogram(t *testing.T) {
	r := New()
	timer := r.StageTimer("physics")
	timer(0.01)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `sim_tick_stage_seconds_bucket{stage="physics"`)
}
