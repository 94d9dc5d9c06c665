// Package telemetry wires github.com/prometheus/client_golang into the
// engine, grounded on the 99souls-ariadne crawl engine's
// PrometheusProvider (engine/telemetry/metrics/prometheus.go): a
// registry owned by the process, instruments created once and reused
// by name, and an http.Handler for /metrics. Scaled down from that
// provider's pluggable-backend abstraction to the concrete set of
// instruments this engine's scheduler, comms, conjunction, and IADS
// stages need.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric the tick pipeline and bridge emit.
type Registry struct {
	reg *prometheus.Registry

	TickStageSeconds *prometheus.HistogramVec
	PacketsDelivered prometheus.Counter
	PacketsDropped   *prometheus.CounterVec
	ActiveAlerts     prometheus.Gauge
	Engagements      *prometheus.CounterVec
}

// New constructs a Registry with every instrument registered.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		TickStageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sim_tick_stage_seconds",
			Help:    "wall-clock duration of each tick-scheduler stage",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		PacketsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_packets_delivered_total",
			Help: "packets that reached their destination",
		}),
		PacketsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sim_packets_dropped_total",
			Help: "packets dropped, labeled by reason",
		}, []string{"reason"}),
		ActiveAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_conjunction_active_alerts",
			Help: "conjunction alerts ranked this tick",
		}),
		Engagements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sim_iads_engagements_total",
			Help: "IADS engagements, labeled by terminal outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		r.TickStageSeconds,
		r.PacketsDelivered,
		r.PacketsDropped,
		r.ActiveAlerts,
		r.Engagements,
	)
	return r
}

// Handler exposes the registry on /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// StageTimer returns a func that observes elapsed seconds into
// TickStageSeconds{stage} when called; mirrors promTimer's
// observe-on-call shape from the crawl engine's telemetry package.
func (r *Registry) StageTimer(stage string) func(seconds float64) {
	return func(seconds float64) {
		r.TickStageSeconds.WithLabelValues(stage).Observe(seconds)
	}
}
