// Package metrics provides Prometheus metrics collection for the risk
// dashboard: recomputation counts and latency, data ingestion volume,
// and WebSocket client connections, exposed on the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Engine metrics
	RecomputesTotal   prometheus.Counter   // Total number of snapshot recomputations
	RecomputeErrors   prometheus.Counter   // Total number of rejected recomputation requests
	RecomputeDuration prometheus.Histogram // Duration of snapshot recomputations

	// Data metrics
	BarsLoaded prometheus.Counter // Total number of price bars loaded

	// Dashboard metrics
	WSClients          prometheus.Gauge   // Currently connected WebSocket clients
	SnapshotsDelivered prometheus.Counter // Total snapshots delivered over WebSocket
	ChartsRendered     prometheus.Counter // Total chart images rendered
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for
// testing, where the global registry would collide across tests).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		RecomputesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "risk_recomputes_total",
			Help: "Total number of snapshot recomputations",
		}),
		RecomputeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "risk_recompute_errors_total",
			Help: "Total number of rejected recomputation requests",
		}),
		RecomputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "risk_recompute_duration_seconds",
			Help:    "Duration of snapshot recomputations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		BarsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "price_bars_loaded_total",
			Help: "Total number of price bars loaded",
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),
		SnapshotsDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_snapshots_delivered_total",
			Help: "Total snapshots delivered over WebSocket",
		}),
		ChartsRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_charts_rendered_total",
			Help: "Total chart images rendered",
		}),
	}
}
