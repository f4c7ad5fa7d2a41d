// Package metrics exposes viewer counters in the Prometheus text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scanview"

// Metrics holds the collectors and the registry they live in. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	reports     *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	meshBuild   prometheus.Histogram
	batches     prometheus.Gauge
	occupied    prometheus.Gauge
	picks       *prometheus.CounterVec
	connections prometheus.Counter
	connected   prometheus.Gauge
	commands    prometheus.Counter
}

// New registers all collectors in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Scanner reports decoded, by kind.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rejected_total",
			Help:      "Scanner reports rejected as protocol errors, by reason.",
		}, []string{"reason"}),
		meshBuild: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_build_seconds",
			Help:      "Time to rebuild the voxel mesh.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		batches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mesh_batches",
			Help:      "Draw batches in the current mesh.",
		}),
		occupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grid_occupied_voxels",
			Help:      "Non-air voxels in the current scan.",
		}),
		picks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "picks_total",
			Help:      "Pick requests, by outcome.",
		}, []string{"outcome"}),
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scanner_connections_total",
			Help:      "Scanner sessions accepted.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scanner_connected",
			Help:      "1 while a scanner is connected.",
		}),
		commands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_sent_total",
			Help:      "Operator commands delivered to the scanner.",
		}),
	}
	m.registry.MustRegister(
		m.reports, m.rejected, m.meshBuild, m.batches, m.occupied,
		m.picks, m.connections, m.connected, m.commands,
	)
	return m
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveReport counts a decoded report. reason is empty for accepted ones.
func (m *Metrics) ObserveReport(kind, reason string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(kind).Inc()
	if reason != "" {
		m.rejected.WithLabelValues(reason).Inc()
	}
}

// ObserveMesh records a rebuild.
func (m *Metrics) ObserveMesh(d time.Duration, batches, occupied int) {
	if m == nil {
		return
	}
	m.meshBuild.Observe(d.Seconds())
	m.batches.Set(float64(batches))
	m.occupied.Set(float64(occupied))
}

// ObservePick counts a pick.
func (m *Metrics) ObservePick(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.picks.WithLabelValues(outcome).Inc()
}

// ScannerConnected marks a new scanner session.
func (m *Metrics) ScannerConnected() {
	if m == nil {
		return
	}
	m.connections.Inc()
	m.connected.Set(1)
}

// ScannerDisconnected marks the end of the session.
func (m *Metrics) ScannerDisconnected() {
	if m == nil {
		return
	}
	m.connected.Set(0)
}

// CommandSent counts an outbound command.
func (m *Metrics) CommandSent() {
	if m == nil {
		return
	}
	m.commands.Inc()
}
