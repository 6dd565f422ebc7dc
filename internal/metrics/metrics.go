// Package metrics owns the Prometheus collectors shared by the relay's
// upstream client, export directory and HTTP surface.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dgallion1/meetnotes/internal/doctree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meetnotes"

// Metrics holds a private registry so tests can build as many as they need.
type Metrics struct {
	Registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	Renders          *prometheus.CounterVec
	Exports          *prometheus.CounterVec
	ExportBytes      *prometheus.CounterVec
	ExportFiles      prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Calls to the notes service by endpoint and status.",
		}, []string{"endpoint", "status"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of notes service calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Document and transcript renders by input format and outcome.",
		}, []string{"format", "outcome"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Files written to the export directory by kind.",
		}, []string{"kind"}),
		ExportBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_bytes_total",
			Help:      "Bytes written to the export directory by kind.",
		}, []string{"kind"}),
		ExportFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "export_files",
			Help:      "Exported files currently tracked for expiry.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status.",
		}, []string{"route", "status"}),
	}
	m.Registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamLatency,
		m.Renders,
		m.Exports,
		m.ExportBytes,
		m.ExportFiles,
		m.HTTPRequests,
	)
	return m
}

// ObserveUpstream records one notes service call. status is the HTTP status
// code or "error" for transport failures.
func (m *Metrics) ObserveUpstream(endpoint, status string, d time.Duration) {
	m.UpstreamRequests.WithLabelValues(endpoint, status).Inc()
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveRender counts a render attempt. Structural failures are reported
// separately from other errors.
func (m *Metrics) ObserveRender(format string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var se *doctree.StructuralError
		if errors.As(err, &se) {
			outcome = "structural_error"
		}
	}
	m.Renders.WithLabelValues(format, outcome).Inc()
}

func (m *Metrics) ObserveExport(kind string, size int) {
	m.Exports.WithLabelValues(kind).Inc()
	m.ExportBytes.WithLabelValues(kind).Add(float64(size))
}

func (m *Metrics) SetExportFiles(n int) {
	m.ExportFiles.Set(float64(n))
}

func (m *Metrics) ObserveHTTP(route string, status int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
