// Package metrics exposes Prometheus metrics for the acquisition pipeline and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seithi"

// Metrics holds every collector on its own registry.
type Metrics struct {
	reg *prometheus.Registry

	// StageTotal counts fallback stage outcomes by chain, stage and whether they yielded.
	StageTotal *prometheus.CounterVec
	// StageArticles observes how many articles a stage produced.
	StageArticles *prometheus.HistogramVec
	// SourceTotal counts publisher scrapes by source and status.
	SourceTotal *prometheus.CounterVec
	// SourceArticles observes publisher scrape yields.
	SourceArticles *prometheus.HistogramVec
	// PlaceholderTotal counts placeholder batches served.
	PlaceholderTotal *prometheus.CounterVec
	// RequestDuration measures API handler latency.
	RequestDuration *prometheus.HistogramVec
	// HistoryTotal counts tracked activities.
	HistoryTotal *prometheus.CounterVec
}

var yieldBuckets = []float64{0, 1, 5, 10, 15, 20, 30, 50}

// New registers the collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		StageTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_total",
			Help:      "Fallback stage runs by chain, stage and outcome",
		}, []string{"chain", "stage", "outcome"}),
		StageArticles: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_articles",
			Help:      "Articles produced per fallback stage run",
			Buckets:   yieldBuckets,
		}, []string{"chain", "stage"}),
		SourceTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_scrapes_total",
			Help:      "Publisher scrapes by source and status",
		}, []string{"source", "status"}),
		SourceArticles: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_articles",
			Help:      "Articles extracted per publisher scrape",
			Buckets:   yieldBuckets,
		}, []string{"source"}),
		PlaceholderTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholder_batches_total",
			Help:      "Placeholder batches served by kind",
		}, []string{"kind"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
		HistoryTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_events_total",
			Help:      "Tracked history activities by kind and status",
		}, []string{"activity", "status"}),
	}
}

// Stage implements the pipeline recorder.
func (m *Metrics) Stage(chain, stage string, articles int) {
	outcome := "empty"
	if articles > 0 {
		outcome = "yield"
	}
	m.StageTotal.WithLabelValues(chain, stage, outcome).Inc()
	m.StageArticles.WithLabelValues(chain, stage).Observe(float64(articles))
}

// SourceYield implements the pipeline recorder.
func (m *Metrics) SourceYield(source string, articles int, err error) {
	m.SourceTotal.WithLabelValues(source, status(err)).Inc()
	if err == nil {
		m.SourceArticles.WithLabelValues(source).Observe(float64(articles))
	}
}

// Placeholder implements the pipeline recorder.
func (m *Metrics) Placeholder(kind string) {
	m.PlaceholderTotal.WithLabelValues(kind).Inc()
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}

// History records a tracking call.
func (m *Metrics) History(activity string, err error) {
	m.HistoryTotal.WithLabelValues(activity, status(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
