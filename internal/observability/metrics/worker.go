package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	indexTotal    *prometheus.CounterVec
	indexDuration *prometheus.HistogramVec
	indexInFlight prometheus.Gauge
	indexedPairs  *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	indexTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalqa",
			Subsystem: "worker",
			Name:      "article_index_total",
			Help:      "Total indexed articles by status.",
		},
		[]string{"service", "status"},
	)
	indexDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalqa",
			Subsystem: "worker",
			Name:      "article_index_duration_seconds",
			Help:      "Article indexing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	indexInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "legalqa",
			Subsystem: "worker",
			Name:      "article_index_in_flight",
			Help:      "Number of articles being indexed right now.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	indexedPairs := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalqa",
			Subsystem: "worker",
			Name:      "article_indexed_pairs",
			Help:      "Distribution of QA pairs indexed per article.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)

	registry.MustRegister(indexTotal, indexDuration, indexInFlight, indexedPairs)

	return &WorkerMetrics{
		registry:      registry,
		indexTotal:    indexTotal,
		indexDuration: indexDuration,
		indexInFlight: indexInFlight,
		indexedPairs:  indexedPairs,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartArticle() {
	m.indexInFlight.Inc()
}

func (m *WorkerMetrics) FinishArticle(service string, duration time.Duration, err error) {
	m.indexInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.indexTotal.WithLabelValues(service, status).Inc()
	m.indexDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveIndexedPairs(service string, pairs int) {
	if pairs <= 0 {
		return
	}
	m.indexedPairs.WithLabelValues(service).Observe(float64(pairs))
}
