// Package metrics holds the Prometheus instrumentation for the api and
// worker processes. Each process carries its own registry so default
// collectors never collide in tests.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	askTotal         *prometheus.CounterVec
	askDuration      *prometheus.HistogramVec
	askSources       *prometheus.HistogramVec
	cacheLookupTotal *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	rerankFallback   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "legalqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	askTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalqa",
			Subsystem: "pipeline",
			Name:      "ask_total",
			Help:      "Total answered questions by retrieval mode.",
		},
		[]string{"service", "mode"},
	)
	askDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalqa",
			Subsystem: "pipeline",
			Name:      "ask_duration_seconds",
			Help:      "End-to-end question answering duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "mode"},
	)
	askSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalqa",
			Subsystem: "pipeline",
			Name:      "ask_sources",
			Help:      "Distribution of sources per answered question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "mode"},
	)
	cacheLookupTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalqa",
			Subsystem: "pipeline",
			Name:      "cache_lookup_total",
			Help:      "Total result cache lookups by outcome.",
		},
		[]string{"service", "mode", "outcome"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalqa",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "stage", "mode"},
	)
	rerankFallback := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalqa",
			Subsystem: "pipeline",
			Name:      "rerank_fallback_total",
			Help:      "Total requests degraded to fused order because reranking failed.",
		},
		[]string{"service", "mode"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		askTotal,
		askDuration,
		askSources,
		cacheLookupTotal,
		stageDuration,
		rerankFallback,
	)

	return &HTTPServerMetrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		askTotal:         askTotal,
		askDuration:      askDuration,
		askSources:       askSources,
		cacheLookupTotal: cacheLookupTotal,
		stageDuration:    stageDuration,
		rerankFallback:   rerankFallback,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/articles/"):
		return "/v1/articles/{article_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordAsk(service, mode string, sourceCount int, duration time.Duration) {
	m.askTotal.WithLabelValues(service, mode).Inc()
	m.askDuration.WithLabelValues(service, mode).Observe(duration.Seconds())
	m.askSources.WithLabelValues(service, mode).Observe(float64(sourceCount))
}

// PipelineObserver adapts the metrics set to the pipeline event hooks of
// the ask use case, bound to one service label.
type PipelineObserver struct {
	metrics *HTTPServerMetrics
	service string
}

func (m *HTTPServerMetrics) PipelineObserver(service string) *PipelineObserver {
	return &PipelineObserver{metrics: m, service: service}
}

func (o *PipelineObserver) CacheLookup(mode string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	o.metrics.cacheLookupTotal.WithLabelValues(o.service, mode, outcome).Inc()
}

func (o *PipelineObserver) StageDuration(stage, mode string, d time.Duration) {
	o.metrics.stageDuration.WithLabelValues(o.service, stage, mode).Observe(d.Seconds())
}

func (o *PipelineObserver) RerankFallback(mode string) {
	o.metrics.rerankFallback.WithLabelValues(o.service, mode).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
