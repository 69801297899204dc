package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatRequestsTotal   *prometheus.CounterVec
	chatRetrievalHit    *prometheus.CounterVec
	chatNoContextTotal  *prometheus.CounterVec
	chatRetrievedChunks *prometheus.HistogramVec
	chatDuration        *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdis",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tdis",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tdis",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdis",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total successful chat requests.",
		},
		[]string{"service"},
	)
	chatRetrievalHit := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdis",
			Subsystem: "chat",
			Name:      "retrieval_hit_total",
			Help:      "Total chat requests with at least one retrieved context.",
		},
		[]string{"service"},
	)
	chatNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdis",
			Subsystem: "chat",
			Name:      "no_context_total",
			Help:      "Total chat requests answered from the static description only.",
		},
		[]string{"service"},
	)
	chatRetrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tdis",
			Subsystem: "chat",
			Name:      "retrieved_chunks",
			Help:      "Distribution of retrieved contexts per successful chat request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tdis",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat answering duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		chatRetrievalHit,
		chatNoContextTotal,
		chatRetrievedChunks,
		chatDuration,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		chatRequestsTotal:   chatRequestsTotal,
		chatRetrievalHit:    chatRetrievalHit,
		chatNoContextTotal:  chatNoContextTotal,
		chatRetrievedChunks: chatRetrievedChunks,
		chatDuration:        chatDuration,
	}
}

// Registry exposes the underlying registry so other collectors can share
// the same /metrics endpoint.
func (m *HTTPServerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
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
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordChatObservation(service string, contextCount int, duration time.Duration) {
	m.chatRequestsTotal.WithLabelValues(service).Inc()
	m.chatRetrievedChunks.WithLabelValues(service).Observe(float64(contextCount))
	m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())

	if contextCount > 0 {
		m.chatRetrievalHit.WithLabelValues(service).Inc()
		return
	}
	m.chatNoContextTotal.WithLabelValues(service).Inc()
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

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
