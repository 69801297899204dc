package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

// IngestMetrics observes corpus load runs. It satisfies the load lifecycle
// hook of the corpus manager.
type IngestMetrics struct {
	service string

	loadsTotal   *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	loadInFlight prometheus.Gauge
	recordsTotal *prometheus.CounterVec
}

func NewIngestMetrics(registry *prometheus.Registry, service string) *IngestMetrics {
	loadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdis",
			Subsystem: "corpus",
			Name:      "loads_total",
			Help:      "Total corpus load runs by status.",
		},
		[]string{"service", "status"},
	)
	loadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tdis",
			Subsystem: "corpus",
			Name:      "load_duration_seconds",
			Help:      "Corpus load duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	loadInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tdis",
			Subsystem: "corpus",
			Name:      "load_in_flight",
			Help:      "Whether a corpus load is currently running.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	recordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdis",
			Subsystem: "corpus",
			Name:      "records_total",
			Help:      "Total records seen during corpus loads by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(loadsTotal, loadDuration, loadInFlight, recordsTotal)

	return &IngestMetrics{
		service:      service,
		loadsTotal:   loadsTotal,
		loadDuration: loadDuration,
		loadInFlight: loadInFlight,
		recordsTotal: recordsTotal,
	}
}

func (m *IngestMetrics) StartLoad() {
	m.loadInFlight.Inc()
}

func (m *IngestMetrics) FinishLoad(report *domain.IngestReport, duration time.Duration, err error) {
	m.loadInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.loadsTotal.WithLabelValues(m.service, status).Inc()
	m.loadDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())

	if report == nil {
		return
	}
	m.recordsTotal.WithLabelValues(m.service, "ingested").Add(float64(report.Ingested))
	m.recordsTotal.WithLabelValues(m.service, "skipped").Add(float64(report.Skipped))
	m.recordsTotal.WithLabelValues(m.service, "failed").Add(float64(len(report.Failures)))
}
