package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	chunksTotal     *prometheus.CounterVec
	graphWrites     *prometheus.CounterVec
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lawgraph",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lawgraph",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lawgraph",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chunksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lawgraph",
			Subsystem: "worker",
			Name:      "extraction_chunks_total",
			Help:      "Total chunks sent to graph extraction by outcome.",
		},
		[]string{"service", "outcome"},
	)
	graphWrites := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lawgraph",
			Subsystem: "worker",
			Name:      "graph_elements_persisted_total",
			Help:      "Total graph nodes and relationships persisted.",
		},
		[]string{"service", "kind"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lawgraph",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document creation and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, chunksTotal, graphWrites, queueLag)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		chunksTotal:     chunksTotal,
		graphWrites:     graphWrites,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveExtraction(service string, chunksTotal, chunksFailed int) {
	if ok := chunksTotal - chunksFailed; ok > 0 {
		m.chunksTotal.WithLabelValues(service, "extracted").Add(float64(ok))
	}
	if chunksFailed > 0 {
		m.chunksTotal.WithLabelValues(service, "failed").Add(float64(chunksFailed))
	}
}

func (m *WorkerMetrics) ObserveGraphWrites(service string, nodes, edges int) {
	if nodes > 0 {
		m.graphWrites.WithLabelValues(service, "node").Add(float64(nodes))
	}
	if edges > 0 {
		m.graphWrites.WithLabelValues(service, "relationship").Add(float64(edges))
	}
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
