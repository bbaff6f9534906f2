package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	handler http.Handler

	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	webhookTotal      *prometheus.CounterVec
	embeddingTotal    *prometheus.CounterVec
	embeddingCache    *prometheus.CounterVec
	analysesIngested  *prometheus.CounterVec
	uploadsTotal      *prometheus.CounterVec
	eventPublishTotal *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	webhookTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_notifications_total",
		Help: "Outbound workflow webhook attempts by outcome",
	}, []string{"outcome"})

	embeddingTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "embedding_requests_total",
		Help: "Embedding API calls by caller and outcome",
	}, []string{"caller", "outcome"})

	embeddingCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "embedding_cache_lookups_total",
		Help: "Query embedding cache lookups by result",
	}, []string{"result"})

	analysesIngested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_results_ingested_total",
		Help: "Analysis results received from the workflow by channel and outcome",
	}, []string{"channel", "outcome"})

	uploadsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_uploads_total",
		Help: "Assignment uploads by outcome",
	}, []string{"outcome"})

	eventPublishTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "event_publish_total",
		Help: "Message broker publishes by outcome",
	}, []string{"outcome"})

	registry.MustRegister(
		requestDuration,
		requestTotal,
		webhookTotal,
		embeddingTotal,
		embeddingCache,
		analysesIngested,
		uploadsTotal,
		eventPublishTotal,
		collectors.NewGoCollector(),
	)

	return &Metrics{
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		webhookTotal:      webhookTotal,
		embeddingTotal:    embeddingTotal,
		embeddingCache:    embeddingCache,
		analysesIngested:  analysesIngested,
		uploadsTotal:      uploadsTotal,
		eventPublishTotal: eventPublishTotal,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func (m *Metrics) RecordWebhook(outcome string) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordEmbedding(caller string, err error) {
	if m == nil {
		return
	}
	m.embeddingTotal.WithLabelValues(caller, outcome(err)).Inc()
}

func (m *Metrics) RecordEmbeddingCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.embeddingCache.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordIngestion(channel, outcome string) {
	if m == nil {
		return
	}
	m.analysesIngested.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) RecordUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordEventPublish(err error) {
	if m == nil {
		return
	}
	m.eventPublishTotal.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
