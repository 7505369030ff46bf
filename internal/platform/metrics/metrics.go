package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RecordsCreated    *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	DocumentsAttached *prometheus.CounterVec
	ReportsGenerated  prometheus.Counter
	LoginAttempts     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RecordsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "frontera_records_created_total",
			Help: "Total records created, labeled by collection",
		}, []string{"collection"}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "frontera_status_transitions_total",
			Help: "Total status transitions, labeled by collection and target status",
		}, []string{"collection", "status"}),
		DocumentsAttached: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "frontera_documents_attached_total",
			Help: "Total documents attached to records, labeled by collection",
		}, []string{"collection"}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "frontera_reports_generated_total",
			Help: "Total report exports generated",
		}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "frontera_login_attempts_total",
			Help: "Total login attempts, labeled by outcome",
		}, []string{"outcome"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "frontera_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// IncRecordCreated increments the created counter for a collection.
func (m *Metrics) IncRecordCreated(collection string) {
	if m != nil {
		m.RecordsCreated.WithLabelValues(collection).Inc()
	}
}

// IncStatusTransition increments the transition counter.
func (m *Metrics) IncStatusTransition(collection, status string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(collection, status).Inc()
	}
}

// IncDocumentAttached increments the document upload counter.
func (m *Metrics) IncDocumentAttached(collection string) {
	if m != nil {
		m.DocumentsAttached.WithLabelValues(collection).Inc()
	}
}

// IncReportGenerated increments the report export counter.
func (m *Metrics) IncReportGenerated() {
	if m != nil {
		m.ReportsGenerated.Inc()
	}
}

// IncLogin increments the login counter with "success" or "failure".
func (m *Metrics) IncLogin(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}
