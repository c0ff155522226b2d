package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the application.
// It includes HTTP request counters and latencies, task transition and upload
// outcomes, report timings and database query durations.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	Transitions       *prometheus.CounterVec
	Uploads           *prometheus.CounterVec
	ReportDuration    prometheus.Histogram
	PlaceholderEmails prometheus.Counter
	DBQueryDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aeolus_http_requests_total",
			Help: "Total number of API requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aeolus_http_request_duration_seconds",
			Help:    "Duration of API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Transitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aeolus_task_transitions_total",
			Help: "Task status transition attempts by source, target and result.",
		}, []string{"from", "to", "result"}), // result: 'applied', 'denied', 'failed'
		Uploads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aeolus_uploads_total",
			Help: "File uploads by kind and result.",
		}, []string{"kind", "result"}), // kind: 'attachment', 'invoice'
		ReportDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "aeolus_report_duration_seconds",
			Help:    "Measures how long it takes to build an employee report.",
			Buckets: prometheus.DefBuckets,
		}),
		PlaceholderEmails: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "aeolus_placeholder_emails_total",
			Help: "Total number of employee emails that were generated as placeholders.",
		}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aeolus_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'get_task', 'mutate_task'
	}

	metrics.Uploads.WithLabelValues("attachment", "success")
	metrics.Uploads.WithLabelValues("attachment", "failure")
	metrics.Uploads.WithLabelValues("invoice", "success")
	metrics.Uploads.WithLabelValues("invoice", "failure")

	return metrics
}
