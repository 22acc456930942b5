package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "path", "status"},
	)

	ProviderRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_provider_retries_total",
			Help: "Retries issued against the mail provider after a transient failure",
		},
		[]string{"operation"},
	)

	AnalysisRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_runs_total",
			Help: "Mailbox analysis passes by outcome",
		},
		[]string{"status"}, // success, list_failed, store_failed, ...
	)

	MessagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_messages_fetched_total",
			Help: "Message metadata fetches by outcome",
		},
		[]string{"status"}, // ok, dropped
	)

	CheckpointWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_checkpoint_write_failures_total",
			Help: "Checkpoint writes that failed after a successful aggregate upsert",
		},
	)

	BulkBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_mutation_batches_total",
			Help: "Bulk mutation batches by action and outcome",
		},
		[]string{"action", "status"},
	)

	SlowQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_queries_total",
			Help: "Database statements slower than the configured threshold",
		},
	)

	PurgedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purge_deleted_messages_total",
			Help: "Messages permanently deleted by the purge job",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementProviderRetry(operation string) {
	ProviderRetries.WithLabelValues(operation).Inc()
}

func IncrementAnalysisRun(status string) {
	AnalysisRuns.WithLabelValues(status).Inc()
}

func AddMessagesFetched(status string, n int) {
	MessagesFetched.WithLabelValues(status).Add(float64(n))
}

func IncrementBulkBatch(action, status string) {
	BulkBatches.WithLabelValues(action, status).Inc()
}

func IncrementSlowQuery() {
	SlowQueries.Inc()
}
