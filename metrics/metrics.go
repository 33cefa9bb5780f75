package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fliptrack_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fliptrack_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	MediaCreatedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fliptrack_media_created_total",
			Help: "Total number of media updates saved",
		},
		[]string{"type"}, // photo, video
	)

	ComplianceSweepCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fliptrack_compliance_sweeps_total",
			Help: "Total number of compliance sweeps",
		},
		[]string{"result"}, // success, failed, skipped
	)

	ProjectsRequiringUpdate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fliptrack_projects_requiring_update",
			Help: "Projects flagged as requiring an update by the last sweep",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementMediaCreated(mediaType string) {
	MediaCreatedCount.WithLabelValues(mediaType).Inc()
}

func IncrementComplianceSweep(result string) {
	ComplianceSweepCount.WithLabelValues(result).Inc()
}

func SetProjectsRequiringUpdate(n int) {
	ProjectsRequiringUpdate.Set(float64(n))
}
