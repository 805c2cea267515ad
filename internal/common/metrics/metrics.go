// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// SMSMessagesClassified counts classified messages by resulting kind,
	// including error kinds (zero_results, service_unavailable).
	SMSMessagesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_messages_classified_total",
			Help: "Total number of inbound SMS messages classified, by kind",
		},
		[]string{"kind"},
	)

	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_requests_total",
			Help: "Total number of geocoding API calls, by response status",
		},
		[]string{"status"},
	)

	GeocodeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geocode_cache_hits_total",
			Help: "Total number of geocoding lookups served from cache",
		},
	)

	RidesRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rides_requested_total",
			Help: "Total number of rides requested from the ride service, by ride type",
		},
		[]string{"ride_type"},
	)

	SMSRepliesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_replies_sent_total",
			Help: "Total number of SMS replies, by delivery status",
		},
		[]string{"status"},
	)
)
