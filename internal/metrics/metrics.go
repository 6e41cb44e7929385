package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchTotal исходы обработки событий новых заказов.
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordernotifier_dispatch_total",
			Help: "Total number of new order events by dispatch outcome",
		},
		[]string{"outcome"},
	)

	ChannelSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ordernotifier_channel_send_duration_seconds",
			Help:    "Duration of channel delivery attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	ChannelSendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordernotifier_channel_send_errors_total",
			Help: "Total number of channel delivery attempts that failed in transport",
		},
		[]string{"channel"},
	)

	RecordFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ordernotifier_record_failures_total",
			Help: "Total number of audit records that could not be persisted",
		},
	)

	TaskFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordernotifier_task_failures_total",
			Help: "Total number of supervised tasks that failed or panicked",
		},
		[]string{"task"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ordernotifier_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	TasksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ordernotifier_tasks_active",
			Help: "Number of supervised tasks currently running",
		},
	)
)

// Outcome labels for DispatchTotal.
const (
	OutcomeSkipped   = "skipped"
	OutcomeNoOptions = "no_options"
	OutcomeSent      = "sent"
)
