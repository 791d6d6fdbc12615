package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the collector service
type Metrics struct {
	// Collection run metrics
	CollectionRunsTotal   prometheus.Counter
	CollectionRunErrors   prometheus.Counter
	PostsCollectedTotal   prometheus.Counter
	PostsSkippedTotal     prometheus.Counter
	CollectionRunDuration prometheus.Histogram

	// Per-channel health transitions
	ChannelHealthTotal *prometheus.CounterVec

	// Source client metrics
	SourceErrorsTotal *prometheus.CounterVec
	FloodWaitsTotal   prometheus.Counter

	// Storage metrics
	StorageErrorsTotal prometheus.Counter

	// Channel inventory
	ActiveChannels prometheus.Gauge

	// Kafka metrics
	EventsPublishedTotal prometheus.Counter
	EventPublishErrors   prometheus.Counter
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = newMetrics()
	})
	return DefaultMetrics
}

// newMetrics creates the Metrics instance with all counters and gauges
func newMetrics() *Metrics {
	return &Metrics{
		CollectionRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collector_service_collection_runs_total",
			Help: "Total number of collection runs",
		}),
		CollectionRunErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collector_service_collection_run_errors_total",
			Help: "Total number of failed collection runs",
		}),
		PostsCollectedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collector_service_posts_collected_total",
			Help: "Total number of posts persisted",
		}),
		PostsSkippedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collector_service_posts_skipped_total",
			Help: "Total number of posts skipped as already persisted",
		}),
		CollectionRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "collector_service_collection_run_duration_seconds",
			Help:    "Duration of collection runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		ChannelHealthTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collector_service_channel_health_total",
				Help: "Health status outcomes recorded per collection attempt",
			},
			[]string{"status"},
		),
		SourceErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collector_service_source_errors_total",
				Help: "Errors returned by the Telegram source client",
			},
			[]string{"kind"},
		),
		FloodWaitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collector_service_flood_waits_total",
			Help: "Flood-wait responses received from Telegram",
		}),
		StorageErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collector_service_storage_errors_total",
			Help: "Per-message storage errors during collection runs",
		}),
		ActiveChannels: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "collector_service_active_channels",
			Help: "Current number of active monitored channels",
		}),
		EventsPublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collector_service_events_published_total",
			Help: "Post-collected events published to Kafka",
		}),
		EventPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collector_service_event_publish_errors_total",
			Help: "Failed publishes of post-collected events",
		}),
	}
}

// RecordRun records a finished collection run
func (m *Metrics) RecordRun(posts int, durationSeconds float64) {
	m.CollectionRunsTotal.Inc()
	m.PostsCollectedTotal.Add(float64(posts))
	m.CollectionRunDuration.Observe(durationSeconds)
}

// RecordHealth records a per-channel health outcome
func (m *Metrics) RecordHealth(status string) {
	m.ChannelHealthTotal.WithLabelValues(status).Inc()
}

// RecordSourceError records a source client error by kind
func (m *Metrics) RecordSourceError(kind string) {
	m.SourceErrorsTotal.WithLabelValues(kind).Inc()
}
