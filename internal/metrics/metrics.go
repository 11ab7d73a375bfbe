package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EventsAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_events_accepted_total",
		Help: "Events accepted for publishing, by event type",
	}, []string{"event_type"})

	EventsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analytics_events_rejected_total",
		Help: "Events rejected at ingestion",
	})

	EventsDeduplicated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analytics_events_deduplicated_total",
		Help: "Events dropped by the idempotency cache",
	})

	BatchesFlushed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analytics_batches_flushed_total",
		Help: "Event batches written to ClickHouse",
	})

	BatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "analytics_batch_size",
		Help:    "Events per flushed batch",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	SummaryBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "analytics_summary_build_seconds",
		Help:    "Time to stream and fold a summary window",
		Buckets: prometheus.DefBuckets,
	})

	RealtimeRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analytics_realtime_requests_total",
		Help: "Realtime snapshot requests",
	})
)

// Register registers all collectors with the default registry. Call once per
// process.
func Register() {
	prometheus.MustRegister(
		EventsAccepted,
		EventsRejected,
		EventsDeduplicated,
		BatchesFlushed,
		BatchSize,
		SummaryBuildSeconds,
		RealtimeRequests,
	)
}
