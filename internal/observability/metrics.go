package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusbridge_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusbridge_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LikeToggles counts like toggles by subject kind and resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusbridge_like_toggles_total",
		Help: "Like ledger toggles by subject kind and result",
	}, []string{"subject_kind", "result"})

	// ReplyNodesRemoved counts reply nodes removed by cascading deletes.
	ReplyNodesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusbridge_reply_nodes_removed_total",
		Help: "Reply nodes removed by subtree and post deletion",
	})

	// RepliesCreated counts created replies and whether the parent fell back to top level.
	RepliesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusbridge_replies_created_total",
		Help: "Replies created, labelled by parent fallback",
	}, []string{"fallback"})

	// WriteGateRejections counts writes refused for muted actors.
	WriteGateRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusbridge_write_gate_rejections_total",
		Help: "Mutations refused by the write gate",
	}, []string{"operation"})

	// ReviewTransitions counts catalog review transitions.
	ReviewTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusbridge_review_transitions_total",
		Help: "Catalog review transitions by entity kind and target status",
	}, []string{"kind", "status"})

	// ReportTransitions counts report creations and resolutions.
	ReportTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusbridge_report_transitions_total",
		Help: "Report workflow transitions by status",
	}, []string{"status"})

	// CounterDriftRepaired counts denormalized counters repaired by reconciliation.
	CounterDriftRepaired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusbridge_counter_drift_repaired_total",
		Help: "Rows whose denormalized counter was repaired",
	}, []string{"table", "column"})

	// EventPublishFailures counts domain events that could not be published.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusbridge_event_publish_failures_total",
		Help: "Domain events that failed to publish by sink",
	}, []string{"sink"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
