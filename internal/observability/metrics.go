// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingest metrics
	MessagesProcessed prometheus.Counter
	MentionsRecorded  *prometheus.CounterVec
	DuplicateMentions prometheus.Counter

	// Detection metrics
	DetectionCycles   *prometheus.CounterVec
	DetectionDuration prometheus.Histogram
	TrendingTokens    *prometheus.GaugeVec
	OracleOutcomes    *prometheus.CounterVec

	// Alert metrics
	AlertsSent       *prometheus.CounterVec
	AlertsSuppressed prometheus.Counter
	AlertSendErrors  prometheus.Counter
	ActiveCooldowns  prometheus.Gauge

	// Storage metrics
	StoreErrors    prometheus.Counter
	MentionsPurged prometheus.Counter

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_radar"
	}

	return &Metrics{
		// Ingest metrics
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "messages_processed_total",
			Help:      "Total number of chat messages run through the detectors",
		}),
		MentionsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "mentions_recorded_total",
			Help:      "Total number of new contract mentions recorded by chain",
		}, []string{"chain"}),
		DuplicateMentions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duplicate_mentions_total",
			Help:      "Total number of mentions skipped as already recorded",
		}),

		// Detection metrics
		DetectionCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "cycles_total",
			Help:      "Total number of detection cycles by status",
		}, []string{"status"}),
		DetectionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "cycle_duration_seconds",
			Help:      "Detection cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TrendingTokens: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "trending_tokens",
			Help:      "Number of trending tokens found in the last cycle by chain",
		}, []string{"chain"}),
		OracleOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "oracle_outcomes_total",
			Help:      "Total number of liquidity oracle consultations by outcome",
		}, []string{"outcome"}),

		// Alert metrics
		AlertsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "sent_total",
			Help:      "Total number of alerts delivered by chain",
		}, []string{"chain"}),
		AlertsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "suppressed_by_cooldown_total",
			Help:      "Total number of alerts suppressed by an active cooldown",
		}),
		AlertSendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "send_errors_total",
			Help:      "Total number of alert delivery failures",
		}),
		ActiveCooldowns: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "cooldowns_active",
			Help:      "Number of contracts currently on cooldown",
		}),

		// Storage metrics
		StoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of mention store errors",
		}),
		MentionsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "mentions_purged_total",
			Help:      "Total number of mentions removed by the retention sweep",
		}),

		// Health metrics
		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last successful detection cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMessageProcessed increments the messages processed counter.
func RecordMessageProcessed() {
	DefaultMetrics.MessagesProcessed.Inc()
}

// RecordMentionRecorded increments the mentions recorded counter for a chain.
func RecordMentionRecorded(chain string) {
	DefaultMetrics.MentionsRecorded.WithLabelValues(chain).Inc()
}

// RecordDuplicateMention increments the duplicate mentions counter.
func RecordDuplicateMention() {
	DefaultMetrics.DuplicateMentions.Inc()
}

// RecordDetectionCycle records one detection cycle with its duration.
func RecordDetectionCycle(status string, seconds float64) {
	DefaultMetrics.DetectionCycles.WithLabelValues(status).Inc()
	DefaultMetrics.DetectionDuration.Observe(seconds)
}

// SetTrendingTokens updates the trending tokens gauge for a chain.
func SetTrendingTokens(chain string, count int) {
	DefaultMetrics.TrendingTokens.WithLabelValues(chain).Set(float64(count))
}

// RecordOracleOutcome increments the oracle outcome counter.
func RecordOracleOutcome(outcome string) {
	DefaultMetrics.OracleOutcomes.WithLabelValues(outcome).Inc()
}

// RecordAlertSent increments the alerts sent counter for a chain.
func RecordAlertSent(chain string) {
	DefaultMetrics.AlertsSent.WithLabelValues(chain).Inc()
}

// RecordAlertSuppressed increments the cooldown suppression counter.
func RecordAlertSuppressed() {
	DefaultMetrics.AlertsSuppressed.Inc()
}

// RecordAlertSendError increments the alert delivery failure counter.
func RecordAlertSendError() {
	DefaultMetrics.AlertSendErrors.Inc()
}

// SetActiveCooldowns updates the active cooldowns gauge.
func SetActiveCooldowns(count int) {
	DefaultMetrics.ActiveCooldowns.Set(float64(count))
}

// RecordStoreError increments the store error counter.
func RecordStoreError() {
	DefaultMetrics.StoreErrors.Inc()
}

// RecordMentionsPurged adds to the purged mentions counter.
func RecordMentionsPurged(count int64) {
	DefaultMetrics.MentionsPurged.Add(float64(count))
}

// SetLastSuccessfulCycle updates the last successful cycle timestamp.
func SetLastSuccessfulCycle(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulCycle.Set(float64(unixSeconds))
}
