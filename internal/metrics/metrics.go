package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// rateLimited counts sends rejected by the per-owner sliding window.
	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "dispatch",
			Name:      "rate_limited_total",
			Help:      "Number of sends rejected by the per-owner rate limit",
		},
	)

	// sendOutcomes counts dispatch results.
	// Labels:
	// - template: template name
	// - outcome:  "success", "delivery_failed", "template_not_found", "rate_limited", ...
	sendOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "dispatch",
			Name:      "sends_total",
			Help:      "Dispatch attempts by template and outcome",
		},
		[]string{"template", "outcome"},
	)

	// deliveryDuration observes the email API call latency.
	deliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "courier",
			Subsystem: "dispatch",
			Name:      "delivery_duration_seconds",
			Help:      "Duration of the call to the email delivery API",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "status"},
	)

	// contactMutations counts directory writes by operation and result.
	contactMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "contacts",
			Name:      "mutations_total",
			Help:      "Contact directory mutations by operation and result",
		},
		[]string{"op", "result"},
	)

	// logWriteFailures counts delivery log appends that could not be persisted.
	logWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "deliveries",
			Name:      "log_write_failures_total",
			Help:      "Delivery log appends that failed to persist",
		},
	)
)

// IncRateLimited increments the rate limit rejection counter.
func IncRateLimited() {
	rateLimited.Inc()
}

// IncSend records one dispatch outcome.
func IncSend(template, outcome string) {
	if template == "" {
		template = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	sendOutcomes.WithLabelValues(template, outcome).Inc()
}

// ObserveDelivery records the latency of one email API call.
func ObserveDelivery(provider, status string, seconds float64) {
	if provider == "" {
		provider = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	deliveryDuration.WithLabelValues(provider, status).Observe(seconds)
}

// IncContactMutation records a directory write.
func IncContactMutation(op, result string) {
	if result == "" {
		result = "unknown"
	}
	contactMutations.WithLabelValues(op, result).Inc()
}

// IncLogWriteFailure records a delivery log append that was dropped.
func IncLogWriteFailure() {
	logWriteFailures.Inc()
}
