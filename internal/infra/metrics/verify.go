package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		PaymentVerifyRequests,
		PaymentVerifyDuration,
		pollerOutcomes,
		OpsAlertTotal,
	)
}

var (
	// Count of verify calls grouped by result and bounded reason.
	// result: ok|fail
	// reason (fail only): bad_reference|not_found|gateway_error|method_not_allowed|unknown
	PaymentVerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Count of /api/payment/verify calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	// Latency of verify handler grouped by result.
	PaymentVerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of /api/payment/verify handler in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	// Verification poller outcomes: completed|failed|timed_out.
	pollerOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_poller_outcomes_total",
			Help: "Terminal states reached by the verification poller.",
		},
		[]string{"outcome"},
	)

	// Ops alerts about payment status by kind and delivery status.
	// kind: failed|timed_out|reconciled
	// status: sent|error
	OpsAlertTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_ops_alert_total",
			Help: "Ops notifications about payment status by kind and delivery status.",
		},
		[]string{"kind", "status"},
	)
)

func IncPollerOutcome(outcome string) {
	pollerOutcomes.WithLabelValues(norm(outcome)).Inc()
}
