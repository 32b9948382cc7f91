// Package metrics defines the custom Prometheus metrics of the operations
// API. Metrics register with the default registry on package init, so the
// /metrics endpoint exposes them alongside the echoprometheus request
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vetri"

// ── Authentication ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - method: "password" or "otp"
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// OTPIssuedTotal counts one-time codes handed to the sender.
var OTPIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_issued_total",
		Help:      "Total number of one-time codes issued.",
	},
)

// AccessDeniedTotal counts requests refused by the endpoint authorizer or
// the route guard.
// Labels:
//   - target: endpoint id or guarded path prefix
//   - reason: "unauthenticated", "forbidden", "rotation_required"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests refused by access policy.",
	},
	[]string{"target", "reason"},
)

// ── Audit trail ──────────────────────────────────────────────────────────────

// AuditRecordsTotal counts audit records by outcome.
// Label:
//   - result: "written", "failed" or "dropped"
var AuditRecordsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_records_total",
		Help:      "Total number of audit records, by outcome.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks records waiting in each recorder worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteDuration measures a single audit insert.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of audit record inserts.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Money ────────────────────────────────────────────────────────────────────

// PaymentsSettledTotal counts bookings marked as paid.
var PaymentsSettledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_settled_total",
		Help:      "Total number of booking balances settled.",
	},
)

// WriteConflictsTotal counts version conflicts on conditional writes.
// Label:
//   - route: the matched route path (e.g. "/api/bookings/:id/pay")
var WriteConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "write_conflicts_total",
		Help:      "Total number of optimistic concurrency conflicts.",
	},
	[]string{"route"},
)
