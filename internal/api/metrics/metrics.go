// Package metrics defines the custom Prometheus metrics of the slugboard
// service. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/slugboard/slugboard/internal/core/domain"
)

const namespace = "slugboard"

// Result label values shared by the counters below.
const (
	ResultSuccess   = "success"
	ResultRejected  = "rejected"
	ResultError     = "error"
	ResultUnrotated = "unrotated"
)

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "rejected" (bad input or credentials) or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration requests.
// Label:
//   - result: "success", "rejected" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration requests, by result.",
	},
	[]string{"result"},
)

// PasswordChangesTotal counts password change requests.
// Label:
//   - result: "success", "unrotated" (password stored, token not reissued),
//     "rejected" or "error"
var PasswordChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password change requests, by result.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionChecksTotal counts session cookie verifications.
// Label:
//   - result: "valid", "invalid" or "absent"
var SessionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_checks_total",
		Help:      "Total number of session cookie checks, by result.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts access guard decisions on incoming requests.
// Label:
//   - decision: "public", "allow" or "redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of access guard decisions, by outcome.",
	},
	[]string{"decision"},
)

// Outcome maps a service error to a result label value. Client mistakes
// count as rejected; store, hashing and configuration failures as errors.
func Outcome(err error) string {
	if err == nil {
		return ResultSuccess
	}
	switch domain.KindOf(err) {
	case domain.KindInternal, domain.KindConfiguration:
		return ResultError
	default:
		return ResultRejected
	}
}
