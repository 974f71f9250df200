// Package metrics defines and registers the console's custom Prometheus
// metrics. It is the single source of truth for metric names, labels and help
// strings. All metrics register with the default registry on import.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/testdeck/console/internal/core/auth"
	"github.com/testdeck/console/internal/core/domain"
	"github.com/testdeck/console/internal/core/ports"
)

const namespace = "console"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthTransitionsTotal counts actions applied to session auth stores.
// Labels:
//   - action: e.g. "begin_auth", "auth_succeeded", "logged_out"
//   - logical: the logical state after the action ("unknown", "authenticated", "unauthenticated")
var AuthTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_transitions_total",
		Help:      "Total number of auth actions dispatched, by action and resulting logical state.",
	},
	[]string{"action", "logical"},
)

// AuthOperationsTotal counts finished auth operations.
// Labels:
//   - kind: "login", "logout" or "session_check"
//   - result: "success" or "failure"
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of login, logout and session-check outcomes.",
	},
	[]string{"kind", "result"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - decision: "placeholder", "redirect" or "protected"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"decision"},
)

// GuardSettleWait measures how long the guard waited for a session check.
var GuardSettleWait = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "guard_settle_wait_seconds",
		Help:      "Time the route guard spent waiting for an in-flight session check.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// ── Suite metrics ─────────────────────────────────────────────────────────────

// TestSuitesCreatedTotal counts suites created through the console.
var TestSuitesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "test_suites_created_total",
		Help:      "Total number of test suites created through the console.",
	},
)

// RegisterRuntimeGauges exposes live session and bootstrap queue sizes. Call
// once at startup.
func RegisterRuntimeGauges(activeSessions, queueDepth func() float64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of console sessions mounted in this process.",
	}, activeSessions)
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bootstrap_queue_depth",
		Help:      "Number of session bootstrap jobs waiting for a worker.",
	}, queueDepth)
}

// ObserveTransition is an auth.Observer feeding AuthTransitionsTotal.
func ObserveTransition(a auth.Action, _, next auth.State) {
	AuthTransitionsTotal.WithLabelValues(auth.ActionName(a), next.Logical().String()).Inc()
}

// ObserveDecision records one guard decision.
func ObserveDecision(d auth.Decision) {
	GuardDecisionsTotal.WithLabelValues(d.Kind.String()).Inc()
}

// AuditSink counts audit events before passing them on.
type AuditSink struct {
	Next ports.AuditSink
}

func (s AuditSink) Record(ctx context.Context, ev domain.AuthAuditEvent) error {
	result := "failure"
	if ev.Success {
		result = "success"
	}
	AuthOperationsTotal.WithLabelValues(string(ev.Kind), result).Inc()
	if s.Next == nil {
		return nil
	}
	return s.Next.Record(ctx, ev)
}
