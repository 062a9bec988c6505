// Package metrics defines and registers all custom Prometheus metrics for the
// field sales API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fieldsales"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid_role", "inactive" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Visit metrics ─────────────────────────────────────────────────────────────

// VisitsWrittenTotal counts successful visit writes.
// Label:
//   - op: "create", "update" or "delete"
var VisitsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visits_written_total",
		Help:      "Total number of visit records written, by operation.",
	},
	[]string{"op"},
)

// ── Report metrics ────────────────────────────────────────────────────────────

// ReportDuration measures how long each report takes end-to-end.
// Label:
//   - report: the report name (e.g. "sales_summary")
var ReportDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_duration_seconds",
		Help:      "Duration of report generation from request to aggregated result.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"report"},
)

// VisibilityDecisionsTotal counts how the visibility filter narrowed reads.
// Label:
//   - outcome: "unrestricted", "narrowed", "fallback", "passthrough" or "unknown_kind"
var VisibilityDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visibility_decisions_total",
		Help:      "Total number of visibility filter decisions, by outcome.",
	},
	[]string{"outcome"},
)
