// Package metrics defines and registers the custom Prometheus metrics of the
// library loan API. It is the single source of truth for metric names,
// labels and help strings.
//
// All metrics are registered with the default registry through promauto on
// package initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// ── Loan metrics ──────────────────────────────────────────────────────────────

// LoansIssuedTotal counts loans created by the ledger.
var LoansIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_issued_total",
		Help:      "Total number of loans issued.",
	},
)

// LoansReturnedTotal counts loans closed by a return.
var LoansReturnedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_returned_total",
		Help:      "Total number of loans returned.",
	},
)

// LoanFailuresTotal counts rejected loan operations.
// Label:
//   - reason: error kind (e.g. "not_found", "unavailable", "conflict", "store_failure")
var LoanFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loan_failures_total",
		Help:      "Total number of loan operations that failed, by reason.",
	},
	[]string{"reason"},
)

// ── Catalog and auth metrics ──────────────────────────────────────────────────

var BooksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "books_created_total",
		Help:      "Total number of books added to the catalog.",
	},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Loan event metrics ────────────────────────────────────────────────────────

// LoanEventsPublishedTotal counts sink deliveries.
// Labels:
//   - type: "loan.issued" or "loan.returned"
//   - result: "ok" or "error"
var LoanEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loan_events_published_total",
		Help:      "Total number of loan events handed to the sink, by type and result.",
	},
	[]string{"type", "result"},
)

var LoanEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loan_events_dropped_total",
		Help:      "Total number of loan events dropped because a worker queue was full.",
	},
)

// LoanEventsQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var LoanEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "loan_events_queue_depth",
		Help:      "Current number of loan events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
