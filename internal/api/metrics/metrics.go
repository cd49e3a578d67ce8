// Package metrics defines the custom Prometheus metrics of the milk collection
// API. It is the single source of truth for metric names, labels, and help
// strings. All metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "milk"

// ── Milk record metrics ───────────────────────────────────────────────────────

// RecordsCreatedTotal counts newly created milk records.
// Label:
//   - milk_type: the record's milk type (e.g. "cow")
var RecordsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_created_total",
		Help:      "Total number of milk records created, by milk type.",
	},
	[]string{"milk_type"},
)

// RecordOperationsTotal counts record mutations by outcome.
// Labels:
//   - operation: "create", "update" or "delete"
//   - result: "ok", "not_found", "invalid" or "error"
var RecordOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_operations_total",
		Help:      "Total number of milk record mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// IdempotentReplaysTotal counts creates answered from an earlier Idempotency-Key.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of record creations replayed from an idempotency key.",
	},
)

// RecordedQuantityTotal sums the quantity of created records.
var RecordedQuantityTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recorded_quantity_total",
		Help:      "Sum of quantities over all created milk records.",
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts signup and signin attempts.
// Labels:
//   - action: "signup" or "signin"
//   - result: "ok", "conflict", "invalid" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by action and result.",
	},
	[]string{"action", "result"},
)
