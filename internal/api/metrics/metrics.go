// Package metrics defines the custom Prometheus metrics of the notes API.
// They register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notes"

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid_input" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// NoteOperationsTotal counts note CRUD calls.
// Labels:
//   - op: "list", "get", "create", "update" or "delete"
//   - result: "ok", "not_found", "invalid", "busy" or "error"
var NoteOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "note_operations_total",
		Help:      "Total number of note operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// TokenVerificationsFailedTotal counts rejected session tokens.
// Label:
//   - reason: "missing", "expired", "signature", "malformed" or "unknown"
var TokenVerificationsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_failed_total",
		Help:      "Total number of session tokens rejected by the auth middleware.",
	},
	[]string{"reason"},
)

// IdempotentReplaysTotal counts note creations answered from an earlier
// request with the same Idempotency-Key.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of note creations replayed via Idempotency-Key.",
	},
)
