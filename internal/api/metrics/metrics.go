// Package metrics defines the custom Prometheus metrics of the FP&A API. It
// is the single source of truth for metric names, labels and help strings.
//
// HTTP request metrics come from echoprometheus; the collectors here count
// business events. All of them register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fpa"

// ── Auth ──────────────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts authentication flows.
// Labels:
//   - action: "register", "login", "refresh" or "change_password"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Analyses ──────────────────────────────────────────────────────────────────

// AnalysesCreatedTotal counts newly created analyses.
var AnalysesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_created_total",
		Help:      "Total number of analyses created.",
	},
)

// AnalysesGeneratedTotal counts completed generation runs.
var AnalysesGeneratedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_generated_total",
		Help:      "Total number of analysis generation runs.",
	},
)

// ── Market research ───────────────────────────────────────────────────────────

// QuestionsCreatedTotal counts newly created market research questions.
var QuestionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_created_total",
		Help:      "Total number of market research questions created.",
	},
)

// ResponsesAddedTotal counts analyst responses appended to questions.
var ResponsesAddedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "responses_added_total",
		Help:      "Total number of analyst responses added.",
	},
)

// BulkActionsTotal counts bulk operations.
// Labels:
//   - action: "delete_analyses", "delete", "close" or "reopen"
var BulkActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_actions_total",
		Help:      "Total number of bulk operations, by action.",
	},
	[]string{"action"},
)

// ── Files ─────────────────────────────────────────────────────────────────────

// FileUploadsTotal counts upload attempts.
// Label:
//   - result: "success", "rejected" (type, size or analysis) or "error"
var FileUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "file_uploads_total",
		Help:      "Total number of file uploads, by result.",
	},
	[]string{"result"},
)

// FileUploadBytes observes the size of accepted uploads.
var FileUploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "file_upload_bytes",
		Help:      "Size of accepted file uploads in bytes.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 9), // 1 KiB .. 64 MiB
	},
)
