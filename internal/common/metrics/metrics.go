// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_orders_placed_total",
			Help: "Orders persisted by the order pipeline",
		},
	)

	FanoutStageOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_fanout_stage_outcomes_total",
			Help: "Order fan-out stage outcomes by stage and status",
		},
		[]string{"stage", "status"},
	)

	IngestBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_ingest_batches_total",
			Help: "Bulk ingestion batches by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	IngestedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_ingested_records_total",
			Help: "Catalog records accepted by bulk ingestion",
		},
	)

	VerificationCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_verification_codes_total",
			Help: "Verification codes issued and checked, by result",
		},
		[]string{"result"},
	)
)
