// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"agri-marketplace/internal/common/config"
	"agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/common/metrics"
	"agri-marketplace/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
)

// JobHandler completes or fails the job itself and reports the outcome.
// The returned error is used for instrumentation only.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// JobHandlerFunc adapts a function to JobHandler.
type JobHandlerFunc func(client worker.JobClient, job entities.Job) error

func (f JobHandlerFunc) Handle(client worker.JobClient, job entities.Job) error {
	return f(client, job)
}

// Instrument wraps h with Prometheus and OpenTelemetry job metrics and
// recovers panics so one bad job cannot stop the worker.
func Instrument(taskType string, h JobHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		ctx, span := obs.StartSpan(context.Background(), taskType,
			attribute.Int64("job.key", job.GetKey()),
			attribute.Int64("process.instance.key", job.GetProcessInstanceKey()),
		)
		defer span.End()

		err := safeHandle(h, client, job)

		status := "completed"
		if err != nil {
			status = "failed"
			code := errors.Normalize(err).Code
			metrics.WorkerJobsFailed.WithLabelValues(taskType, string(code)).Inc()
			log.Debug("job handler reported failure", map[string]interface{}{
				"taskType":  taskType,
				"jobKey":    job.GetKey(),
				"errorCode": string(code),
			})
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJobProcessed(ctx, taskType, status)
		obs.RecordJobDuration(ctx, taskType, elapsed, status)
	}
}

func safeHandle(h JobHandler, client worker.JobClient, job entities.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(client, job)
}

// Register opens a job worker for taskType using the per-worker settings.
func Register(client zbc.Client, taskType string, wcfg config.WorkerConfig, h JobHandler, obs *observability.Observability, log logger.Logger) worker.JobWorker {
	w := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, h, obs, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(fmt.Sprintf("%s-worker", taskType)).
		Open()

	log.Info("worker registered", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return w
}

// CompleteJob completes job with output serialised as process variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("build complete command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete command: %w", err)
	}
	return nil
}
