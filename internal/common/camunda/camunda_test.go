package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/common/metrics"
	"agri-marketplace/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob(key int64) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               "test-task",
		ProcessInstanceKey: key * 10,
		Retries:            3,
		Variables:          "{}",
	}}
}

func TestRetry(t *testing.T) {
	log := logger.NewTestLogger(t)
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), cfg, "op", log, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		boom := errors.New("down")
		err := Retry(context.Background(), cfg, "op", log, func(context.Context) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour}
		err := Retry(ctx, slow, "op", log, func(context.Context) error { return errors.New("x") })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestInstrument_RecordsOutcomes(t *testing.T) {
	log := logger.NewTestLogger(t)
	obs := observability.NewNoop()

	okTask := "instrument-ok"
	okHandler := Instrument(okTask, JobHandlerFunc(func(worker.JobClient, entities.Job) error { return nil }), obs, log)
	okHandler(nil, testJob(1))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(okTask)))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(okTask)))

	failTask := "instrument-fail"
	failHandler := Instrument(failTask, JobHandlerFunc(func(worker.JobClient, entities.Job) error {
		return apperrors.NewNotFoundError("order", "ORD-1")
	}), obs, log)
	failHandler(nil, testJob(2))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(failTask, "NOT_FOUND")))
}

func TestInstrument_RecoversPanics(t *testing.T) {
	task := "instrument-panic"
	h := Instrument(task, JobHandlerFunc(func(worker.JobClient, entities.Job) error {
		panic("nil map")
	}), observability.NewNoop(), logger.NewNoOpLogger())

	assert.NotPanics(t, func() { h(nil, testJob(3)) })
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(task, "INTERNAL_ERROR")))
}
