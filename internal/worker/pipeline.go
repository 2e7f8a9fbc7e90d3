package worker

import (
	"context"
	"referralflow/internal/pipeline"
	"referralflow/pkg/logger"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// PipelineWorker runs one accepted résumé per job. Runs absorb their own
// failures, so Work only fails when the job itself is unusable.
type PipelineWorker struct {
	river.WorkerDefaults[pipeline.JobArgs]

	runner  pipeline.Runner
	timeout time.Duration
}

// NewPipelineWorker returns a worker executing jobs with runner.
func NewPipelineWorker(runner pipeline.Runner, timeout time.Duration) *PipelineWorker {
	return &PipelineWorker{runner: runner, timeout: timeout}
}

// Timeout replaces River's one minute default with the configured job
// timeout; -1 disables it.
func (w *PipelineWorker) Timeout(*river.Job[pipeline.JobArgs]) time.Duration {
	if w.timeout <= 0 {
		return -1
	}

	return w.timeout
}

// Work executes the run carried by job.
func (w *PipelineWorker) Work(ctx context.Context, job *river.Job[pipeline.JobArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.Int("attempt", job.Attempt))

	if job.Args.Payload.Text == "" {
		logger.Warn(ctx, "pipeline job without résumé text, cancelling")

		return river.JobCancel(errEmptyPayload) //nolint: wrapcheck
	}

	report := w.runner.Run(ctx, job.Args.Payload)
	logger.Info(ctx, "pipeline job finished",
		zap.Stringer("runID", report.RunID),
		zap.Int("jobs", len(report.Jobs)),
		zap.Int("sent", report.Sent()))

	return nil
}
