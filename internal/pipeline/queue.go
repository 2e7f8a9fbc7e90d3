package pipeline

import (
	"context"
	"fmt"
	"referralflow/pkg/domain"
	"referralflow/pkg/logger"
	"referralflow/pkg/metrics"
	"referralflow/pkg/serrors"
	"referralflow/pkg/storage"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// Queue names used in logs and metrics.
const (
	QueueMemory = "memory"
	QueueRiver  = "river"
)

// ErrQueueClosed is returned by LocalQueue.Enqueue after Shutdown.
var ErrQueueClosed = serrors.With(serrors.ErrUnavailable, "queue is shutting down")

// LocalQueue runs each accepted payload in its own goroutine in this process.
// Runs are detached from the submitting request: cancelling the request
// context does not stop them.
type LocalQueue struct {
	runner Runner

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

var _ Enqueuer = (*LocalQueue)(nil)

// NewLocalQueue returns a LocalQueue executing payloads with runner.
func NewLocalQueue(runner Runner) *LocalQueue {
	return &LocalQueue{runner: runner}
}

// Enqueue starts a run for payload and returns immediately.
func (q *LocalQueue) Enqueue(ctx context.Context, payload domain.ResumePayload) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()

		return ErrQueueClosed
	}
	q.wg.Add(1)
	q.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer q.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error(runCtx, "pipeline run panicked",
					zap.Stringer("runID", payload.RunID),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
			}
		}()

		q.runner.Run(runCtx, payload)
	}()
	metrics.Enqueued(ctx, QueueMemory)

	return nil
}

// Shutdown stops accepting payloads and waits for running ones to finish or
// for ctx to end.
func (q *LocalQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pipeline runs still in progress: %w", ctx.Err())
	}
}

// RiverQueue inserts payloads into the durable River queue, where the
// pipeline worker picks them up.
type RiverQueue struct {
	jobs storage.JobStorage
}

var _ Enqueuer = RiverQueue{}

// NewRiverQueue returns a RiverQueue inserting through jobs.
func NewRiverQueue(jobs storage.JobStorage) RiverQueue {
	return RiverQueue{jobs: jobs}
}

// Enqueue inserts a pipeline job for payload.
func (q RiverQueue) Enqueue(ctx context.Context, payload domain.ResumePayload) error {
	if _, err := q.jobs.AddJob(ctx, JobArgs{Payload: payload}, nil); err != nil {
		return fmt.Errorf("could not enqueue pipeline job: %w", err)
	}
	metrics.Enqueued(ctx, QueueRiver)

	return nil
}
