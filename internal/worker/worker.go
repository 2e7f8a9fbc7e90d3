// Package worker executes queued pipeline runs with River.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"referralflow/internal/config"
	"referralflow/internal/pipeline"
	"referralflow/pkg/logger"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// Options configure the River client.
type Options struct {
	// MaxWorkers is the number of runs executed concurrently.
	MaxWorkers int
	// JobTimeout bounds a single run. Zero or less disables the timeout.
	JobTimeout time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxWorkers: cfg.Queue.MaxWorkers,
		JobTimeout: cfg.Queue.JobTimeout,
	}
}

// Start registers the pipeline worker and starts working the default queue.
// The caller stops the returned client on shutdown.
func Start(ctx context.Context, dbPool *pgxpool.Pool, runner pipeline.Runner, opts Options) (*river.Client[pgx.Tx], error) {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 1
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewPipelineWorker(runner, opts.JobTimeout))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: opts.MaxWorkers},
		},
		Workers: workers,
		Logger:  slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
