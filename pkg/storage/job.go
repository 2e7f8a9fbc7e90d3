package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues background jobs into the durable queue. When the
// handle is bound to a transaction the insert only becomes visible once it
// commits.
type JobStorage interface {
	// AddJob enqueues args and reports whether a new job was inserted (false
	// when a unique job already existed).
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
