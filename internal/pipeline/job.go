package pipeline

import (
	"referralflow/pkg/domain"

	"github.com/riverqueue/river"
)

// JobArgs carries an accepted résumé through the durable queue.
type JobArgs struct {
	Payload domain.ResumePayload `json:"payload"`
}

// Kind returns the River job kind used to register and dispatch the pipeline worker.
func (args JobArgs) Kind() string { return "ResumePipelineJob" }

// InsertOpts makes runs single-shot. A run that stops part way is never
// retried, so applications are not sent twice.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1}
}
