package pipeline

import (
	"context"
	"referralflow/pkg/domain"
)

//go:generate mockgen -package mockpipeline -source=interface.go -destination=mock/mockpipeline.go *

// Searcher finds job postings on listing pages. A Searcher serves one run and
// is closed when the run ends.
type Searcher interface {
	SearchJobs(ctx context.Context, urls []string, maxResults int) ([]domain.JobPosting, error)
	Close() error
}

// Renderer renders a named template.
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
}

// Sender delivers one drafted application.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Runner executes a pipeline run to completion.
type Runner interface {
	Run(ctx context.Context, payload domain.ResumePayload) Report
}

// Enqueuer accepts a payload for background execution. A nil error means the
// payload was accepted, not that the run has finished or will succeed.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload domain.ResumePayload) error
}
