// Package pipeline runs the résumé-to-outreach pipeline: extract a profile,
// search listing pages for matching jobs, then draft and send one application
// per job. A run never fails as a whole. Every stage absorbs its own failures
// and the run always reaches StageCompleted.
package pipeline

import (
	"context"
	"errors"
	"referralflow/internal/config"
	"referralflow/pkg/domain"
	"referralflow/pkg/extractor"
	"referralflow/pkg/logger"
	"referralflow/pkg/metrics"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Stage is a state of a pipeline run.
type Stage string

const (
	StageReceived   Stage = "Received"
	StageExtracting Stage = "Extracting"
	StageSearching  Stage = "Searching"
	StageDrafting   Stage = "Drafting"
	StageSending    Stage = "Sending"
	StageCompleted  Stage = "Completed"
)

// DefaultMaxJobs caps the postings drafted per run.
const DefaultMaxJobs = 3

// Template names used when Options leave them empty.
const (
	DefaultSubjectTemplate = "application_subject.txt"
	DefaultTextTemplate    = "application_email.txt"
)

// SearcherFactory creates the Searcher for one run.
type SearcherFactory func() (Searcher, error)

// Options configure a run. These settings are typically derived from
// application configuration.
type Options struct {
	// MaxJobs caps how many postings are drafted per run.
	MaxJobs int
	// SearchBaseURLs and Locations are combined into the listing pages to fetch.
	SearchBaseURLs []string
	Locations      []string
	Fallback       FallbackOptions
	// SubjectTemplate and TextTemplate are required, HTMLTemplate is optional.
	SubjectTemplate string
	TextTemplate    string
	HTMLTemplate    string
	// ExtractorName labels model extractions in metrics.
	ExtractorName string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxJobs:        cfg.Search.MaxJobs,
		SearchBaseURLs: cfg.Search.BaseURLs,
		Locations:      cfg.Search.Locations,
		Fallback: FallbackOptions{
			Vocabulary:   cfg.Fallback.Vocabulary,
			DefaultSkill: cfg.Fallback.DefaultSkill,
			Position:     cfg.Fallback.Position,
			Years:        cfg.Fallback.Years,
		},
		SubjectTemplate: cfg.Templates.Subject,
		TextTemplate:    cfg.Templates.Text,
		HTMLTemplate:    cfg.Templates.HTML,
		ExtractorName:   cfg.Extractor.Provider,
	}
}

// Report summarizes a finished run. It is returned for logging and tests;
// nothing reports it back to the submitter.
type Report struct {
	RunID   domain.RunID
	Profile domain.Profile
	// ExtractionError is set when the fallback profile was used.
	ExtractionError string
	Queries         []string
	Jobs            []domain.JobPosting
	Outcomes        []domain.DispatchOutcome
	Stages          []Stage
	Duration        time.Duration
}

// Sent returns the number of applications delivered.
func (r Report) Sent() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Sent {
			n++
		}
	}

	return n
}

// Orchestrator executes pipeline runs. It holds no per-run state and is safe
// for concurrent use.
type Orchestrator struct {
	extractor   extractor.Extractor
	newSearcher SearcherFactory
	renderer    Renderer
	sender      Sender
	opts        Options
}

var _ Runner = (*Orchestrator)(nil)

// New creates an Orchestrator. A nil extractor always uses the fallback
// profile.
func New(ext extractor.Extractor, newSearcher SearcherFactory, renderer Renderer, sender Sender, opts Options) *Orchestrator {
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = DefaultMaxJobs
	}
	if opts.SubjectTemplate == "" {
		opts.SubjectTemplate = DefaultSubjectTemplate
	}
	if opts.TextTemplate == "" {
		opts.TextTemplate = DefaultTextTemplate
	}
	if opts.ExtractorName == "" {
		opts.ExtractorName = "model"
	}
	opts.Fallback = opts.Fallback.withDefaults()

	return &Orchestrator{
		extractor:   ext,
		newSearcher: newSearcher,
		renderer:    renderer,
		sender:      sender,
		opts:        opts,
	}
}

type run struct {
	ctx    context.Context
	report *Report
}

func (r *run) enter(stage Stage, fields ...zap.Field) {
	r.report.Stages = append(r.report.Stages, stage)
	logger.Info(r.ctx, "pipeline stage changed", append(fields, zap.String("stage", string(stage)))...)
}

// Run executes the pipeline for payload and returns once every discovered job
// has been attempted.
func (o *Orchestrator) Run(ctx context.Context, payload domain.ResumePayload) Report {
	start := time.Now()
	report := Report{RunID: payload.RunID}
	ctx = logger.WithFields(logger.Named(ctx, "pipeline"),
		zap.Stringer("runID", payload.RunID),
		zap.String("email", payload.Email))
	r := &run{ctx: ctx, report: &report}

	r.enter(StageReceived)

	r.enter(StageExtracting)
	report.Profile = o.extract(ctx, payload.Text, &report)

	position := report.Profile.PrimaryPosition()
	r.enter(StageSearching, zap.String("position", position))
	report.Jobs = o.search(ctx, position, &report)

	for _, job := range report.Jobs {
		report.Outcomes = append(report.Outcomes, o.dispatch(r, payload, report.Profile, job))
	}

	report.Duration = time.Since(start)
	r.enter(StageCompleted,
		zap.Int("jobs", len(report.Jobs)),
		zap.Int("sent", report.Sent()),
		zap.Duration("duration", report.Duration))
	metrics.RunCompleted(ctx, string(report.Profile.Source), report.Duration)

	return report
}

func (o *Orchestrator) extract(ctx context.Context, text string, report *Report) domain.Profile {
	var (
		profile domain.Profile
		err     error
	)
	if o.extractor == nil {
		err = extractor.MissingCredential(errors.New("no extractor configured"))
	} else {
		profile, err = o.extractor.Extract(ctx, text)
	}

	if err == nil {
		metrics.ExtractionFinished(ctx, o.opts.ExtractorName, metrics.OutcomeSuccess)
		if profile.Source == "" {
			profile.Source = domain.ProfileSourceModel
		}
		profile.Positions = nonBlank(profile.Positions)
		if len(profile.Positions) == 0 {
			profile.Positions = []string{o.opts.Fallback.Position}
		}
		logger.Info(ctx, "profile extracted",
			zap.Strings("skills", profile.TopSkills),
			zap.Strings("positions", profile.Positions))

		return profile
	}

	metrics.ExtractionFinished(ctx, o.opts.ExtractorName, metrics.OutcomeFailure)
	report.ExtractionError = err.Error()
	profile = FallbackProfile(text, o.opts.Fallback)
	metrics.FallbackUsed(ctx, o.opts.ExtractorName)
	logger.Warn(ctx, "extraction failed, using fallback profile",
		zap.Error(err),
		zap.Strings("skills", profile.TopSkills))

	return profile
}

func nonBlank(in []string) []string {
	out := in[:0:0]
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

// search returns nil on any failure. The searcher is closed on every path.
func (o *Orchestrator) search(ctx context.Context, position string, report *Report) []domain.JobPosting {
	urls, err := BuildQueryURLs(position, o.opts.SearchBaseURLs, o.opts.Locations)
	if err != nil {
		logger.Warn(ctx, "could not build search URLs", zap.Error(err))

		return nil
	}
	report.Queries = urls

	if o.newSearcher == nil {
		logger.Warn(ctx, "no searcher configured")

		return nil
	}
	searcher, err := o.newSearcher()
	if err != nil {
		logger.Warn(ctx, "could not create searcher", zap.Error(err))

		return nil
	}
	defer func() {
		if err := searcher.Close(); err != nil {
			logger.Warn(ctx, "could not close searcher", zap.Error(err))
		}
	}()

	jobs, err := searcher.SearchJobs(ctx, urls, o.opts.MaxJobs)
	if err != nil {
		logger.Warn(ctx, "job search failed, treating as no jobs found", zap.Error(err))

		return nil
	}
	if len(jobs) > o.opts.MaxJobs {
		jobs = jobs[:o.opts.MaxJobs]
	}
	logger.Info(ctx, "job search finished", zap.Int("jobs", len(jobs)), zap.Strings("queries", urls))

	return jobs
}

func (o *Orchestrator) dispatch(r *run, payload domain.ResumePayload, profile domain.Profile, job domain.JobPosting) domain.DispatchOutcome {
	ctx := logger.WithFields(r.ctx, zap.String("jobTitle", job.Title), zap.String("company", job.Company))
	out := domain.DispatchOutcome{Job: job}
	rr := &run{ctx: ctx, report: r.report}

	rr.enter(StageDrafting)
	data := NewApplicationContext(profile, payload.Email, job)
	subject, text, html, err := o.draft(data)
	if err != nil {
		out.Error = err.Error()
		metrics.DeliveryFinished(ctx, metrics.OutcomeSkipped)
		logger.Warn(ctx, "could not draft application, skipping job", zap.Error(err))

		return out
	}

	rr.enter(StageSending)
	if o.sender == nil {
		out.Error = "no mail sender configured"
		metrics.DeliveryFinished(ctx, metrics.OutcomeSkipped)
		logger.Warn(ctx, "no mail sender configured, application not sent",
			zap.String("subject", subject),
			zap.String("body", text))

		return out
	}
	if err := o.sender.Send(ctx, payload.Email, subject, text, html); err != nil {
		out.Error = err.Error()
		metrics.DeliveryFinished(ctx, metrics.OutcomeFailure)
		logger.Warn(ctx, "could not deliver application",
			zap.Error(err),
			zap.String("subject", subject),
			zap.String("body", text))

		return out
	}

	out.Sent = true
	metrics.DeliveryFinished(ctx, metrics.OutcomeSuccess)
	logger.Info(ctx, "application sent", zap.String("subject", subject))

	return out
}

func (o *Orchestrator) draft(data domain.ApplicationContext) (subject, text, html string, err error) {
	if o.renderer == nil {
		return "", "", "", errors.New("no renderer configured")
	}
	if subject, err = o.renderer.Render(o.opts.SubjectTemplate, data); err != nil {
		return "", "", "", err
	}
	subject = strings.Join(strings.Fields(subject), " ")
	if text, err = o.renderer.Render(o.opts.TextTemplate, data); err != nil {
		return "", "", "", err
	}
	if o.opts.HTMLTemplate != "" {
		if html, err = o.renderer.Render(o.opts.HTMLTemplate, data); err != nil {
			return "", "", "", err
		}
	}

	return subject, text, html, nil
}
