// Package metrics records pipeline metrics through OpenTelemetry and exports
// them in Prometheus format. Until Setup (or Use) is called every recording
// function is a no-op.
package metrics

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120} //nolint: gochecknoglobals

// ScopeName is the instrumentation scope of every instrument.
const ScopeName = "referralflow"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Recorder holds the instruments.
type Recorder struct {
	runs        metric.Int64Counter
	runDuration metric.Float64Histogram
	extractions metric.Int64Counter
	fallbacks   metric.Int64Counter
	fetches     metric.Int64Counter
	postings    metric.Int64Counter
	deliveries  metric.Int64Counter
	enqueued    metric.Int64Counter
}

// NewRecorder creates the instruments on mp.
func NewRecorder(mp metric.MeterProvider) (*Recorder, error) {
	m := mp.Meter(ScopeName)
	r := &Recorder{}

	var err error
	if r.runs, err = m.Int64Counter("pipeline_runs_total",
		metric.WithDescription("Completed pipeline runs by profile source")); err != nil {
		return nil, fmt.Errorf("could not create runs counter: %w", err)
	}
	if r.runDuration, err = m.Float64Histogram("pipeline_run_duration_seconds",
		metric.WithDescription("Wall time of a pipeline run"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...)); err != nil {
		return nil, fmt.Errorf("could not create run duration histogram: %w", err)
	}
	if r.extractions, err = m.Int64Counter("pipeline_extractions_total",
		metric.WithDescription("Profile extractions by outcome")); err != nil {
		return nil, fmt.Errorf("could not create extractions counter: %w", err)
	}
	if r.fallbacks, err = m.Int64Counter("pipeline_fallback_profiles_total",
		metric.WithDescription("Runs that used the keyword profile after the model failed, by provider")); err != nil {
		return nil, fmt.Errorf("could not create fallbacks counter: %w", err)
	}
	if r.fetches, err = m.Int64Counter("scraper_fetches_total",
		metric.WithDescription("Listing page fetches by outcome")); err != nil {
		return nil, fmt.Errorf("could not create fetches counter: %w", err)
	}
	if r.postings, err = m.Int64Counter("scraper_postings_total",
		metric.WithDescription("Job postings parsed from listing pages")); err != nil {
		return nil, fmt.Errorf("could not create postings counter: %w", err)
	}
	if r.deliveries, err = m.Int64Counter("mail_deliveries_total",
		metric.WithDescription("Application e-mails by outcome")); err != nil {
		return nil, fmt.Errorf("could not create deliveries counter: %w", err)
	}
	if r.enqueued, err = m.Int64Counter("pipeline_enqueued_total",
		metric.WithDescription("Accepted résumé submissions by queue")); err != nil {
		return nil, fmt.Errorf("could not create enqueued counter: %w", err)
	}

	return r, nil
}

var current atomic.Pointer[Recorder] //nolint: gochecknoglobals

var nop = func() *Recorder { //nolint: gochecknoglobals
	r, _ := NewRecorder(noop.NewMeterProvider())

	return r
}()

func get() *Recorder {
	if r := current.Load(); r != nil {
		return r
	}

	return nop
}

// Use installs r as the process-wide recorder.
func Use(r *Recorder) { current.Store(r) }

// Setup creates a MeterProvider exporting to reg, installs it as the global
// OpenTelemetry provider and as the process-wide recorder.
func Setup(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	otel.SetMeterProvider(mp)

	r, err := NewRecorder(mp)
	if err != nil {
		return nil, err
	}
	Use(r)

	return mp, nil
}

// RunCompleted records one finished pipeline run.
func RunCompleted(ctx context.Context, profileSource string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("profile_source", profileSource))
	r := get()
	r.runs.Add(ctx, 1, attrs)
	r.runDuration.Record(ctx, d.Seconds(), attrs)
}

// ExtractionFinished records one call to the extraction provider.
func ExtractionFinished(ctx context.Context, provider, outcome string) {
	get().extractions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome)))
}

// FallbackUsed records a run that fell back to keyword matching after
// provider failed.
func FallbackUsed(ctx context.Context, provider string) {
	get().fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// FetchFinished records one listing page fetch.
func FetchFinished(ctx context.Context, outcome string, postings int) {
	r := get()
	r.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if postings > 0 {
		r.postings.Add(ctx, int64(postings))
	}
}

// DeliveryFinished records the fate of one drafted application.
func DeliveryFinished(ctx context.Context, outcome string) {
	get().deliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Enqueued records an accepted submission.
func Enqueued(ctx context.Context, queue string) {
	get().enqueued.Add(ctx, 1, metric.WithAttributes(attribute.String("queue", queue)))
}
