package metrics_test

import (
	"context"
	"referralflow/pkg/metrics"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader sdkmetric.Reader) map[string]metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}

	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()

	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}

	return total
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()

	// recording before any recorder is installed is a no-op
	metrics.FetchFinished(ctx, metrics.OutcomeSuccess, 3)

	reader := sdkmetric.NewManualReader()
	r, err := metrics.NewRecorder(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)
	metrics.Use(r)
	t.Cleanup(func() { metrics.Use(nil) })

	metrics.FetchFinished(ctx, metrics.OutcomeSuccess, 3)
	metrics.FetchFinished(ctx, metrics.OutcomeFailure, 0)
	metrics.DeliveryFinished(ctx, metrics.OutcomeSuccess)
	metrics.DeliveryFinished(ctx, metrics.OutcomeSuccess)
	metrics.DeliveryFinished(ctx, metrics.OutcomeFailure)
	metrics.ExtractionFinished(ctx, "huggingface", metrics.OutcomeFailure)
	metrics.FallbackUsed(ctx, "huggingface")
	metrics.Enqueued(ctx, "local")
	metrics.RunCompleted(ctx, "fallback", 1500*time.Millisecond)

	data := collect(t, reader)
	require.Equal(t, int64(1), sumFor(t, data["scraper_fetches_total"], "outcome", metrics.OutcomeSuccess))
	require.Equal(t, int64(1), sumFor(t, data["scraper_fetches_total"], "outcome", metrics.OutcomeFailure))
	require.Equal(t, int64(2), sumFor(t, data["mail_deliveries_total"], "outcome", metrics.OutcomeSuccess))
	require.Equal(t, int64(1), sumFor(t, data["pipeline_runs_total"], "profile_source", "fallback"))
	require.Equal(t, int64(1), sumFor(t, data["pipeline_enqueued_total"], "queue", "local"))
	require.Equal(t, int64(1), sumFor(t, data["pipeline_extractions_total"], "provider", "huggingface"))
	require.Equal(t, int64(1), sumFor(t, data["pipeline_fallback_profiles_total"], "provider", "huggingface"))

	postings, ok := data["scraper_postings_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, postings.DataPoints, 1)
	require.Equal(t, int64(3), postings.DataPoints[0].Value)

	hist, ok := data["pipeline_run_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	require.Equal(t, uint64(1), hist.DataPoints[0].Count)
}
