package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestObservability_RecordsJobMetrics(t *testing.T) {
	reader := metric.NewManualReader()
	obs := NewWithReader("sms-ride-workers", reader)
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "parse-sms-message", "completed")
	obs.RecordJobProcessed(ctx, "parse-sms-message", "completed")
	obs.RecordJobDuration(ctx, "parse-sms-message", 15*time.Millisecond, "completed")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	counter, ok := byName["jobs.processed"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(2), counter.DataPoints[0].Value)

	hist, ok := byName["jobs.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(context.Background(), "x", "failed")
		obs.RecordJobDuration(context.Background(), "x", time.Second, "failed")
		obs.Shutdown()
	})
}
