package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"

	"sms-ride-workers/internal/common/logger"
	"sms-ride-workers/internal/common/metrics"
	"sms-ride-workers/internal/common/observability"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestInstrument_CallsHandler(t *testing.T) {
	obs := observability.NewWithReader("test", metric.NewManualReader())
	defer obs.Shutdown()

	var gotKey int64
	var activeDuring float64
	handler := Instrument("instrument-test", func(client worker.JobClient, job entities.Job) {
		gotKey = job.Key
		activeDuring = gaugeValue(t, metrics.WorkerJobsActive.WithLabelValues("instrument-test"))
	}, obs)

	handler(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42}})

	assert.Equal(t, int64(42), gotKey)
	assert.Equal(t, float64(1), activeDuring)
	assert.Equal(t, float64(0), gaugeValue(t, metrics.WorkerJobsActive.WithLabelValues("instrument-test")))
}

func TestRetryWithBackoff(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), rc, logger.NewTestLogger(t), "op", func() error {
			calls++
			if calls < 3 {
				return errors.New("unavailable")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		opErr := errors.New("connection refused")
		err := RetryWithBackoff(context.Background(), rc, logger.NewNoOpLogger(), "op", func() error {
			calls++
			return opErr
		})
		require.ErrorIs(t, err, opErr)
		assert.Equal(t, 3, calls)
		assert.Contains(t, err.Error(), "op failed after 3 attempts")
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		slow := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour}
		err := RetryWithBackoff(ctx, slow, logger.NewNoOpLogger(), "op", func() error {
			return errors.New("unavailable")
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}
