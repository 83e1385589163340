package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
)

func newTestReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()

	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumValue(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	reader, mp := newTestReader()
	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	red.RecordRequest(ctx, "split", observability.StatusOK, 100*time.Millisecond)
	red.RecordRequest(ctx, "split", observability.StatusError, time.Second)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumValue(t, findMetric(rm, "chunksplit.requests.total")))
	assert.Equal(t, int64(1), sumValue(t, findMetric(rm, "chunksplit.errors.total")))
	assert.NotNil(t, findMetric(rm, "chunksplit.request.duration.seconds"))
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	reader, mp := newTestReader()
	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	done := red.TrackInflight(context.Background(), "split")
	assert.Equal(t, int64(1), sumValue(t, findMetric(collectMetrics(t, reader), "chunksplit.inflight.requests")))

	done()
	assert.Equal(t, int64(0), sumValue(t, findMetric(collectMetrics(t, reader), "chunksplit.inflight.requests")))
}

func TestREDMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var red *observability.REDMetrics

	assert.NotPanics(t, func() {
		red.RecordRequest(context.Background(), "split", observability.StatusOK, time.Second)
		red.TrackInflight(context.Background(), "split")()
	})
}

func TestSplitMetrics_RecordPass(t *testing.T) {
	t.Parallel()

	reader, mp := newTestReader()
	sm, err := observability.NewSplitMetrics(mp.Meter("test"))
	require.NoError(t, err)

	sm.RecordPass(context.Background(), observability.SplitPassStats{
		SharedModules:  7,
		Windows:        2,
		ResplitWindows: 1,
		Duration:       time.Millisecond,
		ChunkSizes: []observability.ChunkModuleCount{
			{Modules: 4},
			{Modules: 2, Resplit: true},
			{Modules: 1, Resplit: true},
		},
	})

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(7), sumValue(t, findMetric(rm, "chunksplit.split.shared_modules.total")))
	assert.Equal(t, int64(2), sumValue(t, findMetric(rm, "chunksplit.split.windows.total")))
	assert.Equal(t, int64(1), sumValue(t, findMetric(rm, "chunksplit.split.resplit_windows.total")))
	assert.Equal(t, int64(3), sumValue(t, findMetric(rm, "chunksplit.split.chunks_created.total")))
	assert.NotNil(t, findMetric(rm, "chunksplit.split.chunk.modules"))
	assert.NotNil(t, findMetric(rm, "chunksplit.split.pass.duration.seconds"))
}

func TestSplitMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var sm *observability.SplitMetrics

	assert.NotPanics(t, func() {
		sm.RecordPass(context.Background(), observability.SplitPassStats{SharedModules: 1})
	})
}
