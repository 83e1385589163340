package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricSharedModules = "chunksplit.split.shared_modules.total"
	metricWindows       = "chunksplit.split.windows.total"
	metricResplits      = "chunksplit.split.resplit_windows.total"
	metricChunksCreated = "chunksplit.split.chunks_created.total"
	metricPassDuration  = "chunksplit.split.pass.duration.seconds"
	metricChunkModules  = "chunksplit.split.chunk.modules"

	attrResplit = "resplit"
)

// moduleBucketBoundaries spans single-module chunks up to the default count cap.
var moduleBucketBoundaries = []float64{1, 5, 10, 25, 50, 100, 250, 500}

// SplitMetrics holds OTel instruments for the shared-module split pass.
type SplitMetrics struct {
	sharedModules metric.Int64Counter
	windows       metric.Int64Counter
	resplits      metric.Int64Counter
	chunksCreated metric.Int64Counter
	passDuration  metric.Float64Histogram
	chunkModules  metric.Float64Histogram
}

// SplitPassStats summarizes one pass, decoupled from the pass's own types.
type SplitPassStats struct {
	// ChunkSizes holds the module count of every created chunk and whether it
	// came from a size re-split.
	ChunkSizes     []ChunkModuleCount
	SharedModules  int
	Windows        int
	ResplitWindows int
	Duration       time.Duration
}

// ChunkModuleCount is the module count of one created chunk.
type ChunkModuleCount struct {
	Modules int
	Resplit bool
}

// NewSplitMetrics creates split metric instruments from the given meter.
func NewSplitMetrics(mt metric.Meter) (*SplitMetrics, error) {
	b := newMetricBuilder(mt)

	sm := &SplitMetrics{
		sharedModules: b.counter(metricSharedModules, "Modules referenced by more than one chunk", "{module}"),
		windows:       b.counter(metricWindows, "Count-capped windows evaluated", "{window}"),
		resplits:      b.counter(metricResplits, "Windows cut by size", "{window}"),
		chunksCreated: b.counter(metricChunksCreated, "Chunks created for shared modules", "{chunk}"),
		passDuration:  b.histogram(metricPassDuration, "Split pass duration in seconds", "s", durationBucketBoundaries...),
		chunkModules:  b.histogram(metricChunkModules, "Modules per created chunk", "{module}", moduleBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return sm, nil
}

// RecordPass records the statistics of a completed pass.
// Safe to call on a nil receiver (no-op).
func (sm *SplitMetrics) RecordPass(ctx context.Context, stats SplitPassStats) {
	if sm == nil {
		return
	}

	sm.sharedModules.Add(ctx, int64(stats.SharedModules))
	sm.windows.Add(ctx, int64(stats.Windows))
	sm.resplits.Add(ctx, int64(stats.ResplitWindows))
	sm.passDuration.Record(ctx, stats.Duration.Seconds())

	for _, chunk := range stats.ChunkSizes {
		attrs := metric.WithAttributes(attribute.Bool(attrResplit, chunk.Resplit))
		sm.chunksCreated.Add(ctx, 1, attrs)
		sm.chunkModules.Record(ctx, float64(chunk.Modules), attrs)
	}
}
