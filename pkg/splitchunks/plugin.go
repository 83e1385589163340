// Package splitchunks moves modules shared by several chunks into new
// dedicated chunks, capped by module count and estimated size, so that an
// incremental rebuild recompiles and retransfers each shared module once.
package splitchunks

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
	"github.com/Sumatoshi-tech/chunksplit/pkg/pipeline"
)

// PluginName identifies the pass in pipelines, logs and metrics.
const PluginName = "DevFriendlySplitChunksPlugin"

// Plan is the read-only outcome of detection, ordering and grouping.
type Plan struct {
	// Shared holds the shared modules in priority order.
	Shared  []SharedModule
	Windows []Window
	Batches []ChunkInfo
}

// ResplitWindows counts the windows that were cut by size.
func (p *Plan) ResplitWindows() int {
	seen := -1
	count := 0

	for _, batch := range p.Batches {
		if batch.Resplit && batch.Window != seen {
			seen = batch.Window
			count++
		}
	}

	return count
}

// Plugin is the shared-module split pass.
type Plugin struct {
	opts options
}

var (
	_ pipeline.Plugin       = (*Plugin)(nil)
	_ pipeline.Configurable = (*Plugin)(nil)
)

// New creates the pass with the given options.
func New(opts ...Option) *Plugin {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Plugin{opts: o}
}

// Name returns PluginName.
func (p *Plugin) Name() string {
	return PluginName
}

// MaxModulesPerChunk returns the effective module-count cap.
func (p *Plugin) MaxModulesPerChunk() int {
	return p.opts.maxModulesPerChunk
}

// MaxSizePerChunk returns the effective size cap.
func (p *Plugin) MaxSizePerChunk() float64 {
	return p.opts.maxSizePerChunk
}

// ListConfigurationOptions describes the pass's tunables.
func (p *Plugin) ListConfigurationOptions() []pipeline.ConfigurationOption {
	return []pipeline.ConfigurationOption{
		{
			Name:        "split.max_modules_per_chunk",
			Description: "Maximum number of shared modules per window.",
			Flag:        "max-modules-per-chunk",
			Type:        pipeline.IntConfigurationOption,
			Default:     DefaultMaxModulesPerChunk,
		},
		{
			Name:        "split.max_size_per_chunk",
			Description: "Size cap per window; weighted estimate decides, raw size cuts.",
			Flag:        "max-size-per-chunk",
			Type:        pipeline.SizeConfigurationOption,
			Default:     DefaultMaxSizePerChunk,
		},
		{
			Name:        "split.workers",
			Description: "Goroutines for detection, estimation and linking (0 means GOMAXPROCS).",
			Flag:        "workers",
			Type:        pipeline.IntConfigurationOption,
			Default:     0,
		},
	}
}

// OptimizeChunks runs the pass over a compilation.
func (p *Plugin) OptimizeChunks(ctx context.Context, compilation *chunkgraph.Compilation) error {
	return p.Apply(ctx, compilation)
}

// Plan detects, orders and groups shared modules without touching the graph.
func (p *Plugin) Plan(ctx context.Context, g Graph) (*Plan, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	return p.plan(ctx, g)
}

func (p *Plugin) plan(ctx context.Context, g Graph) (*Plan, error) {
	_, span := p.opts.tracer.Start(ctx, "splitchunks.detect")
	shared := DetectSharedModules(g, p.opts.workers)
	SortSharedModules(shared)
	span.SetAttributes(attribute.Int("shared_modules", len(shared)))
	span.End()

	_, span = p.opts.tracer.Start(ctx, "splitchunks.group")
	defer span.End()

	windows, batches, err := GroupSharedModules(g, shared, p.opts.maxModulesPerChunk, p.opts.maxSizePerChunk, p.opts.workers)
	if err != nil {
		recordSpanError(span, err)

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("windows", len(windows)),
		attribute.Int("batches", len(batches)),
	)

	return &Plan{Shared: shared, Windows: windows, Batches: batches}, nil
}

// Apply runs the whole pass against g. The context is only consulted before
// the pass starts; once rewriting begins it runs to completion.
func (p *Plugin) Apply(ctx context.Context, g Graph) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	start := time.Now()

	ctx, span := p.opts.tracer.Start(ctx, "splitchunks.apply")
	defer span.End()

	plan, err := p.plan(ctx, g)
	if err != nil {
		recordSpanError(span, err)

		return err
	}

	if len(plan.Shared) == 0 {
		p.opts.metrics.RecordPass(ctx, passStats(plan, time.Since(start)))
		p.opts.logger.DebugContext(ctx, "no shared modules")

		return nil
	}

	synthesized, err := p.synthesize(ctx, g, plan.Batches)
	if err != nil {
		recordSpanError(span, err)

		return err
	}

	err = p.rewrite(ctx, g, plan.Shared, synthesized)
	if err != nil {
		recordSpanError(span, err)

		return err
	}

	elapsed := time.Since(start)

	p.opts.metrics.RecordPass(ctx, passStats(plan, elapsed))
	p.opts.logger.InfoContext(ctx, "split shared modules",
		"shared_modules", len(plan.Shared),
		"windows", len(plan.Windows),
		"chunks", len(synthesized),
		"resplit_windows", plan.ResplitWindows(),
		"duration", elapsed,
	)

	return nil
}

func (p *Plugin) synthesize(ctx context.Context, g Graph, batches []ChunkInfo) ([]SynthesizedChunk, error) {
	_, span := p.opts.tracer.Start(ctx, "splitchunks.synthesize")
	defer span.End()

	synthesized, err := SynthesizeChunks(g, batches, p.opts.workers)
	if err != nil {
		recordSpanError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.Int("chunks", len(synthesized)))

	return synthesized, nil
}

func (p *Plugin) rewrite(ctx context.Context, g Graph, shared []SharedModule, synthesized []SynthesizedChunk) error {
	_, span := p.opts.tracer.Start(ctx, "splitchunks.rewrite")
	defer span.End()

	err := RewriteGraph(g, shared, synthesized)
	if err != nil {
		recordSpanError(span, err)

		return err
	}

	return nil
}

func passStats(plan *Plan, elapsed time.Duration) observability.SplitPassStats {
	sizes := make([]observability.ChunkModuleCount, len(plan.Batches))
	for i, batch := range plan.Batches {
		sizes[i] = observability.ChunkModuleCount{Modules: len(batch.Modules), Resplit: batch.Resplit}
	}

	return observability.SplitPassStats{
		ChunkSizes:     sizes,
		SharedModules:  len(plan.Shared),
		Windows:        len(plan.Windows),
		ResplitWindows: plan.ResplitWindows(),
		Duration:       elapsed,
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
