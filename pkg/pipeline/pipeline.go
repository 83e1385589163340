// Package pipeline runs optimization plugins over a compilation in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
)

// ErrNoPlugins is returned by Run when the pipeline is empty.
var ErrNoPlugins = errors.New("pipeline has no plugins")

// Plugin is a chunk optimization step.
type Plugin interface {
	Name() string
	OptimizeChunks(ctx context.Context, compilation *chunkgraph.Compilation) error
}

// Pipeline runs plugins in order over one compilation.
type Pipeline struct {
	Tracer  trace.Tracer
	Logger  *slog.Logger
	Metrics *observability.REDMetrics
	Plugins []Plugin
	// VerifyGraph validates the compilation after every plugin.
	VerifyGraph bool
}

// New creates a pipeline with the global tracer and default logger.
func New(plugins ...Plugin) *Pipeline {
	return &Pipeline{
		Tracer:  otel.Tracer("chunksplit/pipeline"),
		Logger:  slog.Default(),
		Plugins: plugins,
	}
}

// Run executes every plugin. The first failure stops the pipeline.
func (p *Pipeline) Run(ctx context.Context, compilation *chunkgraph.Compilation) error {
	if len(p.Plugins) == 0 {
		return ErrNoPlugins
	}

	for _, plugin := range p.Plugins {
		err := p.runPlugin(ctx, plugin, compilation)
		if err != nil {
			return fmt.Errorf("plugin %s: %w", plugin.Name(), err)
		}
	}

	return nil
}

func (p *Pipeline) runPlugin(ctx context.Context, plugin Plugin, compilation *chunkgraph.Compilation) error {
	name := plugin.Name()

	ctx, span := p.tracer().Start(ctx, "pipeline."+name,
		trace.WithAttributes(attribute.Int("chunks.before", compilation.Chunks.Len())),
	)
	defer span.End()

	done := p.Metrics.TrackInflight(ctx, name)
	defer done()

	logger := p.logger()
	logger.DebugContext(ctx, "plugin started", "plugin", name)

	start := time.Now()

	err := plugin.OptimizeChunks(ctx, compilation)
	if err == nil && p.VerifyGraph {
		err = compilation.Validate()
	}

	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.Metrics.RecordRequest(ctx, name, observability.StatusError, elapsed)
		logger.ErrorContext(ctx, "plugin failed", "plugin", name, "duration", elapsed, "error", err)

		return err
	}

	span.SetAttributes(attribute.Int("chunks.after", compilation.Chunks.Len()))
	p.Metrics.RecordRequest(ctx, name, observability.StatusOK, elapsed)
	logger.InfoContext(ctx, "plugin finished",
		"plugin", name,
		"chunks", compilation.Chunks.Len(),
		"duration", elapsed,
	)

	return nil
}

func (p *Pipeline) tracer() trace.Tracer {
	if p.Tracer == nil {
		return otel.Tracer("chunksplit/pipeline")
	}

	return p.Tracer
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}

	return p.Logger
}
