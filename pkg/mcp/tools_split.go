package mcp

import (
	"bytes"
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
	"github.com/Sumatoshi-tech/chunksplit/pkg/pipeline"
	"github.com/Sumatoshi-tech/chunksplit/pkg/report"
	"github.com/Sumatoshi-tech/chunksplit/pkg/snapshot"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
)

// PlanOutput is the split_plan result.
type PlanOutput struct {
	Windows       []WindowOutput `json:"windows"`
	Batches       []BatchOutput  `json:"batches"`
	SharedModules int            `json:"shared_modules"`
}

// WindowOutput describes one count-capped window.
type WindowOutput struct {
	Modules      int     `json:"modules"`
	RawSize      float64 `json:"raw_size"`
	WeightedSize float64 `json:"weighted_size"`
}

// BatchOutput describes one future chunk.
type BatchOutput struct {
	Modules []chunkgraph.ModuleID `json:"modules"`
	RawSize float64               `json:"raw_size"`
	Window  int                   `json:"window"`
	Resplit bool                  `json:"resplit"`
}

// ApplyOutput is the split_apply result.
type ApplyOutput struct {
	Report   report.Document `json:"report"`
	Diff     string          `json:"diff"`
	Snapshot string          `json:"snapshot,omitempty"`
}

// ValidateOutput is the snapshot_validate result.
type ValidateOutput struct {
	Violations []snapshot.SchemaError `json:"violations,omitempty"`
	GraphError string                 `json:"graph_error,omitempty"`
	Valid      bool                   `json:"valid"`
}

func (s *Server) handlePlan(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input PlanInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	opts, err := s.splitOptions(input.MaxModulesPerChunk, input.MaxSizePerChunk)
	if err != nil {
		return errorResult(err)
	}

	compilation, err := loadCompilation(input.Snapshot, input.Path)
	if err != nil {
		return errorResult(err)
	}

	plan, err := splitchunks.New(opts...).Plan(ctx, compilation)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(newPlanOutput(plan))
}

func newPlanOutput(plan *splitchunks.Plan) PlanOutput {
	out := PlanOutput{
		SharedModules: len(plan.Shared),
		Windows:       make([]WindowOutput, len(plan.Windows)),
		Batches:       make([]BatchOutput, len(plan.Batches)),
	}

	for i, window := range plan.Windows {
		out.Windows[i] = WindowOutput{
			Modules:      len(window.Modules),
			RawSize:      window.RawSize,
			WeightedSize: window.WeightedSize,
		}
	}

	for i, batch := range plan.Batches {
		out.Batches[i] = BatchOutput{
			Modules: batch.ModuleIDs(),
			RawSize: batch.RawSize,
			Window:  batch.Window,
			Resplit: batch.Resplit,
		}
	}

	return out
}

func (s *Server) handleApply(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ApplyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	opts, err := s.splitOptions(input.MaxModulesPerChunk, input.MaxSizePerChunk)
	if err != nil {
		return errorResult(err)
	}

	compilation, err := loadCompilation(input.Snapshot, input.Path)
	if err != nil {
		return errorResult(err)
	}

	before := compilation.Manifest()
	lastUkey := compilation.Chunks.MaxUkey()

	pipe := pipeline.New(splitchunks.New(opts...))
	pipe.Logger = s.logger
	pipe.VerifyGraph = true

	if s.tracer != nil {
		pipe.Tracer = s.tracer
	}

	err = pipe.Run(ctx, compilation)
	if err != nil {
		return errorResult(err)
	}

	out := ApplyOutput{
		Report: report.NewDocument(report.SummarizeCreated(compilation, lastUkey)),
		Diff:   report.ManifestDiff(before, compilation.Manifest()),
	}

	if input.IncludeSnapshot {
		var buf bytes.Buffer

		err = snapshot.Encode(&buf, compilation)
		if err != nil {
			return errorResult(err)
		}

		out.Snapshot = buf.String()
	}

	return jsonResult(out)
}

func handleValidate(
	_ context.Context, _ *mcpsdk.CallToolRequest, input ValidateInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := readSnapshotInput(input.Snapshot, input.Path)
	if err != nil {
		return errorResult(err)
	}

	violations, err := snapshot.ValidateSchema(data)
	if err != nil {
		return errorResult(err)
	}

	out := ValidateOutput{Violations: violations}

	if len(violations) == 0 {
		_, err = snapshot.Decode(data)
		if err != nil && !errors.Is(err, snapshot.ErrSchema) {
			out.GraphError = err.Error()
		}
	}

	out.Valid = len(out.Violations) == 0 && out.GraphError == ""

	return jsonResult(out)
}
