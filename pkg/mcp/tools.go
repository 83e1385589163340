package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
	"github.com/Sumatoshi-tech/chunksplit/pkg/snapshot"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
)

// Tool name constants.
const (
	ToolNamePlan     = "split_plan"
	ToolNameApply    = "split_apply"
	ToolNameValidate = "snapshot_validate"
)

// Input size limits.
const (
	// MaxSnapshotInputBytes is the maximum allowed size for an inline snapshot (8 MB).
	MaxSnapshotInputBytes = 8 << 20
)

// Sentinel errors for tool input validation.
var (
	// ErrNoSnapshot indicates neither snapshot nor path was given.
	ErrNoSnapshot = errors.New("one of snapshot or path is required")
	// ErrAmbiguousSnapshot indicates both snapshot and path were given.
	ErrAmbiguousSnapshot = errors.New("snapshot and path are mutually exclusive")
	// ErrSnapshotTooLarge indicates the inline snapshot exceeds the size limit.
	ErrSnapshotTooLarge = errors.New("snapshot input exceeds maximum size")
	// ErrPathNotAbsolute indicates the path is not absolute.
	ErrPathNotAbsolute = errors.New("path must be an absolute path")
	// ErrInvalidMaxSize indicates max_size_per_chunk could not be parsed.
	ErrInvalidMaxSize = errors.New("invalid max_size_per_chunk")
)

// Input types (auto-generate JSON schemas via struct tags).

// PlanInput is the input schema for the split_plan tool.
type PlanInput struct {
	Snapshot           string `json:"snapshot,omitempty"              jsonschema:"inline compilation snapshot (YAML or JSON)"`
	Path               string `json:"path,omitempty"                  jsonschema:"absolute path to a snapshot file (.yaml or .json, optionally .lz4)"`
	MaxSizePerChunk    string `json:"max_size_per_chunk,omitempty"    jsonschema:"size cap per window, e.g. 5MB"`
	MaxModulesPerChunk int    `json:"max_modules_per_chunk,omitempty" jsonschema:"module-count cap per window"`
}

// ApplyInput is the input schema for the split_apply tool.
type ApplyInput struct {
	Snapshot           string `json:"snapshot,omitempty"              jsonschema:"inline compilation snapshot (YAML or JSON)"`
	Path               string `json:"path,omitempty"                  jsonschema:"absolute path to a snapshot file (.yaml or .json, optionally .lz4)"`
	MaxSizePerChunk    string `json:"max_size_per_chunk,omitempty"    jsonschema:"size cap per window, e.g. 5MB"`
	MaxModulesPerChunk int    `json:"max_modules_per_chunk,omitempty" jsonschema:"module-count cap per window"`
	IncludeSnapshot    bool   `json:"include_snapshot,omitempty"      jsonschema:"return the rewritten snapshot as YAML"`
}

// ValidateInput is the input schema for the snapshot_validate tool.
type ValidateInput struct {
	Snapshot string `json:"snapshot,omitempty" jsonschema:"inline compilation snapshot (YAML or JSON)"`
	Path     string `json:"path,omitempty"     jsonschema:"absolute path to a snapshot file (.yaml or .json, optionally .lz4)"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// readSnapshotInput returns the raw snapshot bytes from either source.
func readSnapshotInput(inline, path string) ([]byte, error) {
	switch {
	case inline == "" && path == "":
		return nil, ErrNoSnapshot
	case inline != "" && path != "":
		return nil, ErrAmbiguousSnapshot
	case inline != "":
		if len(inline) > MaxSnapshotInputBytes {
			return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrSnapshotTooLarge, len(inline), MaxSnapshotInputBytes)
		}

		return []byte(inline), nil
	}

	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("%w: %s", ErrPathNotAbsolute, path)
	}

	return snapshot.ReadFile(path)
}

func loadCompilation(inline, path string) (*chunkgraph.Compilation, error) {
	data, err := readSnapshotInput(inline, path)
	if err != nil {
		return nil, err
	}

	return snapshot.Decode(data)
}

// splitOptions appends per-call overrides to the server defaults.
func (s *Server) splitOptions(maxModules int, maxSize string) ([]splitchunks.Option, error) {
	opts := append([]splitchunks.Option{splitchunks.WithLogger(s.logger)}, s.split...)

	if maxModules > 0 {
		opts = append(opts, splitchunks.WithMaxModulesPerChunk(maxModules))
	}

	if maxSize != "" {
		size, err := humanize.ParseBytes(maxSize)
		if err != nil || size == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMaxSize, maxSize)
		}

		opts = append(opts, splitchunks.WithMaxSizePerChunk(float64(size)))
	}

	if s.tracer != nil {
		opts = append(opts, splitchunks.WithTracer(s.tracer))
	}

	return opts, nil
}
