package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
	"github.com/Sumatoshi-tech/chunksplit/pkg/pipeline"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
)

var errBoom = errors.New("boom")

type funcPlugin struct {
	fn   func(*chunkgraph.Compilation) error
	name string
}

func (f funcPlugin) Name() string { return f.name }

func (f funcPlugin) OptimizeChunks(_ context.Context, compilation *chunkgraph.Compilation) error {
	return f.fn(compilation)
}

func sharedCompilation(t *testing.T) *chunkgraph.Compilation {
	t.Helper()

	comp := chunkgraph.NewCompilation()

	for _, id := range []chunkgraph.ModuleID{"a", "b", "c"} {
		require.NoError(t, comp.ModuleGraph.Add(&chunkgraph.Module{ID: id, Type: chunkgraph.ModuleTypeJS}))
	}

	for _, ukey := range []chunkgraph.ChunkUkey{1, 2} {
		require.NoError(t, comp.AddChunk(chunkgraph.NewChunk(ukey, chunkgraph.ChunkKindNormal), chunkgraph.NewChunkGraphChunk()))
	}

	comp.ChunkGraph.ConnectChunkAndModule(1, "a")
	comp.ChunkGraph.ConnectChunkAndModule(1, "b")
	comp.ChunkGraph.ConnectChunkAndModule(2, "b")
	comp.ChunkGraph.ConnectChunkAndModule(2, "c")

	return comp
}

func TestPipeline_RunsPluginsInOrder(t *testing.T) {
	t.Parallel()

	var order []string

	record := func(name string) pipeline.Plugin {
		return funcPlugin{name: name, fn: func(*chunkgraph.Compilation) error {
			order = append(order, name)

			return nil
		}}
	}

	p := pipeline.New(record("first"), record("second"))

	require.NoError(t, p.Run(context.Background(), chunkgraph.NewCompilation()))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPipeline_StopsOnFailure(t *testing.T) {
	t.Parallel()

	called := false

	p := pipeline.New(
		funcPlugin{name: "broken", fn: func(*chunkgraph.Compilation) error { return errBoom }},
		funcPlugin{name: "never", fn: func(*chunkgraph.Compilation) error {
			called = true

			return nil
		}},
	)

	err := p.Run(context.Background(), chunkgraph.NewCompilation())
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "plugin broken")
	assert.False(t, called)
}

func TestPipeline_Empty(t *testing.T) {
	t.Parallel()

	err := pipeline.New().Run(context.Background(), chunkgraph.NewCompilation())
	require.ErrorIs(t, err, pipeline.ErrNoPlugins)
}

func TestPipeline_VerifyGraph(t *testing.T) {
	t.Parallel()

	corrupt := funcPlugin{name: "corrupt", fn: func(c *chunkgraph.Compilation) error {
		// Registers the chunk graph side of chunk 9 without a chunk.
		c.ChunkGraph.ConnectChunkAndModule(9, "a")

		return nil
	}}

	p := pipeline.New(corrupt)
	require.NoError(t, p.Run(context.Background(), sharedCompilation(t)))

	p.VerifyGraph = true
	err := p.Run(context.Background(), sharedCompilation(t))
	require.ErrorIs(t, err, chunkgraph.ErrInconsistentGraph)
}

func TestPipeline_SplitChunksPlugin(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	p := pipeline.New(splitchunks.New())
	p.VerifyGraph = true
	p.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	comp := sharedCompilation(t)

	require.NoError(t, p.Run(context.Background(), comp))
	assert.Equal(t, 3, comp.Chunks.Len())
	assert.Contains(t, buf.String(), "plugin=DevFriendlySplitChunksPlugin")
}
