package splitchunks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
)

func exampleA(t *testing.T) *chunkgraph.Compilation {
	t.Helper()

	return buildCompilation(t,
		[]*chunkgraph.Module{
			module("A", chunkgraph.ModuleTypeJS, 10),
			module("B", chunkgraph.ModuleTypeJS, 20),
			module("C", chunkgraph.ModuleTypeJS, 30),
		},
		[]chunkgraph.ModuleID{"A", "B"},
		[]chunkgraph.ModuleID{"B", "C"},
	)
}

func TestPlugin_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DevFriendlySplitChunksPlugin", splitchunks.New().Name())
}

func TestPlugin_Defaults(t *testing.T) {
	t.Parallel()

	plugin := splitchunks.New(splitchunks.WithMaxModulesPerChunk(0), splitchunks.WithMaxSizePerChunk(-1))

	assert.Equal(t, 500, plugin.MaxModulesPerChunk())
	assert.InDelta(t, 5_000_000.0, plugin.MaxSizePerChunk(), 0)
}

func TestPlugin_ExampleA(t *testing.T) {
	t.Parallel()

	comp := exampleA(t)

	require.NoError(t, splitchunks.New().OptimizeChunks(context.Background(), comp))
	require.NoError(t, comp.Validate())

	created := newChunks(comp, 2)
	require.Len(t, created, 1)

	z := created[0]
	assert.Equal(t, chunkgraph.ChunkUkey(3), z.Ukey)
	assert.Equal(t, []string{splitchunks.Reason}, z.Reasons)
	assert.Equal(t, chunkgraph.ChunkKindNormal, z.Kind)
	assert.Empty(t, z.Name)
	assert.Equal(t, []chunkgraph.ChunkUkey{1, 2}, z.SplitFrom)

	assert.Equal(t, []chunkgraph.ModuleID{"B"}, comp.ChunkGraph.ChunkModules(z.Ukey))
	assert.Equal(t, []chunkgraph.ModuleID{"A"}, comp.ChunkGraph.ChunkModules(1))
	assert.Equal(t, []chunkgraph.ModuleID{"C"}, comp.ChunkGraph.ChunkModules(2))
	assert.Equal(t, []chunkgraph.ChunkUkey{z.Ukey}, comp.ModuleChunks("B"))

	group, ok := comp.ChunkGroups.Get(mainGroup)
	require.True(t, ok)
	assert.Equal(t, []chunkgraph.ChunkUkey{3, 1, 2}, group.Chunks)
	assert.True(t, z.Groups.Has(mainGroup))
}

func TestPlugin_ExampleB_Windows(t *testing.T) {
	t.Parallel()

	comp := sharedByTwo(t, 1200, 1)
	plugin := splitchunks.New()

	plan, err := plugin.Plan(context.Background(), comp)
	require.NoError(t, err)

	require.Len(t, plan.Windows, 3)
	assert.Len(t, plan.Windows[0].Modules, 500)
	assert.Len(t, plan.Windows[1].Modules, 500)
	assert.Len(t, plan.Windows[2].Modules, 200)
	assert.Len(t, plan.Batches, 3)
	assert.Zero(t, plan.ResplitWindows())

	require.NoError(t, plugin.Apply(context.Background(), comp))
	assert.Len(t, newChunks(comp, 2), 3)
	require.NoError(t, comp.Validate())
}

func TestPlugin_ExampleC_WeightedTriggerRawBoundaries(t *testing.T) {
	t.Parallel()

	ids := []chunkgraph.ModuleID{"./a.jsx", "./b.jsx", "./c.jsx", "./d.jsx"}
	modules := make([]*chunkgraph.Module, len(ids))

	for i, id := range ids {
		modules[i] = module(id, chunkgraph.ModuleTypeJsx, 500_000)
	}

	comp := buildCompilation(t, modules, ids, ids)

	plan, err := splitchunks.New().Plan(context.Background(), comp)
	require.NoError(t, err)

	require.Len(t, plan.Windows, 1)
	assert.InDelta(t, 10_000_000.0, plan.Windows[0].WeightedSize, 0)
	assert.InDelta(t, 2_000_000.0, plan.Windows[0].RawSize, 0)

	require.Len(t, plan.Batches, 1)
	assert.True(t, plan.Batches[0].Resplit)
	assert.Len(t, plan.Batches[0].Modules, 4)
	assert.Equal(t, 1, plan.ResplitWindows())
}

func TestPlugin_SizeBound(t *testing.T) {
	t.Parallel()

	ids := []chunkgraph.ModuleID{"a", "b", "c", "d", "e", "huge"}
	modules := []*chunkgraph.Module{
		module("a", chunkgraph.ModuleTypeJS, 400),
		module("b", chunkgraph.ModuleTypeJS, 400),
		module("c", chunkgraph.ModuleTypeJS, 400),
		module("d", chunkgraph.ModuleTypeJS, 400),
		module("e", chunkgraph.ModuleTypeJS, 400),
		module("huge", chunkgraph.ModuleTypeJS, 3000),
	}

	comp := buildCompilation(t, modules, ids, ids)
	plugin := splitchunks.New(splitchunks.WithMaxSizePerChunk(1000))

	plan, err := plugin.Plan(context.Background(), comp)
	require.NoError(t, err)

	got := make([][]chunkgraph.ModuleID, len(plan.Batches))
	for i, batch := range plan.Batches {
		got[i] = batch.ModuleIDs()
	}

	assert.Equal(t, [][]chunkgraph.ModuleID{
		{"a", "b"},
		{"c", "d"},
		{"e"},
		{"huge"},
	}, got)

	for _, batch := range plan.Batches[:len(plan.Batches)-1] {
		if len(batch.Modules) > 1 {
			assert.LessOrEqual(t, batch.RawSize, 1000.0)
		}
	}
}

func TestPlugin_CountBound(t *testing.T) {
	t.Parallel()

	comp := sharedByTwo(t, 23, 1)
	plugin := splitchunks.New(splitchunks.WithMaxModulesPerChunk(5), splitchunks.WithWorkers(3))

	require.NoError(t, plugin.Apply(context.Background(), comp))

	created := newChunks(comp, 2)
	require.Len(t, created, 5)

	for _, chunk := range created {
		assert.LessOrEqual(t, len(comp.ChunkGraph.ChunkModules(chunk.Ukey)), 5)
	}
}

func TestPlugin_NoResidualSharing(t *testing.T) {
	t.Parallel()

	comp := buildCompilation(t,
		[]*chunkgraph.Module{
			module("a", chunkgraph.ModuleTypeJS, 1),
			module("b", chunkgraph.ModuleTypeTsx, 2),
			module("c", chunkgraph.ModuleTypeCSS, 3),
			module("d", chunkgraph.ModuleTypeJS, 4),
		},
		[]chunkgraph.ModuleID{"a", "b", "c"},
		[]chunkgraph.ModuleID{"b", "c", "d"},
		[]chunkgraph.ModuleID{"a", "b"},
	)

	require.NoError(t, splitchunks.New(splitchunks.WithMaxModulesPerChunk(1)).Apply(context.Background(), comp))
	require.NoError(t, comp.Validate())

	for _, id := range comp.ModuleIdentifiers() {
		assert.Len(t, comp.ModuleChunks(id), 1, "module %s", id)
	}

	// b has the highest ref count, then a and c tie and sort by identity.
	created := newChunks(comp, 3)
	require.Len(t, created, 3)
	assert.Equal(t, []chunkgraph.ModuleID{"b"}, comp.ChunkGraph.ChunkModules(created[0].Ukey))
	assert.Equal(t, []chunkgraph.ModuleID{"a"}, comp.ChunkGraph.ChunkModules(created[1].Ukey))
	assert.Equal(t, []chunkgraph.ModuleID{"c"}, comp.ChunkGraph.ChunkModules(created[2].Ukey))
	assert.Equal(t, []chunkgraph.ChunkUkey{1, 2, 3}, created[0].SplitFrom)
}

func TestPlugin_Deterministic(t *testing.T) {
	t.Parallel()

	first := sharedByTwo(t, 300, 20_000)
	second := sharedByTwo(t, 300, 20_000)

	opts := []splitchunks.Option{splitchunks.WithMaxModulesPerChunk(120), splitchunks.WithMaxSizePerChunk(1_000_000)}

	require.NoError(t, splitchunks.New(append(opts, splitchunks.WithWorkers(1))...).Apply(context.Background(), first))
	require.NoError(t, splitchunks.New(append(opts, splitchunks.WithWorkers(8))...).Apply(context.Background(), second))

	assert.Equal(t, first.Manifest(), second.Manifest())
	assert.Equal(t, first.Chunks.Keys(), second.Chunks.Keys())
}

func TestPlugin_IdempotentOnOutput(t *testing.T) {
	t.Parallel()

	comp := exampleA(t)
	plugin := splitchunks.New()

	require.NoError(t, plugin.Apply(context.Background(), comp))

	before := comp.Manifest()
	count := comp.Chunks.Len()

	require.NoError(t, plugin.Apply(context.Background(), comp))

	assert.Equal(t, count, comp.Chunks.Len())
	assert.Equal(t, before, comp.Manifest())
}

func TestPlugin_NoSharedModules(t *testing.T) {
	t.Parallel()

	comp := buildCompilation(t,
		[]*chunkgraph.Module{module("a", chunkgraph.ModuleTypeJS, 1), module("b", chunkgraph.ModuleTypeJS, 1)},
		[]chunkgraph.ModuleID{"a"},
		[]chunkgraph.ModuleID{"b"},
	)

	reader := sdkmetric.NewManualReader()
	metrics, err := observability.NewSplitMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	require.NoError(t, splitchunks.New(splitchunks.WithMetrics(metrics)).Apply(context.Background(), comp))
	assert.Equal(t, 2, comp.Chunks.Len())

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	var passes uint64

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if hist, ok := m.Data.(metricdata.Histogram[float64]); ok && m.Name == "chunksplit.split.pass.duration.seconds" {
				for _, dp := range hist.DataPoints {
					passes += dp.Count
				}
			}
		}
	}

	assert.Equal(t, uint64(1), passes)
}

func TestPlugin_OrderingContract(t *testing.T) {
	t.Parallel()

	spy := newSpyGraph(exampleA(t))

	require.NoError(t, splitchunks.New().Apply(context.Background(), spy))

	assert.Equal(t, []string{"split", "split", "add", "disconnect", "disconnect"}, spy.calls)
	assert.Equal(t, []chunkgraph.ModuleID{"A", "B"}, spy.splitSeen[1])
	assert.Equal(t, []chunkgraph.ModuleID{"B", "C"}, spy.splitSeen[2])
}

func TestPlugin_MissingModuleIsInvariantViolation(t *testing.T) {
	t.Parallel()

	spy := newSpyGraph(exampleA(t))
	spy.hidden["B"] = true

	err := splitchunks.New().Apply(context.Background(), spy)
	require.ErrorIs(t, err, splitchunks.ErrInvariantViolation)

	var invariant *splitchunks.InvariantError
	require.True(t, errors.As(err, &invariant))
	assert.Equal(t, chunkgraph.ModuleID("B"), invariant.Module)

	assert.Empty(t, spy.calls)
	assert.Equal(t, 2, spy.Chunks.Len())
}

func TestPlugin_CanceledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	comp := exampleA(t)

	err := splitchunks.New().Apply(ctx, comp)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, comp.Chunks.Len())

	_, err = splitchunks.New().Plan(ctx, comp)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPlugin_ChunkKeysExhaustedLeavesGraphUntouched(t *testing.T) {
	t.Parallel()

	comp := chunkgraph.NewCompilation()
	require.NoError(t, comp.ModuleGraph.Add(module("a", chunkgraph.ModuleTypeJS, 10)))
	require.NoError(t, comp.ModuleGraph.Add(module("b", chunkgraph.ModuleTypeJS, 10)))

	group := &chunkgraph.ChunkGroup{Ukey: mainGroup, Name: "main"}

	for _, ukey := range []chunkgraph.ChunkUkey{1, chunkgraph.MaxChunkUkey} {
		chunk := chunkgraph.NewChunk(ukey, chunkgraph.ChunkKindNormal)
		chunk.AddGroup(mainGroup)
		require.NoError(t, comp.AddChunk(chunk, chunkgraph.NewChunkGraphChunk()))

		group.Chunks = append(group.Chunks, ukey)

		comp.ChunkGraph.ConnectChunkAndModule(ukey, "a")
		comp.ChunkGraph.ConnectChunkAndModule(ukey, "b")
	}

	require.NoError(t, comp.ChunkGroups.Add(group))

	before := comp.Manifest()

	err := splitchunks.New(splitchunks.WithMaxModulesPerChunk(1)).Apply(context.Background(), comp)
	require.ErrorIs(t, err, chunkgraph.ErrChunkKeysExhausted)
	require.ErrorIs(t, err, splitchunks.ErrInvariantViolation)

	assert.Equal(t, []chunkgraph.ChunkUkey{1, chunkgraph.MaxChunkUkey}, comp.Chunks.Keys())
	assert.Equal(t, before, comp.Manifest())
	assert.Len(t, comp.ModuleChunks("a"), 2)
	assert.Len(t, comp.ModuleChunks("b"), 2)
	assert.Equal(t, []chunkgraph.ChunkUkey{1, chunkgraph.MaxChunkUkey}, group.Chunks)
	require.NoError(t, comp.Validate())
}
