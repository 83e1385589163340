package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
	"github.com/Sumatoshi-tech/chunksplit/pkg/report"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
)

// splitCompilation builds main=[./src/a.js, react] and admin=[./src/b.js, react]
// and runs the pass, leaving react in a new chunk.
func splitCompilation(t *testing.T) *chunkgraph.Compilation {
	t.Helper()

	comp := chunkgraph.NewCompilation()

	sizes := map[chunkgraph.ModuleID]float64{
		"./src/a.js":                    1000,
		"./src/b.js":                    2000,
		"./node_modules/react/index.js": 4500,
	}

	for id, size := range sizes {
		require.NoError(t, comp.ModuleGraph.Add(&chunkgraph.Module{
			ID:    id,
			Type:  chunkgraph.ModuleTypeJS,
			Sizes: map[chunkgraph.SourceType]float64{chunkgraph.SourceTypeJavaScript: size},
		}))
	}

	for ukey, name := range map[chunkgraph.ChunkUkey]string{1: "main", 2: "admin"} {
		chunk := chunkgraph.NewChunk(ukey, chunkgraph.ChunkKindNormal)
		chunk.Name = name
		require.NoError(t, comp.AddChunk(chunk, chunkgraph.NewChunkGraphChunk()))
	}

	comp.ChunkGraph.ConnectChunkAndModule(1, "./src/a.js")
	comp.ChunkGraph.ConnectChunkAndModule(1, "./node_modules/react/index.js")
	comp.ChunkGraph.ConnectChunkAndModule(2, "./src/b.js")
	comp.ChunkGraph.ConnectChunkAndModule(2, "./node_modules/react/index.js")

	require.NoError(t, splitchunks.New().Apply(context.Background(), comp))

	return comp
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	summaries := report.Summarize(splitCompilation(t))
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "#3", s.Name)
	assert.Equal(t, uint32(3), s.Ukey)
	assert.Equal(t, 1, s.Modules)
	assert.Equal(t, 1, s.VendorModules)
	assert.InDelta(t, 4500, s.RawSize, 0)
	assert.Equal(t, []string{"main", "admin"}, s.SplitFrom)

	totals := report.Total(summaries)
	assert.Equal(t, report.Totals{Chunks: 1, Modules: 1, RawSize: 4500}, totals)
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	report.WriteTable(&buf, report.Summarize(splitCompilation(t)))

	out := buf.String()
	assert.Contains(t, out, "#3")
	assert.Contains(t, out, "4.5 kB")
	assert.Contains(t, out, "main, admin")
	assert.Contains(t, out, "Total: 1 chunks")

	buf.Reset()
	report.WriteTable(&buf, nil)
	assert.Contains(t, buf.String(), "nothing was split")
}

func TestWritePlan(t *testing.T) {
	t.Parallel()

	comp := splitCompilation(t)

	// The graph has no shared modules left after the pass.
	plan, err := splitchunks.New().Plan(context.Background(), comp)
	require.NoError(t, err)

	var buf bytes.Buffer

	report.WritePlan(&buf, plan, splitchunks.DefaultMaxSizePerChunk)
	assert.Contains(t, buf.String(), "nothing was split")

	plan = &splitchunks.Plan{
		Shared:  []splitchunks.SharedModule{{Module: "x", RefChunks: []chunkgraph.ChunkUkey{1, 2}}},
		Windows: []splitchunks.Window{{Modules: []splitchunks.SharedModule{{Module: "x"}}, RawSize: 10, WeightedSize: 15}},
		Batches: []splitchunks.ChunkInfo{{Modules: []splitchunks.SharedModule{{Module: "x"}}, RawSize: 10}},
	}

	buf.Reset()
	report.WritePlan(&buf, plan, splitchunks.DefaultMaxSizePerChunk)

	out := buf.String()
	assert.Contains(t, out, "5.0 MB")
	assert.Contains(t, out, "15 B")
	assert.Contains(t, out, "1 (0 re-split)")
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.WriteJSON(&buf, report.Summarize(splitCompilation(t))))

	var doc report.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Chunks, 1)
	assert.Equal(t, 1, doc.Totals.Chunks)

	buf.Reset()
	require.NoError(t, report.WriteJSON(&buf, nil))
	assert.Contains(t, buf.String(), `"chunks": []`)
}

func TestManifestDiff(t *testing.T) {
	t.Parallel()

	before := "main: [a, b]\nadmin: [b, c]\n"
	after := "main: [a]\nadmin: [c]\n#3: [b]\n"

	diff := report.ManifestDiff(before, after)

	assert.Contains(t, diff, "- main: [a, b]\n")
	assert.Contains(t, diff, "+ main: [a]\n")
	assert.Contains(t, diff, "+ #3: [b]\n")

	assert.Equal(t, "  main: [a]\n", report.ManifestDiff("main: [a]\n", "main: [a]\n"))
}

func TestRenderChart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.RenderChart(&buf, report.Summarize(splitCompilation(t))))

	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Shared-module chunks")
	assert.Contains(t, out, "#3")
}

func TestWriteOptions(t *testing.T) {
	t.Parallel()

	plugin := splitchunks.New()

	var buf bytes.Buffer

	report.WriteOptions(&buf, plugin.Name(), plugin.ListConfigurationOptions())

	out := buf.String()
	assert.Contains(t, out, splitchunks.PluginName)
	assert.Contains(t, out, "--max-size-per-chunk")
	assert.Contains(t, out, "5.0 MB")
	assert.Contains(t, out, "split.workers")
}

func TestSummarizeCreated_SkipsEarlierRuns(t *testing.T) {
	t.Parallel()

	comp := splitCompilation(t)
	after := comp.Chunks.MaxUkey()

	require.NoError(t, splitchunks.New().Apply(context.Background(), comp))

	assert.Empty(t, report.SummarizeCreated(comp, after))
	assert.Len(t, report.SummarizeCreated(comp, 0), 1)
	assert.Len(t, report.Summarize(comp), 1)
}
