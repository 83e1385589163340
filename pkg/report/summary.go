// Package report renders the outcome of a split pass for people: tables,
// JSON, manifest diffs and an HTML chart.
package report

import (
	"slices"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
	"github.com/Sumatoshi-tech/chunksplit/pkg/snapshot"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
)

// ChunkSummary describes one chunk created by the split pass.
type ChunkSummary struct {
	Name          string   `json:"name"`
	SplitFrom     []string `json:"split_from"`
	Groups        int      `json:"groups"`
	Modules       int      `json:"modules"`
	VendorModules int      `json:"vendor_modules"`
	RawSize       float64  `json:"raw_size"`
	Ukey          uint32   `json:"ukey"`
}

// Summarize lists the chunks carrying the split reason, ascending by key,
// including those created by earlier runs.
func Summarize(compilation *chunkgraph.Compilation) []ChunkSummary {
	return SummarizeCreated(compilation, 0)
}

// SummarizeCreated lists the split chunks whose key is above after, the
// highest key registered before the run. Chunks from earlier runs are skipped.
func SummarizeCreated(compilation *chunkgraph.Compilation, after chunkgraph.ChunkUkey) []ChunkSummary {
	var summaries []ChunkSummary

	for _, ukey := range compilation.Chunks.Keys() {
		chunk, _ := compilation.Chunks.Get(ukey)
		if ukey <= after || !slices.Contains(chunk.Reasons, splitchunks.Reason) {
			continue
		}

		summaries = append(summaries, summarizeChunk(compilation, chunk))
	}

	return summaries
}

func summarizeChunk(compilation *chunkgraph.Compilation, chunk *chunkgraph.Chunk) ChunkSummary {
	modules := compilation.ChunkGraph.ChunkModules(chunk.Ukey)

	summary := ChunkSummary{
		Name:      chunk.DisplayName(),
		Ukey:      uint32(chunk.Ukey),
		Modules:   len(modules),
		Groups:    chunk.Groups.Len(),
		SplitFrom: make([]string, 0, len(chunk.SplitFrom)),
	}

	for _, id := range modules {
		if module, ok := compilation.ModuleByIdentifier(id); ok {
			summary.RawSize += module.Size(chunkgraph.SourceTypeJavaScript)
		}

		if snapshot.IsVendor(id) {
			summary.VendorModules++
		}
	}

	for _, parent := range chunk.SplitFrom {
		if p, ok := compilation.Chunks.Get(parent); ok {
			summary.SplitFrom = append(summary.SplitFrom, p.DisplayName())
		}
	}

	return summary
}

// Totals aggregates summaries.
type Totals struct {
	Chunks  int     `json:"chunks"`
	Modules int     `json:"modules"`
	RawSize float64 `json:"raw_size"`
}

// Total sums the summaries.
func Total(summaries []ChunkSummary) Totals {
	totals := Totals{Chunks: len(summaries)}

	for _, s := range summaries {
		totals.Modules += s.Modules
		totals.RawSize += s.RawSize
	}

	return totals
}
