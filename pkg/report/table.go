package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/chunksplit/pkg/safeconv"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
)

const msgNoChunks = "No shared modules: nothing was split."

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func formatSize(size float64) string {
	return humanize.Bytes(safeconv.FloatToUint64(size))
}

// WriteTable renders one row per created chunk.
func WriteTable(w io.Writer, summaries []ChunkSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, msgNoChunks)

		return
	}

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Chunk", "Modules", "Vendor", "Raw size", "Groups", "Split from"})

	for _, s := range summaries {
		tbl.AppendRow(table.Row{
			s.Name,
			s.Modules,
			s.VendorModules,
			formatSize(s.RawSize),
			s.Groups,
			strings.Join(s.SplitFrom, ", "),
		})
	}

	totals := Total(summaries)
	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Total: %d chunks", totals.Chunks),
		totals.Modules,
		"",
		formatSize(totals.RawSize),
	})
	tbl.Render()
}

// WritePlan renders the windows and batches of a dry run.
func WritePlan(w io.Writer, plan *splitchunks.Plan, maxSize float64) {
	if len(plan.Shared) == 0 {
		fmt.Fprintln(w, msgNoChunks)

		return
	}

	batchesPerWindow := make(map[int]int, len(plan.Windows))
	for _, batch := range plan.Batches {
		batchesPerWindow[batch.Window]++
	}

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Window", "Modules", "Raw size", "Weighted size", "Cap", "Batches"})

	for i, window := range plan.Windows {
		tbl.AppendRow(table.Row{
			strconv.Itoa(i),
			len(window.Modules),
			formatSize(window.RawSize),
			formatSize(window.WeightedSize),
			formatSize(maxSize),
			batchesPerWindow[i],
		})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Shared: %d", len(plan.Shared)),
		"",
		"",
		"",
		"",
		fmt.Sprintf("%d (%d re-split)", len(plan.Batches), plan.ResplitWindows()),
	})
	tbl.Render()
}
