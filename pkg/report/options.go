package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/chunksplit/pkg/pipeline"
)

// WriteOptions lists a plugin's tunables with their flags and defaults.
func WriteOptions(w io.Writer, plugin string, options []pipeline.ConfigurationOption) {
	tbl := newTable(w)
	tbl.SetTitle(plugin)
	tbl.AppendHeader(table.Row{"Key", "Flag", "Type", "Default", "Description"})

	for _, opt := range options {
		tbl.AppendRow(table.Row{
			opt.Name,
			"--" + opt.Flag,
			opt.Type.String(),
			opt.FormatDefault(),
			opt.Description,
		})
	}

	tbl.Render()
}
