package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const bytesPerKB = 1000

// RenderChart writes an HTML page charting size and module count per created chunk.
func RenderChart(w io.Writer, summaries []ChunkSummary) error {
	labels := make([]string, len(summaries))
	sizes := make([]opts.BarData, len(summaries))
	counts := make([]opts.BarData, len(summaries))

	for i, s := range summaries {
		labels[i] = s.Name
		sizes[i] = opts.BarData{Value: s.RawSize / bytesPerKB}
		counts[i] = opts.BarData{Value: s.Modules}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "chunksplit", Width: "100%", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Shared-module chunks",
			Subtitle: fmt.Sprintf("%d chunks", len(summaries)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Chunk"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kB / modules"}),
	)
	bar.SetXAxis(labels).
		AddSeries("Raw size (kB)", sizes).
		AddSeries("Modules", counts)

	err := bar.Render(w)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}
