package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
	"github.com/Sumatoshi-tech/chunksplit/pkg/report"
	"github.com/Sumatoshi-tech/chunksplit/pkg/snapshot"
)

// ErrNoOutputFile is returned when the --output flag is not set.
var ErrNoOutputFile = errors.New("output file is required (use --output)")

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <snapshot>",
		Short: "Render the shared-module chunks of a snapshot as an HTML chart",
		Long: `Run the split over a snapshot and chart the size and module count of every
created chunk. Snapshots that were already split are charted as they are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return ErrNoOutputFile
			}

			return runRender(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output HTML file")
	registerSplitFlags(cmd)

	return cmd
}

func runRender(cmd *cobra.Command, path, output string) (err error) {
	sess, err := startSession(cmd, observability.ModeCLI, "")
	if err != nil {
		return err
	}

	defer func() { _ = sess.close(context.Background()) }()

	compilation, err := snapshot.Load(path)
	if err != nil {
		return err
	}

	err = sess.pipeline().Run(observability.WithSnapshot(cmd.Context(), path), compilation)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return report.RenderChart(f, report.Summarize(compilation))
}
