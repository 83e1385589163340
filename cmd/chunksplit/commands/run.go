package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
	"github.com/Sumatoshi-tech/chunksplit/pkg/report"
	"github.com/Sumatoshi-tech/chunksplit/pkg/snapshot"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// RunCommand holds the flags of the run command.
type RunCommand struct {
	format          string
	output          string
	metricsTextfile string
	diff            bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{format: formatTable}

	cmd := &cobra.Command{
		Use:   "run <snapshot>",
		Short: "Split shared modules into dedicated chunks",
		Long: `Load a compilation snapshot, move every module shared by more than one chunk
into new chunks, verify the rewritten graph and report the created chunks.

The snapshot may be YAML or JSON, optionally LZ4 compressed (.lz4 suffix).`,
		Args: cobra.ExactArgs(1),
		RunE: rc.run,
	}

	cmd.Flags().StringVar(&rc.format, "format", formatTable, "Report format: table, json")
	cmd.Flags().StringVarP(&rc.output, "output", "o", "", "Write the rewritten snapshot to this path")
	cmd.Flags().BoolVar(&rc.diff, "diff", false, "Print a chunk membership diff")
	cmd.Flags().StringVar(&rc.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file")

	registerSplitFlags(cmd)

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) (err error) {
	if rc.format != formatTable && rc.format != formatJSON {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, rc.format)
	}

	sess, err := startSession(cmd, observability.ModeCLI, rc.metricsTextfile)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := sess.close(context.Background())
		if err == nil {
			err = closeErr
		}
	}()

	path := args[0]
	ctx := observability.WithSnapshot(cmd.Context(), path)

	compilation, err := snapshot.Load(path)
	if err != nil {
		return err
	}

	before := compilation.Manifest()
	lastUkey := compilation.Chunks.MaxUkey()

	err = sess.pipeline().Run(ctx, compilation)
	if err != nil {
		return err
	}

	summaries := report.SummarizeCreated(compilation, lastUkey)
	out := cmd.OutOrStdout()

	if rc.format == formatJSON {
		err = report.WriteJSON(out, summaries)
		if err != nil {
			return err
		}
	} else {
		report.WriteTable(out, summaries)
	}

	if rc.diff {
		fmt.Fprint(out, report.ManifestDiff(before, compilation.Manifest()))
	}

	if rc.output != "" {
		err = snapshot.Save(rc.output, compilation)
		if err != nil {
			return err
		}
	}

	totals := report.Total(summaries)
	color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Moved %d shared modules into %d chunks\n", totals.Modules, totals.Chunks)

	return nil
}
