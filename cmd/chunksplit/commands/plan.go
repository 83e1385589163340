package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
	"github.com/Sumatoshi-tech/chunksplit/pkg/report"
	"github.com/Sumatoshi-tech/chunksplit/pkg/snapshot"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <snapshot>",
		Short: "Show how shared modules would be split without rewriting",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlan,
	}

	registerSplitFlags(cmd)

	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	sess, err := startSession(cmd, observability.ModeCLI, "")
	if err != nil {
		return err
	}

	defer func() { _ = sess.close(context.Background()) }()

	compilation, err := snapshot.Load(args[0])
	if err != nil {
		return err
	}

	plugin := sess.plugin()

	plan, err := plugin.Plan(observability.WithSnapshot(cmd.Context(), args[0]), compilation)
	if err != nil {
		return err
	}

	report.WritePlan(cmd.OutOrStdout(), plan, plugin.MaxSizePerChunk())

	return nil
}
