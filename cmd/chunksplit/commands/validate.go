package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunksplit/pkg/snapshot"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot>",
		Short: "Validate a snapshot against the schema and graph invariants",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	data, err := snapshot.ReadFile(path)
	if err != nil {
		return err
	}

	violations, err := snapshot.ValidateSchema(data)
	if err != nil {
		return err
	}

	if len(violations) > 0 {
		color.New(color.FgRed).Fprintf(out, "Snapshot schema validation failed (%s)\n", path)

		for _, v := range violations {
			color.New(color.FgRed).Fprintf(out, "  - %s: %s\n", v.Field, v.Description)
		}

		return fmt.Errorf("%w: %d schema violations", ErrInvalidSnapshot, len(violations))
	}

	compilation, err := snapshot.Decode(data)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "Snapshot graph check failed (%s)\n", path)
		color.New(color.FgRed).Fprintf(out, "  - %v\n", err)

		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	color.New(color.FgGreen).Fprintf(out, "Snapshot is valid (%s)\n", path)
	fmt.Fprintf(out, "  Modules: %d, chunks: %d, groups: %d\n",
		compilation.ModuleGraph.Len(), compilation.Chunks.Len(), compilation.ChunkGroups.Len())

	return nil
}
