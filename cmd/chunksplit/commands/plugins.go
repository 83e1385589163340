package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunksplit/pkg/report"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
)

// NewPluginsCommand creates the plugins command.
func NewPluginsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the split pass and its tunables",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			plugin := splitchunks.New()
			report.WriteOptions(cmd.OutOrStdout(), plugin.Name(), plugin.ListConfigurationOptions())
		},
	}
}
