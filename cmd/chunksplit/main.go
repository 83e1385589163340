// Package main provides the entry point for the chunksplit CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunksplit/cmd/chunksplit/commands"
	"github.com/Sumatoshi-tech/chunksplit/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "chunksplit",
		Short: "chunksplit - move modules shared between chunks into dedicated chunks",
		Long: `chunksplit rewrites a compilation snapshot so that every module referenced by
more than one chunk lives in exactly one dedicated chunk.

Commands:
  run       Apply the split and report the created chunks
  plan      Show the windows and batches without rewriting
  validate  Check a snapshot against the schema and graph invariants
  render    Chart the created chunks as HTML
  plugins   List the split pass tunables
  mcp       Serve the split tools over MCP stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(commands.ConfigFlag, "", "config file (default .chunksplit.yaml)")

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewPlanCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewPluginsCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
