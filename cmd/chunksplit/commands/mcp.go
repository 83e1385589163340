package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunksplit/pkg/mcp"
	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
	"github.com/Sumatoshi-tech/chunksplit/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the shared-module split as tools that AI agents
can discover and invoke:
  - split_plan: Dry-run the split and show windows and batches
  - split_apply: Run the split and return the created chunks and a diff
  - snapshot_validate: Check a snapshot against the schema and graph invariants`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			telemetry := cfg.Telemetry(observability.ModeMCP, version.Version)
			telemetry.LogJSON = true

			if debug {
				telemetry.LogLevel = slog.LevelDebug
				telemetry.DebugTrace = true
			}

			providers, err := observability.Init(telemetry)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, redErr := observability.NewREDMetrics(providers.Meter)
			if redErr != nil {
				return redErr
			}

			split, splitErr := observability.NewSplitMetrics(providers.Meter)
			if splitErr != nil {
				return splitErr
			}

			deps := mcp.ServerDeps{
				Logger:       providers.Logger,
				Metrics:      red,
				Tracer:       providers.Tracer,
				SplitOptions: append(cfg.Split.Options(), splitchunks.WithMetrics(split)),
			}

			srv := mcp.NewServer(deps)

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	registerSplitFlags(cmd)

	return cmd
}
