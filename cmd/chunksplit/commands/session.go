// Package commands implements CLI command handlers for chunksplit.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/chunksplit/pkg/config"
	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
	"github.com/Sumatoshi-tech/chunksplit/pkg/pipeline"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
	"github.com/Sumatoshi-tech/chunksplit/pkg/version"
)

// ConfigFlag names the persistent flag holding the config file path.
const ConfigFlag = "config"

var (
	// ErrUnknownFormat is returned for an unsupported --format value.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrInvalidSnapshot is returned when a snapshot fails validation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// registerSplitFlags adds one flag per split pass tunable.
func registerSplitFlags(cmd *cobra.Command) {
	for _, opt := range splitchunks.New().ListConfigurationOptions() {
		switch opt.Type {
		case pipeline.IntConfigurationOption:
			def, _ := opt.Default.(int)
			cmd.Flags().Int(opt.Flag, def, opt.Description)
		case pipeline.SizeConfigurationOption:
			cmd.Flags().String(opt.Flag, opt.FormatDefault(), opt.Description)
		case pipeline.BoolConfigurationOption:
			def, _ := opt.Default.(bool)
			cmd.Flags().Bool(opt.Flag, def, opt.Description)
		}
	}
}

// loadConfig reads the config file and applies explicitly set split flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var path string
	if flag := cmd.Flag(ConfigFlag); flag != nil {
		path = flag.Value.String()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	for _, opt := range splitchunks.New().ListConfigurationOptions() {
		flag := cmd.Flags().Lookup(opt.Flag)
		if flag == nil || !flag.Changed {
			continue
		}

		err = cfg.Set(opt.Name, flag.Value.String())
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", opt.Flag, err)
		}
	}

	return cfg, nil
}

// session bundles the configuration and telemetry of one command invocation.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	red       *observability.REDMetrics
	split     *observability.SplitMetrics
}

func startSession(cmd *cobra.Command, mode observability.AppMode, metricsTextfile string) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if metricsTextfile != "" {
		cfg.Observability.MetricsTextfile = metricsTextfile
	}

	providers, err := observability.Init(cfg.Telemetry(mode, version.Version))
	if err != nil {
		return nil, err
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	split, err := observability.NewSplitMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return &session{cfg: cfg, providers: providers, red: red, split: split}, nil
}

// plugin builds the split pass from the session configuration.
func (s *session) plugin() *splitchunks.Plugin {
	opts := append(s.cfg.Split.Options(),
		splitchunks.WithLogger(s.providers.Logger),
		splitchunks.WithTracer(s.providers.Tracer),
		splitchunks.WithMetrics(s.split),
	)

	return splitchunks.New(opts...)
}

// pipeline wraps the split pass with graph verification after the run.
func (s *session) pipeline() *pipeline.Pipeline {
	pipe := pipeline.New(s.plugin())
	pipe.Tracer = s.providers.Tracer
	pipe.Logger = s.providers.Logger
	pipe.Metrics = s.red
	pipe.VerifyGraph = true

	return pipe
}

// close writes the metrics textfile when configured and flushes telemetry.
func (s *session) close(ctx context.Context) error {
	var err error

	if path := s.cfg.Observability.MetricsTextfile; path != "" {
		err = s.providers.WriteMetrics(path)
	}

	shutdownErr := s.providers.Shutdown(ctx)
	if shutdownErr != nil {
		s.providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
	}

	return err
}
