// Package config provides configuration loading and validation for chunksplit.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
	"github.com/Sumatoshi-tech/chunksplit/pkg/splitchunks"
)

// Sentinel validation errors.
var (
	ErrInvalidMaxModules  = errors.New("max modules per chunk must be positive")
	ErrInvalidMaxSize     = errors.New("invalid max size per chunk")
	ErrInvalidWorkers     = errors.New("workers must not be negative")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
	ErrUnknownKey         = errors.New("unknown configuration key")
)

// Default configuration values.
const (
	defaultConfigName = ".chunksplit"
	envPrefix         = "CHUNKSPLIT"
	defaultMaxSize    = "5MB"
	defaultSample     = 1.0

	formatText = "text"
	formatJSON = "json"
)

// Config holds all configuration for chunksplit.
type Config struct {
	Split         SplitConfig         `mapstructure:"split"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// SplitConfig holds the split pass tunables.
type SplitConfig struct {
	// MaxSizePerChunk accepts human sizes such as "5MB" or "750 kB".
	MaxSizePerChunk    string `mapstructure:"max_size_per_chunk"`
	MaxModulesPerChunk int    `mapstructure:"max_modules_per_chunk"`
	Workers            int    `mapstructure:"workers"`

	maxSizeBytes uint64
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds telemetry export configuration.
type ObservabilityConfig struct {
	OTLPEndpoint    string        `mapstructure:"otlp_endpoint"`
	OTLPHeaders     string        `mapstructure:"otlp_headers"`
	Environment     string        `mapstructure:"environment"`
	MetricsTextfile string        `mapstructure:"metrics_textfile"`
	SampleRatio     float64       `mapstructure:"sample_ratio"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	OTLPInsecure    bool          `mapstructure:"otlp_insecure"`
	DebugTrace      bool          `mapstructure:"debug_trace"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath looks for .chunksplit.yaml in the working directory;
// a missing file there is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(defaultConfigName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	cfg := &Config{
		Split: SplitConfig{
			MaxModulesPerChunk: splitchunks.DefaultMaxModulesPerChunk,
			MaxSizePerChunk:    defaultMaxSize,
		},
		Logging:       LoggingConfig{Level: "info", Format: formatText},
		Observability: ObservabilityConfig{SampleRatio: defaultSample, ShutdownTimeout: 5 * time.Second},
	}

	cfg.Split.maxSizeBytes = uint64(splitchunks.DefaultMaxSizePerChunk)

	return cfg
}

func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("split.max_modules_per_chunk", def.Split.MaxModulesPerChunk)
	viperCfg.SetDefault("split.max_size_per_chunk", def.Split.MaxSizePerChunk)
	viperCfg.SetDefault("split.workers", 0)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.sample_ratio", def.Observability.SampleRatio)
	viperCfg.SetDefault("observability.debug_trace", false)
	viperCfg.SetDefault("observability.shutdown_timeout", "5s")
	viperCfg.SetDefault("observability.metrics_textfile", "")
}

func validateConfig(config *Config) error {
	if config.Split.MaxModulesPerChunk <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxModules, config.Split.MaxModulesPerChunk)
	}

	size, err := humanize.ParseBytes(config.Split.MaxSizePerChunk)
	if err != nil || size == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidMaxSize, config.Split.MaxSizePerChunk)
	}

	config.Split.maxSizeBytes = size

	if config.Split.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, config.Split.Workers)
	}

	_, err = parseLevel(config.Logging.Level)
	if err != nil {
		return err
	}

	if config.Logging.Format != formatText && config.Logging.Format != formatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Observability.SampleRatio < 0 || config.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Observability.SampleRatio)
	}

	return nil
}

func parseLevel(level string) (slog.Level, error) {
	var lvl slog.Level

	err := lvl.UnmarshalText([]byte(level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}

	return lvl, nil
}

// Set overrides one split key, as named by the pass's configuration options,
// and revalidates the configuration.
func (c *Config) Set(key, value string) error {
	switch key {
	case "split.max_size_per_chunk":
		c.Split.MaxSizePerChunk = value
	case "split.max_modules_per_chunk", "split.workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}

		if key == "split.workers" {
			c.Split.Workers = n
		} else {
			c.Split.MaxModulesPerChunk = n
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	return validateConfig(c)
}

// MaxSizeBytes returns the parsed size cap.
func (s SplitConfig) MaxSizeBytes() uint64 {
	return s.maxSizeBytes
}

// Options converts the split section into pass options.
func (s SplitConfig) Options() []splitchunks.Option {
	return []splitchunks.Option{
		splitchunks.WithMaxModulesPerChunk(s.MaxModulesPerChunk),
		splitchunks.WithMaxSizePerChunk(float64(s.maxSizeBytes)),
		splitchunks.WithWorkers(s.Workers),
	}
}

// Telemetry builds the observability bootstrap configuration.
func (c *Config) Telemetry(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()

	cfg.Mode = mode
	cfg.ServiceVersion = version
	cfg.Environment = c.Observability.Environment
	cfg.OTLPEndpoint = c.Observability.OTLPEndpoint
	cfg.OTLPInsecure = c.Observability.OTLPInsecure
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Observability.OTLPHeaders)
	cfg.SampleRatio = c.Observability.SampleRatio
	cfg.DebugTrace = c.Observability.DebugTrace
	cfg.LogJSON = c.Logging.Format == formatJSON
	cfg.Prometheus = c.Observability.MetricsTextfile != ""

	if lvl, err := parseLevel(c.Logging.Level); err == nil {
		cfg.LogLevel = lvl
	}

	if c.Observability.ShutdownTimeout > 0 {
		cfg.ShutdownTimeoutSec = int(c.Observability.ShutdownTimeout.Seconds())
	}

	return cfg
}
