package pipeline

import (
	"fmt"
	"log"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/chunksplit/pkg/safeconv"
)

// ConfigurationOptionType represents the possible types of a ConfigurationOption's value.
type ConfigurationOptionType int

const (
	// BoolConfigurationOption reflects the boolean value type.
	BoolConfigurationOption ConfigurationOptionType = iota
	// IntConfigurationOption reflects the integer value type.
	IntConfigurationOption
	// SizeConfigurationOption reflects a byte size, accepted in human form ("5MB").
	SizeConfigurationOption
)

// String returns an empty string for the boolean type, "int" for integers and
// "size" for byte sizes. It is used in help output to show the value's type.
func (opt ConfigurationOptionType) String() string {
	switch opt {
	case BoolConfigurationOption:
		return ""
	case IntConfigurationOption:
		return "int"
	case SizeConfigurationOption:
		return "size"
	}

	log.Panicf("Invalid ConfigurationOptionType value %d", opt)

	return ""
}

// ConfigurationOption describes one tunable of a plugin.
type ConfigurationOption struct {
	// Default is the initial value of the configuration option.
	Default any
	// Name identifies the option as a configuration file key.
	Name string
	// Description represents the help text about the configuration option.
	Description string
	// Flag corresponds to the CLI token with "--" prepended.
	Flag string
	// Type specifies the kind of the configuration option's value.
	Type ConfigurationOptionType
}

// FormatDefault converts the default value of ConfigurationOption to string.
// Sizes are shown in SI units so they round-trip through the config parser.
func (opt ConfigurationOption) FormatDefault() string {
	if opt.Type != SizeConfigurationOption {
		return fmt.Sprint(opt.Default)
	}

	switch v := opt.Default.(type) {
	case float64:
		return humanize.Bytes(safeconv.FloatToUint64(v))
	case uint64:
		return humanize.Bytes(v)
	case int:
		return humanize.Bytes(safeconv.IntToUint64(v))
	default:
		return fmt.Sprint(opt.Default)
	}
}

// Configurable is implemented by plugins that expose tunables.
type Configurable interface {
	ListConfigurationOptions() []ConfigurationOption
}
