package splitchunks

import (
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/chunksplit/pkg/observability"
)

// Default caps. The module cap was picked by feel; the size cap is about 5MB.
const (
	DefaultMaxModulesPerChunk = 500
	DefaultMaxSizePerChunk    = 5_000_000.0
)

// Size coefficients applied to raw module sizes when estimating a window.
const (
	expandingCoefficient = 5.0
	defaultCoefficient   = 1.5
)

// Reason is attached to every chunk created by the pass.
const Reason = "Split with ref count> 1"

const tracerName = "chunksplit/splitchunks"

type options struct {
	logger             *slog.Logger
	tracer             trace.Tracer
	metrics            *observability.SplitMetrics
	maxSizePerChunk    float64
	maxModulesPerChunk int
	workers            int
}

func defaultOptions() options {
	return options{
		maxModulesPerChunk: DefaultMaxModulesPerChunk,
		maxSizePerChunk:    DefaultMaxSizePerChunk,
		workers:            runtime.GOMAXPROCS(0),
		logger:             slog.Default(),
		tracer:             otel.Tracer(tracerName),
	}
}

// Option tunes a Plugin.
type Option func(*options)

// WithMaxModulesPerChunk sets the hard module-count cap per window.
// Non-positive values keep the default.
func WithMaxModulesPerChunk(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxModulesPerChunk = n
		}
	}
}

// WithMaxSizePerChunk sets the size cap. Non-positive values keep the default.
func WithMaxSizePerChunk(size float64) Option {
	return func(o *options) {
		if size > 0 {
			o.maxSizePerChunk = size
		}
	}
}

// WithWorkers bounds the goroutines used by the parallel phases.
// Non-positive values mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer sets the tracer used for per-phase spans. Nil keeps the global one.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithMetrics enables per-pass metrics.
func WithMetrics(metrics *observability.SplitMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}
