package kanjisim

import (
	"log/slog"

	"github.com/hupe1980/kanjisim/config"
	"github.com/hupe1980/kanjisim/dataset"
)

type options struct {
	config           config.Config
	metricsCollector MetricsCollector
	logger           *Logger
	parallelism      int
	datasetOptions   []dataset.Option
	queryCache       int
	maxQueries       int64
}

// Option configures Open.
type Option func(*options)

// WithConfig sets the engine configuration. It is validated by Open before
// any dataset is read.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kanjisim.BasicMetricsCollector{}
//	eng, _ := kanjisim.Open(ctx, kanjisim.Local("kanji.json"), kanjisim.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := kanjisim.NewJSONLogger(slog.LevelInfo)
//	eng, _ := kanjisim.Open(ctx, src, kanjisim.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithParallelism bounds the number of goroutines used while loading and
// building. Zero or less means GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithDatasetOptions passes options through to the dataset loader
// (compression, coordinate tolerance).
func WithDatasetOptions(opts ...dataset.Option) Option {
	return func(o *options) {
		o.datasetOptions = append(o.datasetOptions, opts...)
	}
}

// WithQueryCache memoizes up to n distinct Similar results. Zero disables the
// cache. Cached results are exact: the index never changes after Open.
func WithQueryCache(n int) Option {
	return func(o *options) {
		o.queryCache = n
	}
}

// WithMaxConcurrentQueries bounds the number of Similar calls scanning the
// index at once. Further calls wait for a free slot or for their context to
// end. Zero means unlimited.
func WithMaxConcurrentQueries(n int) Option {
	return func(o *options) {
		o.maxQueries = int64(n)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		config:           config.Default(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// SimilarOption configures a single Similar call.
type SimilarOption func(*similarOptions)

type similarOptions struct {
	weights *config.Weights
}

// WithWeights overrides the configured distance weights for one call.
// The weights are validated and normalized; invalid weights fail the call
// with a *config.Error.
func WithWeights(w config.Weights) SimilarOption {
	return func(o *similarOptions) {
		o.weights = &w
	}
}
