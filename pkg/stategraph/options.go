package stategraph

import (
	"log/slog"

	xerrors "github.com/randalmurphal/stategraph/pkg/stategraph/errors"
	"github.com/randalmurphal/stategraph/pkg/stategraph/journal"
	"github.com/randalmurphal/stategraph/pkg/stategraph/observability"
)

// runConfig holds configuration for one Run invocation.
type runConfig struct {
	maxSupersteps int
	runID         string

	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool

	journal  journal.Store
	sequence int

	defaultRetry *xerrors.RetryConfig
	nodeRetry    map[string]xerrors.RetryConfig
}

// defaultRunConfig returns the default execution configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxSupersteps: 1000,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// retryFor returns the retry policy for a node, or nil for a single attempt.
func (c *runConfig) retryFor(nodeID string) *xerrors.RetryConfig {
	if rc, ok := c.nodeRetry[nodeID]; ok {
		return &rc
	}
	return c.defaultRetry
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithMaxSupersteps sets the maximum number of supersteps (frontier
// rounds) for a run. Default: 1000.
//
// This keeps cyclic graphs from looping forever. When the limit is
// exceeded, Run returns a MaxSuperstepsError.
func WithMaxSupersteps(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxSupersteps = n
		}
	}
}

// WithRunID sets the run identifier used for logging, metrics, and the
// journal. Defaults to the Context's run ID.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithObservabilityLogger sets the logger used for run and node lifecycle
// logging. Nil disables lifecycle logging.
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics recording.
// Configure the global meter provider before enabling.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry tracing with a stategraph.run span
// and one child span per node execution.
// Configure the global tracer provider before enabling.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithJournal records every node execution of the run to the store.
// The journal is an observability trail: it is never read back to resume
// a run. Journal write failures are logged and do not abort the run.
func WithJournal(store journal.Store) RunOption {
	return func(c *runConfig) {
		c.journal = store
	}
}

// WithRetry sets the default retry policy applied to every node.
// Without it, nodes get a single attempt.
func WithRetry(rc xerrors.RetryConfig) RunOption {
	return func(c *runConfig) {
		c.defaultRetry = &rc
	}
}

// WithNodeRetry sets a retry policy for one node, overriding WithRetry.
func WithNodeRetry(nodeID string, rc xerrors.RetryConfig) RunOption {
	return func(c *runConfig) {
		if c.nodeRetry == nil {
			c.nodeRetry = make(map[string]xerrors.RetryConfig)
		}
		c.nodeRetry[nodeID] = rc
	}
}
