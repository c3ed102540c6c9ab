package stategraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/randalmurphal/stategraph/pkg/stategraph/llm"
)

// Context provides execution context to nodes and routers.
// It extends context.Context with stategraph-specific services and
// metadata.
//
// Context is immutable after creation. The executor creates derived
// contexts for each node with the NodeID set and the logger enriched.
type Context interface {
	context.Context

	// Services

	// Logger returns the configured logger, enriched with run and node
	// context. Never returns nil; defaults to slog.Default().
	Logger() *slog.Logger

	// LLM returns the LLM client, or nil if not configured.
	// Nodes should check for nil before using.
	LLM() llm.Client

	// Metadata

	// RunID returns the unique identifier for this execution run.
	// Auto-generated if not configured.
	RunID() string

	// NodeID returns the current node being executed.
	// Empty string before execution starts.
	NodeID() string

	// Attempt returns the retry attempt number (1 = first attempt).
	Attempt() int
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger    *slog.Logger
	llmClient llm.Client
	runID     string
	nodeID    string
	attempt   int
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// LLM returns the LLM client.
func (c *executionContext) LLM() llm.Client {
	return c.llmClient
}

// RunID returns the run identifier.
func (c *executionContext) RunID() string {
	return c.runID
}

// NodeID returns the current node identifier.
func (c *executionContext) NodeID() string {
	return c.nodeID
}

// Attempt returns the retry attempt number.
func (c *executionContext) Attempt() int {
	return c.attempt
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
// The logger is enriched with run_id, node_id, and attempt during
// execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithLLM sets the LLM client for the context.
func WithLLM(client llm.Client) ContextOption {
	return func(c *executionContext) {
		c.llmClient = client
	}
}

// WithContextRunID sets the run identifier for the context.
// If not set, a UUID is auto-generated.
func WithContextRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// NewContext creates an execution context from a standard context.
//
// Example:
//
//	ctx := stategraph.NewContext(context.Background(),
//	    stategraph.WithLogger(myLogger),
//	    stategraph.WithLLM(client))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
		attempt: 1,
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withBase returns a copy of the context wrapping a different underlying
// context.Context. Used by the executor to scope fan-out branches to a
// cancellable context.
func (c *executionContext) withBase(base context.Context) *executionContext {
	clone := *c
	clone.Context = base
	return &clone
}

// withNodeID returns a new context with the node ID and attempt set and
// the logger enriched. Used internally by the executor.
func (c *executionContext) withNodeID(nodeID string, attempt int) *executionContext {
	return &executionContext{
		Context:   c.Context,
		logger:    c.logger.With("run_id", c.runID, "node_id", nodeID, "attempt", attempt),
		llmClient: c.llmClient,
		runID:     c.runID,
		nodeID:    nodeID,
		attempt:   attempt,
	}
}
