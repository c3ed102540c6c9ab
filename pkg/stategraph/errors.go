// Package stategraph provides a graph-based LLM workflow execution engine.
package stategraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph building and compilation.
var (
	// ErrNoEntryPoint indicates SetEntry() was not called before Compile().
	ErrNoEntryPoint = errors.New("entry point not set")

	// ErrEntryNotFound indicates the entry point references a non-existent node.
	ErrEntryNotFound = errors.New("entry point node not found")

	// ErrDuplicateNode indicates AddNode was called twice with the same ID.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode indicates an edge or route map references a non-existent node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDisconnected indicates no edge path exists from the entry to END.
	ErrDisconnected = errors.New("no path from entry to END")
)

// Sentinel errors for execution.
var (
	// ErrMaxSupersteps indicates the run exceeded the configured superstep limit.
	ErrMaxSupersteps = errors.New("exceeded maximum supersteps")

	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrEmptyRouteLabel indicates a router returned an empty label.
	ErrEmptyRouteLabel = errors.New("router returned empty label")

	// ErrUnmappedRouteLabel indicates a router returned a label absent from
	// its route map.
	ErrUnmappedRouteLabel = errors.New("router returned unmapped label")

	// ErrRouteTargetNotFound indicates a router resolved to an unknown node.
	ErrRouteTargetNotFound = errors.New("router resolved to unknown node")
)

// NodeError wraps an error with node context: which node failed and what
// operation was attempted.
type NodeError struct {
	// NodeID is the identifier of the node that failed.
	NodeID string
	// Op is the operation that failed (e.g., "execute").
	Op string
	// Err is the underlying error from the node.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from node execution, including the
// stack trace for debugging.
type PanicError struct {
	// NodeID is the identifier of the node that panicked.
	NodeID string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// RouterError wraps errors from conditional edge routing.
type RouterError struct {
	// FromNode is the node with the conditional edge.
	FromNode string
	// Label is the label the router returned.
	Label string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RouterError) Error() string {
	return fmt.Sprintf("router from %s returned %q: %v", e.FromNode, e.Label, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RouterError) Unwrap() error {
	return e.Err
}

// BranchError wraps a failure inside one fan-out branch. The run is
// aborted with the error of the earliest-spawned branch that failed on
// its own; siblings are cancelled best-effort and the cancellations they
// report never mask the root failure.
type BranchError struct {
	// FromNode is the node whose router spawned the branches.
	FromNode string
	// Branch is the entry node of the failed branch.
	Branch string
	// Index is the branch's spawn position (0-based).
	Index int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *BranchError) Error() string {
	return fmt.Sprintf("branch %d (%s) spawned from %s: %v", e.Index, e.Branch, e.FromNode, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BranchError) Unwrap() error {
	return e.Err
}

// CancellationError captures the state when execution was cancelled.
type CancellationError struct {
	// NodeID is the node that was about to execute or was executing.
	NodeID string
	// State is the state at cancellation (type-assert to the actual type).
	State any
	// Cause is the underlying cancellation cause.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled at node %s: %v", e.NodeID, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// MaxSuperstepsError provides context when the superstep limit is exceeded.
type MaxSuperstepsError struct {
	// Max is the configured superstep limit.
	Max int
	// Frontier lists the node IDs that would have executed next.
	Frontier []string
	// State is the state at termination (type-assert to the actual type).
	State any
}

// Error implements the error interface.
func (e *MaxSuperstepsError) Error() string {
	return fmt.Sprintf("exceeded maximum supersteps (%d) with frontier %v", e.Max, e.Frontier)
}

// Unwrap returns ErrMaxSupersteps for errors.Is support.
func (e *MaxSuperstepsError) Unwrap() error {
	return ErrMaxSupersteps
}
