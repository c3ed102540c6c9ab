// Package llm provides the LLM client interface used by workflow nodes,
// a Claude CLI implementation, structured output decoding, and a tool
// registry for agent loops.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client is the interface workflow nodes use to call an LLM.
// Implementations must be safe for concurrent use; parallel branches of
// a run share one client.
type Client interface {
	// Complete performs a completion call and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Sentinel errors for LLM operations.
var (
	// ErrUnavailable indicates the LLM backend could not be reached.
	ErrUnavailable = errors.New("llm unavailable")

	// ErrRateLimited indicates the backend rejected the call due to rate limits.
	ErrRateLimited = errors.New("llm rate limited")

	// ErrInvalidRequest indicates the request was malformed.
	ErrInvalidRequest = errors.New("llm invalid request")

	// ErrTimeout indicates the call exceeded its deadline.
	ErrTimeout = errors.New("llm timeout")
)

// Error wraps an LLM failure with the operation that produced it and
// whether a retry is worthwhile.
type Error struct {
	Op        string
	Err       error
	retryable bool
}

// NewError creates an LLM error.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, retryable: retryable}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying the call may help.
func (e *Error) Retryable() bool {
	return e.retryable
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolResultMessage creates a tool result message answering the tool
// call with the given ID.
func NewToolResultMessage(callID, name, content string) Message {
	return Message{Role: RoleTool, ToolCallID: callID, Name: name, Content: content}
}
