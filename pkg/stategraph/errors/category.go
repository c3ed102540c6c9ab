// Package errors provides error handling, categorization, and retry
// strategies for workflow nodes.
//
// The package implements a layered error handling approach:
//   - Categorization: Classify errors for appropriate handling
//   - Retry: Handle transient failures with exponential backoff
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Category represents how an error should be handled.
type Category int

const (
	// CategoryTransient indicates retry will likely help.
	// Examples: rate limits, timeouts, temporary process failures.
	CategoryTransient Category = iota

	// CategoryPermanent indicates retry won't help.
	// Examples: authentication failures, invalid configuration.
	CategoryPermanent

	// CategoryEscalatable indicates a different approach might succeed.
	// Examples: JSON parse failures, output validation failures.
	CategoryEscalatable
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	case CategoryEscalatable:
		return "escalatable"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this error should be handled.
	Category Category

	// Retries is the number of attempts that have been made.
	Retries int

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s, attempts: %d)",
			e.Context, e.Err, e.Category, e.Retries)
	}
	return fmt.Sprintf("%s (category: %s, attempts: %d)",
		e.Err, e.Category, e.Retries)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorized creates a new categorized error.
func NewCategorized(err error, category Category, context string) *CategorizedError {
	return &CategorizedError{
		Err:      err,
		Category: category,
		Context:  context,
	}
}

// Transient creates a transient error.
func Transient(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryTransient, context)
}

// Permanent creates a permanent error.
func Permanent(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryPermanent, context)
}

// Escalatable creates an escalatable error.
func Escalatable(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryEscalatable, context)
}

// retryable is implemented by errors that carry their own retryability,
// such as LLM client errors.
type retryable interface {
	Retryable() bool
}

// Categorize determines how an error should be handled.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent // shouldn't happen, fail safe
	}

	// Check for already-categorized errors
	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	// Context errors never resolve by retrying
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryPermanent
	}

	// Errors that know their own retryability
	var r retryable
	if errors.As(err, &r) {
		if r.Retryable() {
			return CategoryTransient
		}
		return CategoryPermanent
	}

	// Check for JSON parse errors
	var jsonErr *JSONParseError
	if errors.As(err, &jsonErr) {
		return CategoryEscalatable // a reworded prompt might produce valid JSON
	}

	// Check for validation errors
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return CategoryEscalatable
	}

	// Check for timeout errors
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return CategoryTransient
	}

	// Unknown errors are permanent (fail safe)
	return CategoryPermanent
}

// IsRetryable reports whether the error should be retried.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}

// IsEscalatable reports whether a different approach might help.
func IsEscalatable(err error) bool {
	return Categorize(err) == CategoryEscalatable
}
