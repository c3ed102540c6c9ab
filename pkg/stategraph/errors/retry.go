package errors

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig configures how a failing operation, typically a node
// function or an LLM call, is reattempted.
type RetryConfig struct {
	// MaxAttempts counts the initial attempt, so 3 means two retries.
	MaxAttempts int

	// InitialBackoff is the pause before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the growing pause between retries.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the pause after each failed attempt.
	BackoffFactor float64

	// Jitter randomizes each pause by up to this fraction (0.0-1.0),
	// spreading out retries from parallel branches.
	Jitter float64

	// RetryableFunc overrides the default check, which retries only
	// errors that Categorize reports as transient.
	RetryableFunc func(error) bool
}

// DefaultRetry is the standard policy: three attempts with exponential
// backoff from one second.
var DefaultRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 1 * time.Second,
	MaxBackoff:     30 * time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// NoRetry gives the operation a single attempt.
var NoRetry = RetryConfig{
	MaxAttempts: 1,
}

// RetryOption configures a RetryConfig.
type RetryOption func(*RetryConfig)

// WithMaxAttempts sets the attempt limit, including the initial attempt.
func WithMaxAttempts(n int) RetryOption {
	return func(cfg *RetryConfig) { cfg.MaxAttempts = n }
}

// WithInitialBackoff sets the pause before the first retry.
func WithInitialBackoff(d time.Duration) RetryOption {
	return func(cfg *RetryConfig) { cfg.InitialBackoff = d }
}

// WithMaxBackoff caps the pause between retries.
func WithMaxBackoff(d time.Duration) RetryOption {
	return func(cfg *RetryConfig) { cfg.MaxBackoff = d }
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) RetryOption {
	return func(cfg *RetryConfig) { cfg.BackoffFactor = f }
}

// WithJitter sets the jitter fraction.
func WithJitter(j float64) RetryOption {
	return func(cfg *RetryConfig) { cfg.Jitter = j }
}

// WithRetryableFunc sets a custom retryability check.
func WithRetryableFunc(fn func(error) bool) RetryOption {
	return func(cfg *RetryConfig) { cfg.RetryableFunc = fn }
}

// NewRetryConfig builds a policy starting from DefaultRetry.
//
//	rc := errors.NewRetryConfig(
//	    errors.WithMaxAttempts(5),
//	    errors.WithInitialBackoff(200*time.Millisecond),
//	)
func NewRetryConfig(opts ...RetryOption) RetryConfig {
	cfg := DefaultRetry
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// RetryResult reports the outcome of a retried operation.
type RetryResult[T any] struct {
	// Value is the result of the successful attempt, if any.
	Value T

	// Err is the final error when every attempt failed, wrapped as a
	// CategorizedError.
	Err error

	// Attempts is the number of attempts actually made.
	Attempts int

	// Duration is the total wall-clock time, backoff included.
	Duration time.Duration
}

// WithRetry runs fn under the policy without a cancellation context.
func WithRetry[T any](cfg RetryConfig, fn func() (T, error)) RetryResult[T] {
	return WithRetryContext(context.Background(), cfg, func(_ context.Context) (T, error) {
		return fn()
	})
}

// WithRetryContext runs fn under the policy, giving up as soon as the
// context is cancelled, including mid-backoff.
func WithRetryContext[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func(context.Context) (T, error),
) RetryResult[T] {
	start := time.Now()
	pause := cfg.InitialBackoff
	var lastErr error

	retryable := cfg.RetryableFunc
	if retryable == nil {
		retryable = func(err error) bool {
			return Categorize(err) == CategoryTransient
		}
	}

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return RetryResult[T]{
				Err:      &CategorizedError{Err: err, Category: CategoryPermanent, Context: "context cancelled"},
				Attempts: attempt,
				Duration: time.Since(start),
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return RetryResult[T]{
				Value:    result,
				Attempts: attempt + 1,
				Duration: time.Since(start),
			}
		}
		lastErr = err

		if !retryable(err) {
			return RetryResult[T]{
				Err: &CategorizedError{
					Err:      err,
					Category: Categorize(err),
					Retries:  attempt + 1,
				},
				Attempts: attempt + 1,
				Duration: time.Since(start),
			}
		}

		// No pause after the final attempt.
		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return RetryResult[T]{
					Err:      &CategorizedError{Err: ctx.Err(), Category: CategoryPermanent, Context: "context cancelled during backoff"},
					Attempts: attempt + 1,
					Duration: time.Since(start),
				}
			case <-time.After(jittered(pause, cfg.Jitter)):
			}

			pause = time.Duration(float64(pause) * cfg.BackoffFactor)
			if pause > cfg.MaxBackoff {
				pause = cfg.MaxBackoff
			}
		}
	}

	return RetryResult[T]{
		Err: &CategorizedError{
			Err:      lastErr,
			Category: Categorize(lastErr),
			Retries:  cfg.MaxAttempts,
			Context:  "max retries exceeded",
		},
		Attempts: cfg.MaxAttempts,
		Duration: time.Since(start),
	}
}

// jittered shifts the pause by up to +/- base*jitter.
func jittered(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return base
	}
	offset := float64(base) * jitter * (rand.Float64()*2 - 1)
	return time.Duration(float64(base) + offset)
}
