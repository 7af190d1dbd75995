package errors

import (
	"context"
	"time"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Total attempts including the first (minimum 1)
	BaseDelay   time.Duration // Backoff unit; attempt n waits BaseDelay * 2^n
	MaxDelay    time.Duration // Upper bound for a single backoff (0 = unbounded)
}

// DefaultRetryConfig returns three attempts with one-second exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the real Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the wait before retrying after the zero-indexed attempt.
func Backoff(attempt int, unit time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	return unit * time.Duration(1<<uint(attempt))
}

// RetryFunc is one attempt of a retried operation.
type RetryFunc func(ctx context.Context, attempt int) error

// RetryResult holds the result of a retry operation.
type RetryResult struct {
	Attempts  int           // Number of attempts made
	LastError error         // The last error encountered
	Slept     time.Duration // Total backoff requested from the sleeper
	Success   bool
}

// Retrier runs an operation up to MaxAttempts times with exponential backoff.
type Retrier struct {
	config  RetryConfig
	sleep   Sleeper
	onRetry func(url string, attempt int, err error, wait time.Duration)
}

// NewRetrier creates a new retrier. A nil sleeper uses SleepContext.
func NewRetrier(config RetryConfig, sleep Sleeper) *Retrier {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if sleep == nil {
		sleep = SleepContext
	}
	return &Retrier{config: config, sleep: sleep}
}

// OnRetry registers a hook invoked before each backoff wait.
func (r *Retrier) OnRetry(fn func(url string, attempt int, err error, wait time.Duration)) {
	r.onRetry = fn
}

// Delay returns the backoff after the given attempt, respecting MaxDelay.
func (r *Retrier) Delay(attempt int) time.Duration {
	d := Backoff(attempt, r.config.BaseDelay)
	if r.config.MaxDelay > 0 && d > r.config.MaxDelay {
		return r.config.MaxDelay
	}
	return d
}

// Do executes fn until it succeeds or the attempt budget is spent.
//
// No backoff follows the final attempt, whatever its error. A 429 on the
// last attempt therefore gives up immediately instead of waiting out one
// more backoff with no request after it.
func (r *Retrier) Do(ctx context.Context, url string, fn RetryFunc) *RetryResult {
	result := &RetryResult{}

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		result.Attempts++

		err := fn(ctx, attempt)
		if err == nil {
			result.Success = true
			result.LastError = nil
			return result
		}
		result.LastError = err

		if ctx.Err() != nil {
			result.LastError = NewCancelledError(url, "retry")
			return result
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.Delay(attempt)
		if r.onRetry != nil {
			r.onRetry(url, attempt, err, wait)
		}
		result.Slept += wait
		if err := r.sleep(ctx, wait); err != nil {
			result.LastError = NewCancelledError(url, "backoff")
			return result
		}
	}

	return result
}
