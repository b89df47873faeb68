// Package activity executes named side-effecting operations under a bounded
// retry policy and classifies their outcomes.
//
// The classification contract matters more than the retry loop itself:
//
//   - a successful attempt returns the activity's result;
//   - exhausting every attempt returns an error wrapping ErrRetriesExhausted,
//     which callers recover from (the state machine maps it to a business
//     error outcome);
//   - a non-retryable fault, or cancellation of the caller's context, is
//     returned as-is and is fatal to the caller.
package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRetriesExhausted is wrapped into the error returned by Invoke when every
// attempt failed. Match with errors.Is.
var ErrRetriesExhausted = errors.New("retry attempts exhausted")

// Func is a single activity implementation: it receives a payload and returns
// a result or an error. The context carries the per-attempt deadline.
type Func[P, R any] func(ctx context.Context, payload P) (R, error)

// RetryPolicy configures Invoke. Zero values produce the defaults documented
// on each field.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls, first attempt included.
	// Defaults to 2.
	MaxAttempts int

	// InitialInterval is the wait before the second attempt. Defaults to 2s.
	InitialInterval time.Duration

	// BackoffCoefficient multiplies the interval after each failed attempt.
	// 1.0 keeps it constant. Defaults to 2.0.
	BackoffCoefficient float64

	// MaxInterval caps the wait between attempts. 0 means uncapped.
	MaxInterval time.Duration

	// AttemptTimeout bounds each individual attempt. Defaults to 1 minute.
	AttemptTimeout time.Duration

	// NonRetryable lists errors that abort the loop immediately. The fault is
	// returned unwrapped so the caller sees it as fatal rather than as
	// ErrRetriesExhausted.
	NonRetryable []error
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 2
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = 2 * time.Second
	}
	if p.BackoffCoefficient <= 0 {
		p.BackoffCoefficient = 2.0
	}
	if p.AttemptTimeout <= 0 {
		p.AttemptTimeout = time.Minute
	}
	return p
}

// Invoke runs fn under policy and classifies the outcome.
//
// Each attempt gets its own context deadline of policy.AttemptTimeout; an
// attempt that overruns it fails with context.DeadlineExceeded and counts like
// any other failure. Cancellation of the parent ctx aborts the loop and
// returns ctx.Err().
func Invoke[P, R any](ctx context.Context, name string, policy RetryPolicy, payload P, fn Func[P, R]) (R, error) {
	var zero R
	policy = policy.withDefaults()

	interval := policy.InitialInterval
	for attempt := 1; ; attempt++ {
		result, err := attemptOnce(ctx, policy.AttemptTimeout, payload, fn)
		if err == nil {
			return result, nil
		}

		slog.Debug("activity attempt failed",
			"activity", name,
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"error", err,
		)

		// The caller going away is not an activity failure.
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		for _, nr := range policy.NonRetryable {
			if errors.Is(err, nr) {
				return zero, err
			}
		}

		if attempt >= policy.MaxAttempts {
			slog.Info("activity failed after maximum retry attempts",
				"activity", name,
				"attempts", attempt,
			)
			return zero, fmt.Errorf("%s: %w (attempts=%d): %w", name, ErrRetriesExhausted, attempt, err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(interval):
		}

		next := time.Duration(float64(interval) * policy.BackoffCoefficient)
		if policy.MaxInterval > 0 && next > policy.MaxInterval {
			next = policy.MaxInterval
		}
		interval = next
	}
}

func attemptOnce[P, R any](ctx context.Context, timeout time.Duration, payload P, fn Func[P, R]) (R, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx, payload)
}
