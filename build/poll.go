package build

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nanhai/arena/errors"
)

// Policy bounds one polling loop. A zero MaxAttempts means the loop is
// bounded by Budget alone, and vice versa.
type Policy struct {
	MaxAttempts int
	Budget      time.Duration
	Interval    time.Duration
}

// Stage policies for the ingestion chain. Stage 1 counts attempts,
// stage 3 counts elapsed time.
var (
	jobQueryPolicy = Policy{MaxAttempts: 7, Interval: 3 * time.Second}
	reportPolicy   = Policy{Budget: 20 * time.Second, Interval: 2 * time.Second}
)

// PollUntil calls fetch until accept returns true, the policy is
// exhausted, or the context is cancelled.
//
// A fetch error counts as "not ready yet" and is retried like an
// unaccepted result. Exhaustion returns errors.ErrTimeout; callers
// treat it as no data, not as a crash. Sleeps are timer-based and wake
// immediately on context cancellation.
func PollUntil[T any](ctx context.Context, policy Policy, logger *zap.SugaredLogger, fetch func(context.Context) (T, error), accept func(T) bool) (T, error) {
	var zero T
	start := time.Now()

	for attempt := 1; ; attempt++ {
		result, err := fetch(ctx)
		if err == nil && accept(result) {
			return result, nil
		}
		if err != nil && logger != nil {
			logger.Warnw("Poll fetch not ready",
				"attempt", attempt,
				"error", err)
		}

		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			return zero, errors.Wrapf(errors.ErrTimeout, "no accepted result after %d attempts", attempt)
		}
		if policy.Budget > 0 && time.Since(start) >= policy.Budget {
			return zero, errors.Wrapf(errors.ErrTimeout, "no accepted result within %s", policy.Budget)
		}

		timer := time.NewTimer(policy.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, errors.Wrap(ctx.Err(), "poll cancelled")
		case <-timer.C:
		}
	}
}
