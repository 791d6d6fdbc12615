// Package retry wraps source-layer operations with exponential backoff.
// The flood-control signal from Telegram ("wait exactly N seconds") is
// honored verbatim instead of the computed backoff delay.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// floodWaiter is implemented by errors carrying a mandated wait
// duration (domain.FloodWaitError)
type floodWaiter interface {
	error
	WaitDuration() time.Duration
}

// Options configures Do
type Options struct {
	MaxRetries int
	Backoff    Backoff
	// Retryable decides whether an ordinary error is worth another
	// attempt. Errors it rejects propagate immediately. Flood-wait
	// errors are always retried regardless of Retryable.
	Retryable func(error) bool
	Logger    zerolog.Logger
}

// Do invokes op, retrying on flood-wait and retryable errors up to
// MaxRetries additional attempts. The last error is returned once the
// budget is exhausted; terminal failures are never swallowed.
func Do(ctx context.Context, opts Options, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt >= opts.MaxRetries {
			return lastErr
		}

		var delay time.Duration
		var fw floodWaiter
		switch {
		case errors.As(lastErr, &fw):
			delay = fw.WaitDuration()
			opts.Logger.Warn().
				Dur("wait", delay).
				Int("attempt", attempt+1).
				Msg("flood wait signaled by source, honoring mandated delay")
		case opts.Retryable != nil && opts.Retryable(lastErr):
			delay = opts.Backoff.Delay(attempt)
			opts.Logger.Warn().
				Err(lastErr).
				Dur("delay", delay).
				Int("attempt", attempt+1).
				Msg("retryable source error, backing off")
		default:
			return lastErr
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
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
