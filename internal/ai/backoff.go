package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Backoff retries a model call on rate-limit errors with exponential delays
// of BaseDelay * 2^attempt. Any other error is returned at once.
type Backoff struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	// Timer replaces the real clock between attempts. Nil means time.After.
	Timer retry.Timer
	Log   *slog.Logger
}

// DefaultBackoff is 3 attempts with 1s and 2s waits in between.
func DefaultBackoff(log *slog.Logger) Backoff {
	return Backoff{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Log:         log,
	}
}

// Do runs call until it succeeds, fails with a non rate-limit error, or the
// attempts are exhausted, in which case a *RateLimitedError is returned.
func (b Backoff) Do(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	attempts := b.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	log := b.Log
	if log == nil {
		log = slog.Default()
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(b.BaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsRateLimited),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if n+1 >= attempts {
				return
			}
			log.WarnContext(ctx, "Rate limited, backing off",
				"attempt", n+1,
				"max_attempts", attempts,
				"wait", b.BaseDelay<<n,
				"error", err,
			)
		}),
	}
	if b.Timer != nil {
		opts = append(opts, retry.WithTimer(b.Timer))
	}

	out, err := retry.DoWithData(func() (string, error) { return call(ctx) }, opts...)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil || !IsRateLimited(err) {
		return "", err
	}

	log.ErrorContext(ctx, "Rate limit persisted after retries", "attempts", attempts, "error", err)
	return "", &RateLimitedError{Attempts: int(attempts), Err: err}
}
