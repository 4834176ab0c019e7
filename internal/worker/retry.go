package worker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// RetryPolicy defines exponential backoff parameters.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultPolicy is used for startup dependencies such as the Redis connection.
var DefaultPolicy = RetryPolicy{
	MaxRetries:    5,
	InitialDelay:  500 * time.Millisecond,
	MaxDelay:      10 * time.Second,
	BackoffFactor: 2,
}

// NextDelay returns delay for a given attempt (1-based) with clamping.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// Retry calls op until it succeeds, the policy's attempts run out or ctx ends.
// The last error from op is returned wrapped with the attempt count.
func Retry(ctx context.Context, policy RetryPolicy, name string, logger *zerolog.Logger, op func(context.Context) error) error {
	maxAttempts := policy.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "retry").Str("op", name).Logger()
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= maxAttempts {
			return fmt.Errorf("%s failed after %d attempts: %w", name, attempt, err)
		}

		delay := policy.NextDelay(attempt)
		l.Warn().Err(err).Int("attempt", attempt).Dur("next_in", delay).Msg("operation failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w", name, ctx.Err())
		case <-timer.C:
		}
	}
}
