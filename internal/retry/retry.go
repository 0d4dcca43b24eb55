// Package retry runs an operation again after transient failures with a
// doubling delay between attempts.
package retry

import (
	"context"
	"log/slog"
	"time"
)

type Func func(context.Context) error

type Policy struct {
	Retries   int
	Delay     time.Duration
	MaxDelay  time.Duration
	Retryable func(error) bool // nil retries every error
}

// Do calls fn until it succeeds, returns a non-retryable error, the retries are
// exhausted or ctx is done.
func Do(ctx context.Context, log *slog.Logger, p Policy, op string, fn Func) error {
	delay := p.Delay

	for r := 0; ; r++ {
		err := fn(ctx)
		if err == nil || r >= p.Retries || (p.Retryable != nil && !p.Retryable(err)) {
			return err
		}

		log.DebugContext(ctx, "attempt failed, retrying",
			slog.String("op", op),
			slog.Int("attempt", r+1),
			slog.Int("max_retries", p.Retries),
			slog.Duration("delay", delay),
			slog.String("err", err.Error()),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}
