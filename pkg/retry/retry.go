package retry

import (
	"context"
	"time"
)

// Policy drives repeated attempts of a fallible call. An attempt is
// repeated only while Retryable reports the returned error as worth
// retrying; a nil Retryable retries every error.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	Retryable    func(error) bool
}

// Do runs fn until it succeeds, exhausts MaxAttempts, hits a
// non-retryable error, or the context is cancelled. Backoff waits are
// timer based and respect context cancellation.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := p.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
}
