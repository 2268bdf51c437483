package hxbind

import (
	"context"
	"fmt"
	"time"
)

// retryPolicy wraps a provider call with bounded retry and linearly
// increasing backoff. Retries are transparent to callers: the result is
// either a success or a single terminal ProviderError carrying the last
// underlying failure.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration

	// sleep is swappable for tests; defaults to a context-aware wait.
	sleep func(ctx context.Context, d time.Duration) error
}

func newRetryPolicy(opts Options) *retryPolicy {
	return &retryPolicy{
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.RetryBaseDelay,
		sleep:      sleepCtx,
	}
}

// Do invokes fn until it succeeds or attempts are exhausted. fn is called at
// most maxRetries+1 times. Context cancellation stops the backoff wait and
// surfaces immediately.
func (p *retryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var last error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, time.Duration(attempt)*p.baseDelay); err != nil {
				return fmt.Errorf("%w: %w", ErrProvider, err)
			}
		}
		last = fn(ctx)
		if last == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %w", ErrProvider, last)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
