package hxbind

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRetry(maxRetries int) (*retryPolicy, *[]time.Duration) {
	waits := &[]time.Duration{}
	p := &retryPolicy{
		maxRetries: maxRetries,
		baseDelay:  10 * time.Millisecond,
		sleep: func(_ context.Context, d time.Duration) error {
			*waits = append(*waits, d)
			return nil
		},
	}
	return p, waits
}

func TestRetryBound(t *testing.T) {
	p, _ := newTestRetry(2)

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("boom")
	})

	if calls != 3 {
		t.Errorf("calls = %d, want maxRetries+1 = 3", calls)
	}
	if !IsProviderError(err) {
		t.Errorf("error = %v, want ProviderError", err)
	}
}

func TestRetrySucceedsMidway(t *testing.T) {
	p, waits := newTestRetry(3)

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// Backoff increases by one base delay per attempt.
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if len(*waits) != len(want) {
		t.Fatalf("waits = %v, want %v", *waits, want)
	}
	for i := range want {
		if (*waits)[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, (*waits)[i], want[i])
		}
	}
}

func TestRetryFirstTrySuccess(t *testing.T) {
	p, waits := newTestRetry(5)

	calls := 0
	if err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 1 || len(*waits) != 0 {
		t.Errorf("calls = %d waits = %d, want 1/0", calls, len(*waits))
	}
}

func TestRetryZeroRetries(t *testing.T) {
	p, _ := newTestRetry(0)

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("boom")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want exactly 1", calls)
	}
	if !IsProviderError(err) {
		t.Errorf("error = %v, want ProviderError", err)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := &retryPolicy{maxRetries: 5, baseDelay: time.Millisecond, sleep: sleepCtx}
	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("boom")
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (cancelled during backoff)", calls)
	}
	if !IsProviderError(err) || !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want ProviderError wrapping context.Canceled", err)
	}
}

func TestDebounceCoalesces(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)

	fired := make(chan struct{}, 10)
	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired <- struct{}{} })
	}

	select {
	case <-fired:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("debounced call never fired")
	}
	select {
	case <-fired:
		t.Error("coalesced triggers fired more than once")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebounceCancel(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })
	d.Cancel()

	select {
	case <-fired:
		t.Error("cancelled trigger fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebounceFlushRunsImmediately(t *testing.T) {
	d := newDebouncer(time.Hour)

	pending := make(chan struct{}, 1)
	d.Trigger(func() { pending <- struct{}{} })

	ran := false
	d.Flush(func() { ran = true })
	if !ran {
		t.Error("Flush should run synchronously")
	}
	select {
	case <-pending:
		t.Error("Flush should cancel the pending debounced call")
	case <-time.After(20 * time.Millisecond):
	}
}
