package hxbind

import (
	"sync"
	"time"
)

// debouncer coalesces rapid successive triggers into one deferred call.
// Each Trigger resets the timer, so only the quiet period after the last
// trigger fires fn.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// Trigger schedules fn after the debounce delay, cancelling any pending
// call. fn runs on the timer goroutine.
func (d *debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Cancel drops any pending call. Used on container teardown so released
// containers never fire late reloads.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush cancels any pending call and runs fn immediately, for action
// controls that bypass the debounce.
func (d *debouncer) Flush(fn func()) {
	d.Cancel()
	fn()
}
