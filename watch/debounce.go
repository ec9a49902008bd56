// Package watch provides debounced file-change notification for the
// preview surfaces.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of triggers into one callback on the
// trailing edge: each Trigger reschedules the timer, so the callback runs
// once the burst has been quiet for the full delay.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a debouncer that runs fn delay after the last
// trigger. The callback runs on the timer goroutine.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules the callback, replacing any pending schedule.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Flush cancels any pending schedule and runs the callback right away on
// the calling goroutine. Manual refresh paths use it to skip the delay.
func (d *Debouncer) Flush() {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.mu.Unlock()

	d.fn()
}

// Stop cancels any pending schedule without running the callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
