// Package watcher reloads snapshots when the files on disk change.
package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce is the default coalescing window. Snapshot writers
// rewrite groups and jobs files back to back; one reload covers both.
const DefaultDebounce = 250 * time.Millisecond

// Debouncer collapses bursts of triggers into a single callback after a
// quiet period.
type Debouncer struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer returns a debouncer with the given quiet window. A zero
// window uses DefaultDebounce.
func NewDebouncer(window time.Duration) *Debouncer {
	if window == 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window}
}

// Trigger schedules fn to run once the window elapses with no further
// triggers. A later Trigger replaces the pending callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		// Stop() can return false after the timer has already fired,
		// so the sequence counter decides which callback is current.
		d.mu.Lock()
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		if current {
			fn()
		}
	})
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
