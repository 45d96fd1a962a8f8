// Package debounce coalesces bursts of calls into the last one and cancels
// work started by calls that have been superseded.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs only the most recent triggered function, after delay has
// passed without a newer trigger. Starting a new trigger stops the pending
// timer and cancels the context of any run still in flight.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

// New creates a Debouncer. A zero delay still runs fn asynchronously but
// keeps the "latest wins" cancellation.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn and supersedes any earlier trigger. fn receives a
// context derived from ctx that is cancelled when a newer trigger arrives
// or Cancel is called.
func (d *Debouncer) Trigger(ctx context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		defer cancel()
		if runCtx.Err() != nil {
			return
		}
		fn(runCtx)
	})
}

// Cancel stops the pending timer and cancels in-flight work.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
