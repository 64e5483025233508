package wizard

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultAutosaveInterval is the idle window after which pending edits are
// flushed to the store.
const DefaultAutosaveInterval = 1500 * time.Millisecond

// Debouncer coalesces rapid triggers into a single callback per idle
// window. Each Trigger replaces the pending callback and restarts the
// timer, so only the last one runs.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	pending  func()
}

// NewDebouncer creates a Debouncer with the given idle interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	slog.Debug("Creating Debouncer", "interval", interval)
	return &Debouncer{interval: interval}
}

// Trigger schedules fn to run after the idle interval, cancelling any
// previously scheduled callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.timer = time.AfterFunc(d.interval, d.fire)
	slog.Debug("Debouncer Trigger scheduled", "interval", d.interval)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		slog.Debug("Debouncer executing scheduled function")
		fn()
	}
}

// Flush runs the pending callback immediately, if any, and cancels the
// timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		slog.Debug("Debouncer flushing pending function")
		fn()
	}
}

// Stop cancels any pending callback without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	slog.Debug("Debouncer stopped")
}

// Pending reports whether a callback is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
