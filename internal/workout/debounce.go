package workout

import (
	"sync"
	"time"
)

// DefaultSaveDebounce coalesces rapid in-session mutations into one
// snapshot write.
const DefaultSaveDebounce = 500 * time.Millisecond

// Debouncer runs fn once per quiet period: each Trigger restarts the
// delay timer. Cancel drops a pending call and waits out one already
// running, so once Cancel returns fn is not executing and will not
// execute again until the next Trigger.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex // guards timer and pending
	runMu   sync.Mutex // held while fn runs; Cancel joins through it
	timer   *time.Timer
	pending bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn after the quiet period, restarting the timer if
// a call is already pending.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// fire takes runMu before re-checking pending: a Cancel that clears the
// flag first wins, and a Cancel that arrives later blocks until fn is
// done.
func (d *Debouncer) fire() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	run := d.pending
	d.pending = false
	d.mu.Unlock()

	if run {
		d.fn()
	}
}

// Cancel drops any pending call and waits for an in-flight one to
// finish.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	d.mu.Unlock()

	// Join any call that already passed the pending check.
	d.runMu.Lock()
	defer d.runMu.Unlock()
}
