package viewstate

import (
	"sync"
	"time"
)

// Timer is the handle a Scheduler returns; *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d unless the returned Timer is stopped.
type Scheduler func(d time.Duration, f func()) Timer

// RealScheduler schedules on the runtime timer.
func RealScheduler(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer delays a commit until input pauses for a fixed interval. Each
// Trigger supersedes the previous one, so a burst produces at most one
// commit. A superseded or stopped timer that has already fired is ignored.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	schedule Scheduler
	timer    Timer
	gen      uint64
	stopped  bool
}

func NewDebouncer(delay time.Duration, schedule Scheduler) *Debouncer {
	if schedule == nil {
		schedule = RealScheduler
	}
	return &Debouncer{delay: delay, schedule: schedule}
}

// Trigger (re)starts the delay; fn runs when it elapses undisturbed.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.schedule(d.delay, func() {
		d.mu.Lock()
		current := !d.stopped && d.gen == gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops a pending commit, if any. The debouncer stays usable.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Pending reports whether a commit is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any pending commit and disables further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
