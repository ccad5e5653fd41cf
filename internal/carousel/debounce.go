package carousel

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending action. Arming it again before the action fires
// replaces the pending action and restarts the wait.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// Arm schedules action after wait, cancelling any action still pending.
func (d *Debouncer) Arm(wait time.Duration, action func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(wait, func() {
		d.mu.Lock()
		if gen != d.gen {
			// re-armed or cancelled after this timer already fired
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		action()
	})
}

// Cancel drops the pending action, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether an action is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
