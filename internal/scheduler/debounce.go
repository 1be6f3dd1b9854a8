package scheduler

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// debouncer runs a callback once a quiet period has passed since the last
// Schedule call. Its methods must be called with locker held; the callback
// runs with locker held too. A generation counter drops timer fires that
// raced with a later Schedule or Cancel.
type debouncer struct {
	clock  clock.Clock
	locker sync.Locker

	timer      *clock.Timer
	generation uint64
}

func newDebouncer(c clock.Clock, locker sync.Locker) *debouncer {
	return &debouncer{clock: c, locker: locker}
}

func (d *debouncer) Schedule(quiet time.Duration, fn func()) {
	d.stop()
	gen := d.generation

	d.timer = d.clock.AfterFunc(quiet, func() {
		d.locker.Lock()
		defer d.locker.Unlock()

		if gen != d.generation {
			return
		}
		d.timer = nil
		fn()
	})
}

func (d *debouncer) Cancel() {
	d.stop()
}

func (d *debouncer) Armed() bool {
	return d.timer != nil
}

func (d *debouncer) stop() {
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
