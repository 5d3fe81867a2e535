package internal

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// timerSlot keeps a single pending wake-up armed for the earliest due time.
type timerSlot struct {
	mu sync.Mutex

	clock clock.Clock
	timer *clock.Timer
	due   time.Time
}

func (t *timerSlot) arm(s *Scheduler, due time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil && !due.Before(t.due) {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}

	delay := due.Sub(t.clock.Now())
	if delay < 0 {
		delay = 0
	}

	t.due = due
	var timer *clock.Timer
	timer = t.clock.AfterFunc(delay, func() {
		t.mu.Lock()
		if t.timer == timer {
			t.timer = nil
		}
		t.mu.Unlock()

		s.flushAndReport()
	})
	t.timer = timer
}

func (t *timerSlot) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// trampoline flushes due work synchronously on the scheduling goroutine and
// falls back to a timer for delayed work.
type trampoline struct {
	timers timerSlot
}

func (d *trampoline) Now() time.Time { return d.timers.clock.Now() }

func (d *trampoline) Wake(s *Scheduler, due time.Time) {
	if !due.After(d.Now()) {
		s.flushAndReport()
		return
	}
	d.timers.arm(s, due)
}

func (d *trampoline) Stop() { d.timers.stop() }

func NewQueueScheduler(cfg SchedulerConfig) *Scheduler {
	cfg.defaults("queue")
	return newScheduler(cfg, &trampoline{timers: timerSlot{clock: cfg.Clock}})
}

// deferred always goes through the clock, zero delays included.
type deferred struct {
	timers timerSlot
}

func (d *deferred) Now() time.Time { return d.timers.clock.Now() }

func (d *deferred) Wake(s *Scheduler, due time.Time) { d.timers.arm(s, due) }

func (d *deferred) Stop() { d.timers.stop() }

func NewAsyncScheduler(cfg SchedulerConfig) *Scheduler {
	cfg.defaults("async")
	return newScheduler(cfg, &deferred{timers: timerSlot{clock: cfg.Clock}})
}

// asap hands due work to a dispatch function, at most one dispatch is in
// flight at a time.
type asap struct {
	timers   timerSlot
	dispatch func(func())
	pending  atomic.Bool
}

func (d *asap) Now() time.Time { return d.timers.clock.Now() }

func (d *asap) Wake(s *Scheduler, due time.Time) {
	if due.After(d.Now()) {
		d.timers.arm(s, due)
		return
	}

	if !d.pending.CompareAndSwap(false, true) {
		return
	}
	d.dispatch(func() {
		d.pending.Store(false)
		s.flushAndReport()
	})
}

func (d *asap) Stop() { d.timers.stop() }

func NewAsapScheduler(cfg SchedulerConfig) *Scheduler {
	cfg.defaults("asap")
	if cfg.Dispatch == nil {
		cfg.Dispatch = func(fn func()) { go fn() }
	}
	return newScheduler(cfg, &asap{timers: timerSlot{clock: cfg.Clock}, dispatch: cfg.Dispatch})
}

// frame aligns every wake-up to the next frame boundary.
type frame struct {
	timers   timerSlot
	interval time.Duration
}

func (d *frame) Now() time.Time { return d.timers.clock.Now() }

func (d *frame) Wake(s *Scheduler, due time.Time) {
	if rem := due.UnixNano() % int64(d.interval); rem != 0 {
		due = due.Add(d.interval - time.Duration(rem))
	}
	d.timers.arm(s, due)
}

func (d *frame) Stop() { d.timers.stop() }

func NewFrameScheduler(cfg SchedulerConfig) *Scheduler {
	cfg.defaults("frame")
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 16 * time.Millisecond
	}
	return newScheduler(cfg, &frame{timers: timerSlot{clock: cfg.Clock}, interval: cfg.FrameInterval})
}
