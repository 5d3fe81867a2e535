package internal

import (
	"sync"
	"time"
)

// VirtualEpoch is frame zero of every virtual time scheduler.
var VirtualEpoch = time.Unix(0, 0).UTC()

type virtualClock struct {
	mu    sync.Mutex
	frame time.Time
}

func (d *virtualClock) Now() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

func (d *virtualClock) set(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.After(d.frame) {
		d.frame = t
	}
}

// virtual time never wakes up on its own, it moves when flushed.
func (d *virtualClock) Wake(*Scheduler, time.Time) {}

func (d *virtualClock) Stop() {}

// VirtualScheduler runs actions in due-time order against a virtual clock
// that only advances while flushing.
type VirtualScheduler struct {
	*Scheduler

	clock     *virtualClock
	maxFrames time.Duration
}

func NewVirtualScheduler(cfg SchedulerConfig) *VirtualScheduler {
	cfg.defaults("virtual")
	vc := &virtualClock{frame: VirtualEpoch}

	return &VirtualScheduler{
		Scheduler: newScheduler(cfg, vc),
		clock:     vc,
		maxFrames: cfg.MaxFrames,
	}
}

// Frame is the virtual time elapsed since VirtualEpoch.
func (v *VirtualScheduler) Frame() time.Duration {
	return v.clock.Now().Sub(VirtualEpoch)
}

// Flush runs every queued action, including the ones they schedule, moving
// the clock to each action's due time. Actions due after MaxFrames stay queued.
func (v *VirtualScheduler) Flush() error {
	return v.drain(func(due time.Time) bool {
		return v.maxFrames <= 0 || !due.After(VirtualEpoch.Add(v.maxFrames))
	}, v.advance)
}

// AdvanceBy runs the actions due within d and leaves the clock at now+d.
func (v *VirtualScheduler) AdvanceBy(d time.Duration) error {
	limit := v.clock.Now().Add(d)
	err := v.drain(func(due time.Time) bool {
		return !due.After(limit)
	}, v.advance)
	if err == nil {
		v.clock.set(limit)
	}
	return err
}

func (v *VirtualScheduler) advance(a *Action) {
	v.clock.set(a.due)
}
