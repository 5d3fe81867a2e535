package internal

import "time"

// Work is the body of an action. It receives the action itself so it can
// reschedule itself, and the state it was scheduled with.
type Work func(a *Action, state any) error

type Action struct {
	*Subscription

	scheduler *Scheduler
	work      Work

	state any
	delay time.Duration

	// position in the scheduler's queue, set under the scheduler lock
	due   time.Time
	seq   uint64
	index int
}

func newAction(s *Scheduler, work Work) *Action {
	a := &Action{
		scheduler: s,
		work:      work,
		index:     -1,
	}
	a.Subscription = NewSubscription(func() error {
		s.cancel(a)
		return nil
	})

	return a
}

// Schedule queues the action again after delay. Calling it from inside the
// action's own work makes it recurring; it goes to the tail of the actions
// due at the same time.
func (a *Action) Schedule(state any, delay time.Duration) *Action {
	if a.Closed() {
		return a
	}

	a.scheduler.enqueue(a, state, delay)
	return a
}

func (a *Action) Delay() time.Duration {
	a.scheduler.mu.Lock()
	defer a.scheduler.mu.Unlock()
	return a.delay
}

func (a *Action) Due() time.Time {
	a.scheduler.mu.Lock()
	defer a.scheduler.mu.Unlock()
	return a.due
}

func (a *Action) Scheduler() *Scheduler {
	return a.scheduler
}

func (a *Action) execute(state any) error {
	if a.Closed() {
		return nil
	}

	var err error
	if perr := a.scheduler.rt.Guard(func() { err = a.work(a, state) }); perr != nil {
		return perr
	}
	return err
}
