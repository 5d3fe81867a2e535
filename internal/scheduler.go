package internal

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Dispatcher decides when a scheduler flushes. Every scheduler variant runs
// the same queue and flush loop and only differs in its dispatcher.
type Dispatcher interface {
	// Now is the scheduler's notion of the current time.
	Now() time.Time

	// Wake is called when the scheduler is idle and its earliest pending
	// action is due at due.
	Wake(s *Scheduler, due time.Time)

	// Stop releases timers held by the dispatcher.
	Stop()
}

type SchedulerConfig struct {
	Name    string
	Clock   clock.Clock
	Runtime *Runtime
	Logger  *zap.Logger

	// Registerer enables scheduler metrics when set
	Registerer prometheus.Registerer

	// asap only
	Dispatch func(func())

	// frame only
	FrameInterval time.Duration

	// virtual only, zero means unbounded
	MaxFrames time.Duration
}

func (c *SchedulerConfig) defaults(name string) {
	if c.Name == "" {
		c.Name = name
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Runtime == nil {
		c.Runtime = GetRuntime()
	}
	if c.Logger == nil {
		c.Logger = c.Runtime.Logger()
	}
}

type Scheduler struct {
	mu sync.Mutex

	name       string
	dispatcher Dispatcher
	queue      *ActionHeap

	// true while a flush loop is draining the queue, work scheduled in the
	// meantime is appended to the queue instead of recursing
	active bool

	// incremented for every enqueue, ties between equal due times
	seq uint64

	batcher *Batcher
	rt      *Runtime
	logger  *zap.Logger
	metrics *Metrics
}

func newScheduler(cfg SchedulerConfig, d Dispatcher) *Scheduler {
	s := &Scheduler{
		name:       cfg.Name,
		dispatcher: d,
		queue:      NewHeap(),
		batcher:    NewBatcher(),
		rt:         cfg.Runtime,
		logger:     cfg.Logger.With(zap.String("scheduler", cfg.Name)),
	}

	if cfg.Registerer != nil {
		s.metrics = NewMetrics(cfg.Registerer, cfg.Name)
	}

	return s
}

func (s *Scheduler) Name() string {
	return s.name
}

func (s *Scheduler) Now() time.Time {
	return s.dispatcher.Now()
}

// Schedule queues work to run after delay and returns the action, which can
// be unsubscribed to cancel it.
func (s *Scheduler) Schedule(work Work, delay time.Duration, state any) *Action {
	return newAction(s, work).Schedule(state, delay)
}

// Pending reports the number of queued actions.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Flush runs every action that is due. It returns the first error raised by
// an action, after unsubscribing the due actions that did not get to run.
func (s *Scheduler) Flush() error {
	return s.drain(s.ready, nil)
}

// Stop releases the dispatcher's timers. Queued actions stay queued.
func (s *Scheduler) Stop() {
	s.dispatcher.Stop()
}

func (s *Scheduler) ready(due time.Time) bool {
	return !due.After(s.dispatcher.Now())
}

func (s *Scheduler) enqueue(a *Action, state any, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	s.queue.Remove(a)
	a.state = state
	a.delay = delay
	a.due = s.dispatcher.Now().Add(delay)
	s.seq++
	a.seq = s.seq
	s.queue.Insert(a)
	idle := !s.active
	s.metrics.observeScheduled(s.queue.Len())
	s.mu.Unlock()

	if idle {
		s.wake()
	}
}

func (s *Scheduler) cancel(a *Action) {
	s.mu.Lock()
	removed := s.queue.Remove(a)
	if removed {
		s.metrics.observeCancelled(s.queue.Len())
	}
	s.mu.Unlock()
}

func (s *Scheduler) wake() {
	if s.batcher.IsBatching() {
		return
	}

	s.mu.Lock()
	head := s.queue.Peek()
	if head == nil || s.active {
		s.mu.Unlock()
		return
	}
	due := head.due
	s.mu.Unlock()

	s.dispatcher.Wake(s, due)
}

// drain is the single flush loop. ready decides whether the head of the
// queue may run, onRun is called right before an action executes.
func (s *Scheduler) drain(ready func(time.Time) bool, onRun func(*Action)) error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()

		s.wake()
	}()

	for {
		s.mu.Lock()
		a := s.queue.Peek()
		if a == nil || !ready(a.due) {
			s.mu.Unlock()
			return nil
		}
		s.queue.Shift()
		state := a.state
		s.mu.Unlock()

		if onRun != nil {
			onRun(a)
		}

		if err := a.execute(state); err != nil {
			s.metrics.observeFailed()
			s.abort(ready)
			return err
		}
		s.metrics.observeExecuted(s.Pending())
	}
}

// abort unsubscribes the due actions left behind by a failed flush.
func (s *Scheduler) abort(ready func(time.Time) bool) {
	s.mu.Lock()
	var rest []*Action
	for a := s.queue.Peek(); a != nil && ready(a.due); a = s.queue.Peek() {
		rest = append(rest, s.queue.Shift())
	}
	s.mu.Unlock()

	for _, a := range rest {
		if err := a.Unsubscribe(); err != nil {
			s.report(err)
		}
	}
}

func (s *Scheduler) flushAndReport() {
	if err := s.Flush(); err != nil {
		s.report(err)
	}
}

func (s *Scheduler) report(err error) {
	s.logger.Warn("scheduled action failed", zap.Error(err))
	s.rt.ReportUnhandled(err)
}
