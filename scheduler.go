package rxjs

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/benlesh/rxjs/internal"
)

type (
	// Scheduler dispatches actions from an ordered queue.
	Scheduler = internal.Scheduler
	// VirtualScheduler runs its queue against a clock that only moves when flushed.
	VirtualScheduler = internal.VirtualScheduler
	// Action is one unit of scheduled, cancellable work.
	Action = internal.Action
	// Work is the body of an Action.
	Work = internal.Work
)

// SchedulerLike is what operators need from a scheduler.
type SchedulerLike interface {
	Now() time.Time
	Schedule(work Work, delay time.Duration, state any) *Action
}

// SchedulerOption configures a scheduler.
type SchedulerOption func(*internal.SchedulerConfig)

// WithClock sets the clock timers are armed on.
func WithClock(c clock.Clock) SchedulerOption {
	return func(cfg *internal.SchedulerConfig) { cfg.Clock = c }
}

// WithSchedulerName names the scheduler in logs and metrics.
func WithSchedulerName(name string) SchedulerOption {
	return func(cfg *internal.SchedulerConfig) { cfg.Name = name }
}

// WithSchedulerLogger sets the logger flush failures are written to.
func WithSchedulerLogger(logger *zap.Logger) SchedulerOption {
	return func(cfg *internal.SchedulerConfig) { cfg.Logger = logger }
}

// WithSchedulerRuntime sets the runtime that receives errors from flushes
// with no caller to return them to.
func WithSchedulerRuntime(rt *Runtime) SchedulerOption {
	return func(cfg *internal.SchedulerConfig) { cfg.Runtime = rt.rt }
}

// WithMetrics registers the scheduler's counters with reg.
func WithMetrics(reg prometheus.Registerer) SchedulerOption {
	return func(cfg *internal.SchedulerConfig) { cfg.Registerer = reg }
}

// WithDispatch sets how an asap scheduler runs its flushes.
func WithDispatch(dispatch func(func())) SchedulerOption {
	return func(cfg *internal.SchedulerConfig) { cfg.Dispatch = dispatch }
}

// WithFrameInterval sets the frame length of a frame scheduler.
func WithFrameInterval(d time.Duration) SchedulerOption {
	return func(cfg *internal.SchedulerConfig) { cfg.FrameInterval = d }
}

// WithMaxFrames bounds how far a virtual scheduler's Flush advances.
func WithMaxFrames(d time.Duration) SchedulerOption {
	return func(cfg *internal.SchedulerConfig) { cfg.MaxFrames = d }
}

func schedulerConfig(opts []SchedulerOption) internal.SchedulerConfig {
	var cfg internal.SchedulerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewQueueScheduler runs due work synchronously, trampolining work scheduled
// from inside a running action instead of recursing.
func NewQueueScheduler(opts ...SchedulerOption) *Scheduler {
	return internal.NewQueueScheduler(schedulerConfig(opts))
}

// NewAsyncScheduler runs every action from a timer.
func NewAsyncScheduler(opts ...SchedulerOption) *Scheduler {
	return internal.NewAsyncScheduler(schedulerConfig(opts))
}

// NewAsapScheduler runs due work as soon as the dispatch function gets to it.
func NewAsapScheduler(opts ...SchedulerOption) *Scheduler {
	return internal.NewAsapScheduler(schedulerConfig(opts))
}

// NewFrameScheduler runs work on frame boundaries.
func NewFrameScheduler(opts ...SchedulerOption) *Scheduler {
	return internal.NewFrameScheduler(schedulerConfig(opts))
}

// NewVirtualScheduler creates a scheduler for deterministic, time based tests.
func NewVirtualScheduler(opts ...SchedulerOption) *VirtualScheduler {
	return internal.NewVirtualScheduler(schedulerConfig(opts))
}

var (
	queueScheduler = sync.OnceValue(func() *Scheduler { return NewQueueScheduler() })
	asyncScheduler = sync.OnceValue(func() *Scheduler { return NewAsyncScheduler() })
	asapScheduler  = sync.OnceValue(func() *Scheduler { return NewAsapScheduler() })
)

// QueueScheduler is the shared trampolining scheduler.
func QueueScheduler() *Scheduler { return queueScheduler() }

// AsyncScheduler is the shared timer scheduler.
func AsyncScheduler() *Scheduler { return asyncScheduler() }

// AsapScheduler is the shared asap scheduler.
func AsapScheduler() *Scheduler { return asapScheduler() }

// executeSchedule runs work on scheduler as a child of parent. The action
// removes itself from parent once it ran.
func executeSchedule(parent *Subscription, scheduler SchedulerLike, delay time.Duration, work func()) {
	a := scheduler.Schedule(func(a *Action, _ any) error {
		work()
		return a.Unsubscribe()
	}, delay, nil)

	parent.Add(a.Subscription)
}
