package rxjs

import (
	"sync/atomic"

	"github.com/benlesh/rxjs/internal"
)

// Observer receives the events of a stream.
type Observer[T any] interface {
	Next(T)
	Error(error)
	Complete()
}

// Callbacks is an Observer built from optional functions. A nil Error
// handler sends errors to the runtime's unhandled error sink.
type Callbacks[T any] struct {
	OnNext     func(T)
	OnError    func(error)
	OnComplete func()
}

func (c Callbacks[T]) Next(v T) {
	if c.OnNext != nil {
		c.OnNext(v)
	}
}

func (c Callbacks[T]) Error(err error) {
	if c.OnError != nil {
		c.OnError(err)
		return
	}
	internal.GetRuntime().ReportUnhandled(err)
}

func (c Callbacks[T]) Complete() {
	if c.OnComplete != nil {
		c.OnComplete()
	}
}

type hooks[T any] struct {
	next     func(T)
	error    func(error)
	complete func()
}

// Subscriber is the consumer side of a subscription. It enforces that no
// event is delivered after the first error or complete, and it is itself the
// Subscription that producers and operators attach their teardown to.
type Subscriber[T any] struct {
	*Subscription

	rt      *internal.Runtime
	stopped atomic.Bool
	hooks   hooks[T]
}

// NewSubscriber wraps observer in a subscriber bound to the calling
// goroutine's runtime.
func NewSubscriber[T any](observer Observer[T]) *Subscriber[T] {
	return newSubscriber(internal.GetRuntime(), observer)
}

func newSubscriber[T any](rt *internal.Runtime, observer Observer[T]) *Subscriber[T] {
	s := &Subscriber[T]{
		Subscription: internal.NewSubscription(nil),
		rt:           rt,
	}

	switch o := observer.(type) {
	case nil:
		s.hooks = hooks[T]{
			next:     func(T) {},
			error:    rt.ReportUnhandled,
			complete: func() {},
		}
	case Callbacks[T]:
		s.hooks = callbackHooks(rt, o)
	case *Callbacks[T]:
		s.hooks = callbackHooks(rt, *o)
	default:
		s.hooks = hooks[T]{
			next:     o.Next,
			error:    o.Error,
			complete: o.Complete,
		}
	}

	return s
}

func callbackHooks[T any](rt *internal.Runtime, c Callbacks[T]) hooks[T] {
	h := hooks[T]{
		next:     c.OnNext,
		error:    c.OnError,
		complete: c.OnComplete,
	}
	if h.next == nil {
		h.next = func(T) {}
	}
	if h.error == nil {
		h.error = rt.ReportUnhandled
	}
	if h.complete == nil {
		h.complete = func() {}
	}

	return h
}

// NewChainedSubscriber creates a subscriber that forwards every event to
// dest. It is owned by dest, so unsubscribing dest unsubscribes it.
func NewChainedSubscriber[T any](dest *Subscriber[T]) *Subscriber[T] {
	return NewOperatorSubscriber[T, T](dest, dest.Next, nil, nil, nil)
}

// NewOperatorSubscriber creates the subscriber an operator subscribes
// upstream with. Nil error and complete handlers forward to dest, a nil next
// handler drops values. Panics raised by the handlers are sent to dest as
// errors. onFinalize runs when the subscriber is torn down for any reason.
func NewOperatorSubscriber[T, R any](dest *Subscriber[R], onNext func(T), onError func(error), onComplete func(), onFinalize func()) *Subscriber[T] {
	s := &Subscriber[T]{
		Subscription: internal.NewSubscription(nil),
		rt:           dest.rt,
	}

	s.hooks.next = func(v T) {
		if onNext == nil {
			return
		}
		if err := s.rt.Guard(func() { onNext(v) }); err != nil {
			dest.Error(err)
		}
	}
	s.hooks.error = func(err error) {
		if onError == nil {
			dest.Error(err)
			return
		}
		if perr := s.rt.Guard(func() { onError(err) }); perr != nil {
			dest.Error(perr)
		}
	}
	s.hooks.complete = func() {
		if onComplete == nil {
			dest.Complete()
			return
		}
		if err := s.rt.Guard(onComplete); err != nil {
			dest.Error(err)
		}
	}

	if onFinalize != nil {
		s.AddFunc(func() error {
			onFinalize()
			return nil
		})
	}

	dest.Add(s.Subscription)
	return s
}

// Active reports whether the subscriber still accepts events.
func (s *Subscriber[T]) Active() bool {
	return !s.stopped.Load() && !s.Closed()
}

func (s *Subscriber[T]) Next(v T) {
	if !s.Active() {
		return
	}
	s.hooks.next(v)
}

// Error delivers a terminal error. Resources are released after the handler
// returns, or while a panic raised by it propagates.
func (s *Subscriber[T]) Error(err error) {
	if s.Closed() || !s.stopped.CompareAndSwap(false, true) {
		return
	}
	defer s.release()

	s.hooks.error(err)
}

// Complete delivers the terminal completion, then releases resources.
func (s *Subscriber[T]) Complete() {
	if s.Closed() || !s.stopped.CompareAndSwap(false, true) {
		return
	}
	defer s.release()

	s.hooks.complete()
}

// Unsubscribe stops the subscriber and tears it down.
func (s *Subscriber[T]) Unsubscribe() error {
	s.stopped.Store(true)
	return s.Subscription.Unsubscribe()
}

func (s *Subscriber[T]) release() {
	if err := s.Subscription.Unsubscribe(); err != nil {
		s.rt.ReportUnhandled(err)
	}
}
