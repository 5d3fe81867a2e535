package rxjs

import (
	"context"
	"sync"
)

// Future is the settled outcome of a stream consumed to its end.
type Future[T any] struct {
	mu sync.Mutex

	done    chan struct{}
	settled bool

	value T
	ok    bool
	err   error

	callbacks []func()
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, ok bool) bool {
	return f.settle(func() { f.value, f.ok = v, ok })
}

func (f *Future[T]) reject(err error) bool {
	return f.settle(func() { f.err = err })
}

// settle applies the first outcome only.
func (f *Future[T]) settle(apply func()) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	apply()
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	return true
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the settled value, whether a value was produced at all, and
// the failure. It is only meaningful once Done is closed.
func (f *Future[T]) Result() (T, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.ok, f.err
}

// Wait blocks until the future settles or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		v, _, err := f.Result()
		return v, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then calls onValue or onError once the future settles, right away if it
// already has.
func (f *Future[T]) Then(onValue func(T), onError func(error)) {
	cb := func() {
		v, _, err := f.Result()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onValue != nil {
			onValue(v)
		}
	}

	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	cb()
}

// ForEach calls next for every value. The future resolves when the stream
// completes and rejects when it errors or next panics. If external is
// unsubscribed first, the stream is cancelled and the future rejects with
// ErrAborted, even if completion was about to follow.
func (o *Observable[T]) ForEach(next func(T), external *Subscription) *Future[struct{}] {
	f := newFuture[struct{}]()

	if external != nil && external.Closed() {
		f.reject(ErrAborted)
		return f
	}

	var sub *Subscriber[T]
	sub = NewSubscriber[T](Callbacks[T]{
		OnNext: func(v T) {
			if err := sub.rt.Guard(func() { next(v) }); err != nil {
				f.reject(err)
				sub.Unsubscribe()
			}
		},
		OnError:    func(err error) { f.reject(err) },
		OnComplete: func() { f.resolve(struct{}{}, true) },
	})

	if external != nil {
		abort := external.AddFunc(func() error {
			f.reject(ErrAborted)
			return sub.Unsubscribe()
		})
		sub.AddFunc(func() error {
			external.Remove(abort)
			return nil
		})
	}

	o.Subscribe(sub)
	return f
}

// ToFuture resolves with the last value once the stream completes, with ok
// false when it completed empty, and rejects on error.
func (o *Observable[T]) ToFuture() *Future[T] {
	f := newFuture[T]()

	var (
		last T
		has  bool
	)
	o.SubscribeFunc(
		func(v T) { last, has = v, true },
		func(err error) { f.reject(err) },
		func() { f.resolve(last, has) },
	)

	return f
}
