package rxjs

import "iter"

// InteropObservable is implemented by foreign stream types that can hand out
// something to subscribe to.
type InteropObservable interface {
	Observable() any
}

// Subscribable is anything accepting an Observer.
type Subscribable[T any] interface {
	Subscribe(Observer[T]) *Subscription
}

// Thenable is a value that settles once, like Future.
type Thenable[T any] interface {
	Then(onValue func(T), onError func(error))
}

// FromInterop converts a foreign observable. It fails with an
// *InteropTypeError when the object it returns cannot be subscribed with an
// Observer[T].
func FromInterop[T any](input InteropObservable) (*Observable[T], error) {
	if o, ok := input.(*Observable[T]); ok {
		return o, nil
	}

	target := input.Observable()
	if o, ok := target.(*Observable[T]); ok {
		return o, nil
	}

	sub, ok := target.(Subscribable[T])
	if !ok {
		return nil, &InteropTypeError{Value: target}
	}

	return New(func(s *Subscriber[T]) Teardown {
		return sub.Subscribe(s).Unsubscribe
	}), nil
}

// From converts input into an Observable. Supported inputs are
// *Observable[T], InteropObservable, []T, iter.Seq[T], channels of T and
// Thenable[T].
func From[T any](input any) (*Observable[T], error) {
	switch v := input.(type) {
	case *Observable[T]:
		return v, nil
	case InteropObservable:
		return FromInterop[T](v)
	case []T:
		return FromSlice(v), nil
	case iter.Seq[T]:
		return FromSeq(v), nil
	case func(yield func(T) bool):
		return FromSeq(iter.Seq[T](v)), nil
	case <-chan T:
		return FromChan(v), nil
	case chan T:
		return FromChan(v), nil
	case Thenable[T]:
		return FromThenable(v), nil
	default:
		return nil, &InteropTypeError{Value: input}
	}
}

// FromSlice emits the elements of values, then completes.
func FromSlice[T any](values []T) *Observable[T] {
	return New(func(s *Subscriber[T]) Teardown {
		for _, v := range values {
			if !s.Active() {
				return nil
			}
			s.Next(v)
		}
		s.Complete()
		return nil
	})
}

// FromSeq emits the values of seq, stopping early when unsubscribed.
func FromSeq[T any](seq iter.Seq[T]) *Observable[T] {
	return New(func(s *Subscriber[T]) Teardown {
		for v := range seq {
			s.Next(v)
			if !s.Active() {
				return nil
			}
		}
		s.Complete()
		return nil
	})
}

// FromChan emits what is received from ch until it is closed. Values are
// delivered from a separate goroutine which stops on unsubscribe.
func FromChan[T any](ch <-chan T) *Observable[T] {
	return New(func(s *Subscriber[T]) Teardown {
		done := make(chan struct{})

		go func() {
			for {
				select {
				case <-done:
					return
				case v, ok := <-ch:
					if !ok {
						s.Complete()
						return
					}
					s.Next(v)
				}
			}
		}()

		return func() error {
			close(done)
			return nil
		}
	})
}

// FromThenable emits the value p settles with, then completes, or errors.
func FromThenable[T any](p Thenable[T]) *Observable[T] {
	return New(func(s *Subscriber[T]) Teardown {
		p.Then(func(v T) {
			s.Next(v)
			s.Complete()
		}, s.Error)
		return nil
	})
}
