package rxjs

import "time"

// Map applies project to every value.
func Map[T, R any](project func(T) R) OperatorFunc[T, R] {
	return func(source *Observable[T]) *Observable[R] {
		return Lift(source, func(dest *Subscriber[R], source *Observable[T]) Teardown {
			source.Subscribe(NewOperatorSubscriber(dest, func(v T) {
				dest.Next(project(v))
			}, nil, nil, nil))
			return nil
		})
	}
}

// Filter forwards the values predicate accepts.
func Filter[T any](predicate func(T) bool) OperatorFunc[T, T] {
	return func(source *Observable[T]) *Observable[T] {
		return Lift(source, func(dest *Subscriber[T], source *Observable[T]) Teardown {
			source.Subscribe(NewOperatorSubscriber(dest, func(v T) {
				if predicate(v) {
					dest.Next(v)
				}
			}, nil, nil, nil))
			return nil
		})
	}
}

// Take forwards the first n values, then completes and unsubscribes upstream.
func Take[T any](n int) OperatorFunc[T, T] {
	return func(source *Observable[T]) *Observable[T] {
		if n <= 0 {
			return Empty[T]()
		}

		return Lift(source, func(dest *Subscriber[T], source *Observable[T]) Teardown {
			seen := 0
			source.Subscribe(NewOperatorSubscriber(dest, func(v T) {
				seen++
				if seen > n {
					return
				}
				dest.Next(v)
				if seen == n {
					dest.Complete()
				}
			}, nil, nil, nil))
			return nil
		})
	}
}

// Single emits the only value of source. It errors with ErrEmpty when source
// completes empty and with a *SequenceError as soon as a second value arrives.
func Single[T any]() OperatorFunc[T, T] {
	return func(source *Observable[T]) *Observable[T] {
		return Lift(source, func(dest *Subscriber[T], source *Observable[T]) Teardown {
			var (
				value T
				has   bool
			)
			source.Subscribe(NewOperatorSubscriber(dest, func(v T) {
				if has {
					dest.Error(&SequenceError{Message: "too many values match"})
					return
				}
				value, has = v, true
			}, nil, func() {
				if !has {
					dest.Error(ErrEmpty)
					return
				}
				dest.Next(value)
				dest.Complete()
			}, nil))
			return nil
		})
	}
}

// ObserveOn re-emits every event of source from scheduler.
func ObserveOn[T any](scheduler SchedulerLike, delay time.Duration) OperatorFunc[T, T] {
	return func(source *Observable[T]) *Observable[T] {
		return Lift(source, func(dest *Subscriber[T], source *Observable[T]) Teardown {
			source.Subscribe(NewOperatorSubscriber(dest,
				func(v T) {
					executeSchedule(dest.Subscription, scheduler, delay, func() { dest.Next(v) })
				},
				func(err error) {
					executeSchedule(dest.Subscription, scheduler, delay, func() { dest.Error(err) })
				},
				func() {
					executeSchedule(dest.Subscription, scheduler, delay, dest.Complete)
				},
				nil,
			))
			return nil
		})
	}
}
