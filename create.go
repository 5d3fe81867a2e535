package rxjs

import "time"

// Of emits values in order, then completes.
func Of[T any](values ...T) *Observable[T] {
	return FromSlice(values)
}

// Empty completes without emitting.
func Empty[T any]() *Observable[T] {
	return New(func(s *Subscriber[T]) Teardown {
		s.Complete()
		return nil
	})
}

// Throw errors with err on subscribe.
func Throw[T any](err error) *Observable[T] {
	return New(func(s *Subscriber[T]) Teardown {
		s.Error(err)
		return nil
	})
}

// Timer emits 0 after delay on scheduler, then completes.
func Timer(delay time.Duration, scheduler SchedulerLike) *Observable[int] {
	return New(func(s *Subscriber[int]) Teardown {
		a := scheduler.Schedule(func(*Action, any) error {
			s.Next(0)
			s.Complete()
			return nil
		}, delay, nil)

		s.Add(a.Subscription)
		return nil
	})
}

// Interval emits 0, 1, 2, ... every period on scheduler, using a single
// recurring action.
func Interval(period time.Duration, scheduler SchedulerLike) *Observable[int] {
	return New(func(s *Subscriber[int]) Teardown {
		a := scheduler.Schedule(func(a *Action, state any) error {
			n := state.(int)
			s.Next(n)
			// the action may run before it is added to s
			if !s.Active() {
				return a.Unsubscribe()
			}
			a.Schedule(n+1, period)
			return nil
		}, period, 0)

		s.Add(a.Subscription)
		return nil
	})
}
