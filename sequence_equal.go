package rxjs

import "sync"

// SequenceEqual emits true when source and other emit the same values, in
// the same order, and both complete. Values are compared with ==; comparing
// values whose dynamic type is not comparable errors the result.
func SequenceEqual[T any](other *Observable[T]) OperatorFunc[T, bool] {
	return SequenceEqualFunc(other, func(a, b T) bool {
		return any(a) == any(b)
	})
}

// SequenceEqualFunc is SequenceEqual with a custom comparator. A panicking
// comparator errors the result. The two sides may emit from different
// goroutines.
func SequenceEqualFunc[T any](other *Observable[T], equal func(a, b T) bool) OperatorFunc[T, bool] {
	return func(source *Observable[T]) *Observable[bool] {
		return Lift(source, func(dest *Subscriber[bool], source *Observable[T]) Teardown {
			c := &sequenceCompare[T]{dest: dest}

			source.Subscribe(c.subscriber(&c.a, &c.b, equal))
			other.Subscribe(c.subscriber(&c.b, &c.a, func(x, y T) bool {
				return equal(y, x)
			}))

			return nil
		})
	}
}

// sequenceState is the per side state: values not matched yet and whether
// the side completed.
type sequenceState[T any] struct {
	buffer   []T
	complete bool
}

type sequenceCompare[T any] struct {
	// guards both sides and decided
	mu sync.Mutex

	a, b    sequenceState[T]
	decided bool

	dest *Subscriber[bool]
}

// decide runs step under the lock and emits its verdict, once, after
// releasing it.
func (c *sequenceCompare[T]) decide(step func() (isEqual, done bool)) {
	isEqual, done := c.step(step)
	if !done {
		return
	}

	c.dest.Next(isEqual)
	c.dest.Complete()
}

func (c *sequenceCompare[T]) step(step func() (bool, bool)) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.decided {
		return false, false
	}

	isEqual, done := step()
	c.decided = done
	return isEqual, done
}

func (c *sequenceCompare[T]) subscriber(self, other *sequenceState[T], equal func(a, b T) bool) *Subscriber[T] {
	var sub *Subscriber[T]

	sub = NewOperatorSubscriber(c.dest,
		func(v T) {
			c.decide(func() (bool, bool) {
				if len(other.buffer) == 0 {
					// an extra value can never be matched once the other side is done
					if other.complete {
						return false, true
					}
					self.buffer = append(self.buffer, v)
					return false, false
				}

				oldest := other.buffer[0]
				other.buffer = other.buffer[1:]
				if !equal(v, oldest) {
					return false, true
				}
				return false, false
			})
		},
		nil,
		func() {
			c.decide(func() (bool, bool) {
				self.complete = true
				if !other.complete {
					return false, false
				}
				return len(self.buffer) == 0 && len(other.buffer) == 0, true
			})
			sub.Unsubscribe()
		},
		nil,
	)

	return sub
}
