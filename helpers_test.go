package rxjs

import "go.uber.org/zap"

// manual is a hot source driven by the test. It remembers the subscriber of
// its latest subscription.
type manual[T any] struct {
	sub        *Subscriber[T]
	subscribed int
	torndown   int
}

func newManual[T any]() (*Observable[T], *manual[T]) {
	m := &manual[T]{}
	return New(func(s *Subscriber[T]) Teardown {
		m.sub = s
		m.subscribed++
		return func() error {
			m.torndown++
			return nil
		}
	}), m
}

func (m *manual[T]) next(values ...T) {
	for _, v := range values {
		m.sub.Next(v)
	}
}

func (m *manual[T]) complete() { m.sub.Complete() }

func (m *manual[T]) error(err error) { m.sub.Error(err) }

// recorder collects every event it receives.
type recorder[T any] struct {
	values    []T
	err       error
	completed bool
	events    int
}

func (r *recorder[T]) Next(v T) {
	r.values = append(r.values, v)
	r.events++
}

func (r *recorder[T]) Error(err error) {
	r.err = err
	r.events++
}

func (r *recorder[T]) Complete() {
	r.completed = true
	r.events++
}

func testRuntime(unhandled *[]error) *Runtime {
	return NewRuntime(
		WithLogger(zap.NewNop()),
		WithUnhandledErrorHandler(func(err error) {
			if unhandled != nil {
				*unhandled = append(*unhandled, err)
			}
		}),
	)
}
