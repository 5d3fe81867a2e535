// Package rxjs is a push based event stream engine. Observables describe how
// to produce values, subscribers consume them, and every party shares one
// Subscription graph so cleanup runs exactly once whether a stream
// completes, fails or is cancelled.
package rxjs

import "github.com/benlesh/rxjs/internal"

// Observable is a cold stream: every subscription runs the producer again.
type Observable[T any] struct {
	produce func(*Subscriber[T]) Teardown
}

// New creates an Observable from a producer. The producer pushes events to
// the subscriber and may return a teardown to run on unsubscribe.
func New[T any](produce func(*Subscriber[T]) Teardown) *Observable[T] {
	return &Observable[T]{produce: produce}
}

// Subscribe starts the stream for observer and returns the handle that
// cancels it. A *Subscriber is used as is; a nil observer ignores every event
// except errors, which go to the unhandled error sink.
func (o *Observable[T]) Subscribe(observer Observer[T]) *Subscription {
	return o.subscribe(internal.GetRuntime(), observer)
}

// SubscribeFunc subscribes with optional callbacks.
func (o *Observable[T]) SubscribeFunc(next func(T), err func(error), complete func()) *Subscription {
	return o.Subscribe(Callbacks[T]{OnNext: next, OnError: err, OnComplete: complete})
}

// SubscribeRuntime subscribes with an explicit runtime instead of the calling
// goroutine's.
func (o *Observable[T]) SubscribeRuntime(rt *Runtime, observer Observer[T]) *Subscription {
	return o.subscribe(rt.rt, observer)
}

func (o *Observable[T]) subscribe(rt *internal.Runtime, observer Observer[T]) *Subscription {
	sub, ok := observer.(*Subscriber[T])
	if !ok {
		sub = newSubscriber(rt, observer)
	}

	o.run(sub)
	return sub.Subscription
}

func (o *Observable[T]) run(sub *Subscriber[T]) {
	if o.produce == nil {
		return
	}

	err := sub.rt.Guard(func() {
		if teardown := o.produce(sub); teardown != nil {
			sub.AddFunc(teardown)
		}
	})
	if err == nil {
		return
	}

	// a terminal handler panicked, there is nobody left to deliver to
	if !sub.Active() {
		sub.rt.ReportUnhandled(err)
		return
	}
	sub.Error(err)
}

// Observable makes every Observable usable through the interop boundary.
func (o *Observable[T]) Observable() any {
	return o
}

// Operator is the body of a lifted operator. It receives the downstream
// subscriber and the upstream source, and is responsible for subscribing to
// source with a subscriber that forwards to dest.
type Operator[T, R any] func(dest *Subscriber[R], source *Observable[T]) Teardown

// Lift derives a new Observable that runs op against source for every
// subscription.
func Lift[T, R any](source *Observable[T], op Operator[T, R]) *Observable[R] {
	return New(func(dest *Subscriber[R]) Teardown {
		return op(dest, source)
	})
}

// OperatorFunc transforms one Observable into another.
type OperatorFunc[T, R any] func(*Observable[T]) *Observable[R]

// Pipe applies ops from left to right.
func (o *Observable[T]) Pipe(ops ...OperatorFunc[T, T]) *Observable[T] {
	result := o
	for _, op := range ops {
		result = op(result)
	}
	return result
}

func Pipe2[A, B, C any](source *Observable[A], op1 OperatorFunc[A, B], op2 OperatorFunc[B, C]) *Observable[C] {
	return op2(op1(source))
}

func Pipe3[A, B, C, D any](source *Observable[A], op1 OperatorFunc[A, B], op2 OperatorFunc[B, C], op3 OperatorFunc[C, D]) *Observable[D] {
	return op3(op2(op1(source)))
}

func Pipe4[A, B, C, D, E any](source *Observable[A], op1 OperatorFunc[A, B], op2 OperatorFunc[B, C], op3 OperatorFunc[C, D], op4 OperatorFunc[D, E]) *Observable[E] {
	return op4(op3(op2(op1(source))))
}
