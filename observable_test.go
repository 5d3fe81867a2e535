package rxjs

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservable(t *testing.T) {
	t.Run("every subscription runs the producer again", func(t *testing.T) {
		runs := 0
		src := New(func(s *Subscriber[int]) Teardown {
			runs++
			s.Next(runs)
			s.Complete()
			return nil
		})

		first, second := &recorder[int]{}, &recorder[int]{}
		src.Subscribe(first)
		src.Subscribe(second)

		assert.Equal(t, []int{1}, first.values)
		assert.Equal(t, []int{2}, second.values)
	})

	t.Run("unsubscribe runs the producer teardown once", func(t *testing.T) {
		src, m := newManual[int]()

		sub := src.Subscribe(nil)
		require.NoError(t, sub.Unsubscribe())
		require.NoError(t, sub.Unsubscribe())

		assert.Equal(t, 1, m.torndown)
	})

	t.Run("a producer teardown returned after completion runs immediately", func(t *testing.T) {
		torndown := false
		New(func(s *Subscriber[int]) Teardown {
			s.Complete()
			return func() error {
				torndown = true
				return nil
			}
		}).Subscribe(nil)

		assert.True(t, torndown)
	})

	t.Run("producer panics become errors", func(t *testing.T) {
		r := &recorder[int]{}
		New(func(s *Subscriber[int]) Teardown {
			panic("producer")
		}).Subscribe(r)

		var perr *PanicError
		require.ErrorAs(t, r.err, &perr)
		assert.Equal(t, "producer", perr.Value)
	})

	t.Run("panics from terminal handlers go to the runtime", func(t *testing.T) {
		var unhandled []error
		rt := testRuntime(&unhandled)

		Of(1).SubscribeRuntime(rt, Callbacks[int]{
			OnComplete: func() { panic("complete") },
		})
		Throw[int](errors.New("boom")).SubscribeRuntime(rt, Callbacks[int]{
			OnError: func(error) { panic("error") },
		})

		require.Len(t, unhandled, 2)

		var perr *PanicError
		require.ErrorAs(t, unhandled[0], &perr)
		assert.Equal(t, "complete", perr.Value)
		require.ErrorAs(t, unhandled[1], &perr)
		assert.Equal(t, "error", perr.Value)
	})

	t.Run("an existing subscriber is used as is", func(t *testing.T) {
		src, m := newManual[int]()
		sub := NewSubscriber[int](nil)

		assert.Same(t, sub.Subscription, src.Subscribe(sub))
		assert.Same(t, sub, m.sub)
	})

	t.Run("lifting a forwarding operator is transparent", func(t *testing.T) {
		identity := func(source *Observable[int]) *Observable[int] {
			return Lift(source, func(dest *Subscriber[int], source *Observable[int]) Teardown {
				source.Subscribe(NewChainedSubscriber(dest))
				return nil
			})
		}

		direct, piped := &recorder[int]{}, &recorder[int]{}
		Of(1, 2, 3).Subscribe(direct)
		Of(1, 2, 3).Pipe(identity, identity).Subscribe(piped)

		assert.Equal(t, direct, piped)
	})

	t.Run("unsubscribing downstream reaches the producer", func(t *testing.T) {
		src, m := newManual[int]()
		r := &recorder[int]{}

		sub := Pipe2(src, Map(func(v int) int { return v * 2 }), Filter(func(v int) bool { return v > 2 })).Subscribe(r)
		m.next(1, 2, 3)
		require.NoError(t, sub.Unsubscribe())
		m.next(4)

		assert.Equal(t, []int{4, 6}, r.values)
		assert.Equal(t, 1, m.torndown)
		assert.False(t, m.sub.Active())
	})

	t.Run("a terminal event tears the whole chain down", func(t *testing.T) {
		src, m := newManual[int]()
		r := &recorder[string]{}

		Pipe2(src, Map(strconv.Itoa), Map(func(s string) string { return "#" + s })).Subscribe(r)
		m.next(1)
		m.complete()

		assert.Equal(t, []string{"#1"}, r.values)
		assert.True(t, r.completed)
		assert.Equal(t, 1, m.torndown)
	})

	t.Run("errors pass through operators", func(t *testing.T) {
		boom := errors.New("boom")
		r := &recorder[int]{}

		Throw[int](boom).Pipe(Filter(func(int) bool { return true })).Subscribe(r)

		assert.Same(t, boom, r.err)
	})
}

func TestOperators(t *testing.T) {
	t.Run("take completes and unsubscribes upstream", func(t *testing.T) {
		src, m := newManual[int]()
		r := &recorder[int]{}

		src.Pipe(Take[int](2)).Subscribe(r)
		m.next(1, 2, 3)

		assert.Equal(t, []int{1, 2}, r.values)
		assert.True(t, r.completed)
		assert.Equal(t, 1, m.torndown)
	})

	t.Run("take zero completes without subscribing", func(t *testing.T) {
		src, m := newManual[int]()
		r := &recorder[int]{}

		src.Pipe(Take[int](0)).Subscribe(r)

		assert.True(t, r.completed)
		assert.Zero(t, m.subscribed)
	})

	t.Run("single emits the only value", func(t *testing.T) {
		r := &recorder[string]{}
		Of("only").Pipe(Single[string]()).Subscribe(r)

		assert.Equal(t, []string{"only"}, r.values)
		assert.True(t, r.completed)
	})

	t.Run("single errors on empty", func(t *testing.T) {
		r := &recorder[int]{}
		Empty[int]().Pipe(Single[int]()).Subscribe(r)

		assert.ErrorIs(t, r.err, ErrEmpty)
	})

	t.Run("single errors on the second value", func(t *testing.T) {
		src, m := newManual[int]()
		r := &recorder[int]{}

		src.Pipe(Single[int]()).Subscribe(r)
		m.next(1, 2)

		var serr *SequenceError
		require.ErrorAs(t, r.err, &serr)
		assert.Empty(t, r.values)
		assert.Equal(t, 1, m.torndown)
	})

	t.Run("interval with take on virtual time", func(t *testing.T) {
		vs := NewVirtualScheduler()
		log := []string{}

		Interval(10*time.Millisecond, vs).Pipe(Take[int](3)).SubscribeFunc(
			func(v int) { log = append(log, strconv.Itoa(v)+"@"+vs.Frame().String()) },
			nil,
			func() { log = append(log, "done") },
		)

		require.NoError(t, vs.Flush())
		assert.Equal(t, []string{"0@10ms", "1@20ms", "2@30ms", "done"}, log)
		assert.Zero(t, vs.Pending())
	})

	t.Run("timer emits once after the delay", func(t *testing.T) {
		vs := NewVirtualScheduler()
		r := &recorder[int]{}

		Timer(50*time.Millisecond, vs).Subscribe(r)
		require.NoError(t, vs.AdvanceBy(49*time.Millisecond))
		assert.Empty(t, r.values)

		require.NoError(t, vs.AdvanceBy(time.Millisecond))
		assert.Equal(t, []int{0}, r.values)
		assert.True(t, r.completed)
	})

	t.Run("unsubscribing a timer cancels its action", func(t *testing.T) {
		vs := NewVirtualScheduler()
		r := &recorder[int]{}

		sub := Timer(50*time.Millisecond, vs).Subscribe(r)
		require.NoError(t, sub.Unsubscribe())

		assert.Zero(t, vs.Pending())
		require.NoError(t, vs.Flush())
		assert.Zero(t, r.events)
	})

	t.Run("observe on re-emits from the scheduler", func(t *testing.T) {
		vs := NewVirtualScheduler()
		r := &recorder[int]{}

		Of(1, 2).Pipe(ObserveOn[int](vs, 5*time.Millisecond)).Subscribe(r)
		assert.Zero(t, r.events)
		assert.Equal(t, 3, vs.Pending())

		require.NoError(t, vs.Flush())
		assert.Equal(t, []int{1, 2}, r.values)
		assert.True(t, r.completed)
		assert.Equal(t, 5*time.Millisecond, vs.Frame())
	})

	t.Run("queue scheduler delivers synchronously", func(t *testing.T) {
		r := &recorder[int]{}

		Of(1, 2, 3).Pipe(ObserveOn[int](QueueScheduler(), 0)).Subscribe(r)

		assert.Equal(t, []int{1, 2, 3}, r.values)
		assert.True(t, r.completed)
	})
}
