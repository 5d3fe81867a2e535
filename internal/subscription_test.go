package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription(t *testing.T) {
	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		calls := 0
		s := NewSubscription(func() error {
			calls++
			return nil
		})

		for range 3 {
			require.NoError(t, s.Unsubscribe())
		}

		assert.Equal(t, 1, calls)
		assert.True(t, s.Closed())
	})

	t.Run("children are released before the parent teardown", func(t *testing.T) {
		log := []string{}

		parent := NewSubscription(func() error {
			log = append(log, "parent")
			return nil
		})
		parent.AddFunc(func() error {
			log = append(log, "first")
			return nil
		})
		child := NewSubscription(func() error {
			log = append(log, "second")
			return nil
		})
		child.AddFunc(func() error {
			log = append(log, "grandchild")
			return nil
		})
		parent.Add(child)

		require.NoError(t, parent.Unsubscribe())

		assert.Equal(t, []string{"first", "grandchild", "second", "parent"}, log)
	})

	t.Run("cascade continues past failing children", func(t *testing.T) {
		e1 := errors.New("e1")
		e2 := errors.New("e2")
		ran := []string{}

		parent := NewSubscription(nil)
		parent.AddFunc(func() error { ran = append(ran, "a"); return e1 })
		parent.AddFunc(func() error { ran = append(ran, "b"); return nil })
		parent.AddFunc(func() error { ran = append(ran, "c"); return e2 })

		err := parent.Unsubscribe()

		var ue *UnsubscriptionError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, []error{e1, e2}, ue.Errors)
		assert.Equal(t, []string{"a", "b", "c"}, ran)
		assert.ErrorIs(t, err, e2)
	})

	t.Run("own teardown error comes last", func(t *testing.T) {
		own := errors.New("own")
		child := errors.New("child")

		parent := NewSubscription(func() error { return own })
		parent.AddFunc(func() error { return child })

		var ue *UnsubscriptionError
		require.ErrorAs(t, parent.Unsubscribe(), &ue)
		assert.Equal(t, []error{child, own}, ue.Errors)
	})

	t.Run("nested aggregates are flattened", func(t *testing.T) {
		e1 := errors.New("e1")
		e2 := errors.New("e2")
		e3 := errors.New("e3")

		inner := NewSubscription(func() error { return e2 })
		inner.AddFunc(func() error { return e1 })

		parent := NewSubscription(nil)
		parent.Add(inner)
		parent.AddFunc(func() error { return e3 })

		var ue *UnsubscriptionError
		require.ErrorAs(t, parent.Unsubscribe(), &ue)
		assert.Equal(t, []error{e1, e2, e3}, ue.Errors)
		for _, err := range ue.Errors {
			assert.NotErrorAs(t, err, new(*UnsubscriptionError))
		}
	})

	t.Run("adding to a closed subscription runs teardown immediately", func(t *testing.T) {
		s := NewSubscription(nil)
		require.NoError(t, s.Unsubscribe())

		ran := false
		child := s.AddFunc(func() error {
			ran = true
			return nil
		})

		assert.True(t, ran)
		assert.True(t, child.Closed())
	})

	t.Run("self reference is ignored", func(t *testing.T) {
		calls := 0
		s := NewSubscription(func() error {
			calls++
			return nil
		})

		assert.Same(t, s, s.Add(s))
		require.NoError(t, s.Unsubscribe())
		assert.Equal(t, 1, calls)
	})

	t.Run("removed children are not unsubscribed", func(t *testing.T) {
		parent := NewSubscription(nil)

		ran := false
		child := parent.AddFunc(func() error {
			ran = true
			return nil
		})
		parent.Remove(child)
		parent.Remove(NewSubscription(nil))

		require.NoError(t, parent.Unsubscribe())
		assert.False(t, ran)
		assert.False(t, child.Closed())
	})

	t.Run("a child detaches from its parents on unsubscribe", func(t *testing.T) {
		p1 := NewSubscription(nil)
		p2 := NewSubscription(nil)

		calls := 0
		child := NewSubscription(func() error {
			calls++
			return nil
		})
		p1.Add(child)
		p2.Add(child)

		require.NoError(t, child.Unsubscribe())
		assert.Empty(t, p1.children)
		assert.Empty(t, p2.children)

		require.NoError(t, p1.Unsubscribe())
		require.NoError(t, p2.Unsubscribe())
		assert.Equal(t, 1, calls)
	})

	t.Run("adding the same child twice keeps one link", func(t *testing.T) {
		parent := NewSubscription(nil)
		child := NewSubscription(nil)

		parent.Add(child)
		parent.Add(child)

		assert.Len(t, parent.children, 1)
	})

	t.Run("teardown may unsubscribe other nodes", func(t *testing.T) {
		log := []string{}

		other := NewSubscription(func() error {
			log = append(log, "other")
			return nil
		})

		var s *Subscription
		s = NewSubscription(func() error {
			log = append(log, "self")
			require.NoError(t, other.Unsubscribe())
			return s.Unsubscribe()
		})
		other.Add(s)

		require.NoError(t, s.Unsubscribe())
		require.NoError(t, other.Unsubscribe())

		assert.Equal(t, []string{"self", "other"}, log)
	})

	t.Run("a panicking teardown does not stop the cascade", func(t *testing.T) {
		ran := []string{}

		parent := NewSubscription(func() error {
			ran = append(ran, "parent")
			return nil
		})
		parent.AddFunc(func() error { panic("teardown") })
		sibling := parent.AddFunc(func() error {
			ran = append(ran, "sibling")
			return nil
		})

		err := parent.Unsubscribe()

		var perr *PanicError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "teardown", perr.Value)
		assert.True(t, sibling.Closed())
		assert.Equal(t, []string{"sibling", "parent"}, ran)
	})

	t.Run("a panicking own teardown is collected last", func(t *testing.T) {
		child := errors.New("child")

		parent := NewSubscription(func() error { panic("own") })
		parent.AddFunc(func() error { return child })

		var ue *UnsubscriptionError
		require.ErrorAs(t, parent.Unsubscribe(), &ue)
		require.Len(t, ue.Errors, 2)
		assert.Same(t, child, ue.Errors[0])

		var perr *PanicError
		require.ErrorAs(t, ue.Errors[1], &perr)
		assert.Equal(t, "own", perr.Value)
	})
}
