package internal

import (
	"slices"
	"sync"
	"weak"

	"go.uber.org/multierr"
)

type Subscription struct {
	mu sync.Mutex

	// monotonic, once closed a subscription never runs its teardown again
	closed bool

	// called after every child has been unsubscribed
	teardown func() error

	// owned, unsubscribed in registration order
	children []*Subscription

	// non-owning links, only used to detach from a parent on unsubscribe
	parents []weak.Pointer[Subscription]
}

var closedSubscription = &Subscription{closed: true}

// ClosedSubscription returns the shared, already closed subscription.
func ClosedSubscription() *Subscription {
	return closedSubscription
}

func NewSubscription(teardown func() error) *Subscription {
	return &Subscription{teardown: teardown}
}

func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Add makes child owned by s. When s is already closed the child is
// unsubscribed right away.
func (s *Subscription) Add(child *Subscription) *Subscription {
	if child == nil || child == s {
		return child
	}

	if s.Closed() {
		s.execute(child)
		return child
	}

	if !child.attach(s) {
		return child
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		child.detach(s)
		s.execute(child)
		return child
	}
	s.children = append(s.children, child)
	s.mu.Unlock()

	return child
}

// AddFunc wraps fn in a child subscription and adds it. The child is returned
// so it can be removed later.
func (s *Subscription) AddFunc(fn func() error) *Subscription {
	if fn == nil {
		return closedSubscription
	}

	return s.Add(NewSubscription(fn))
}

func (s *Subscription) Remove(child *Subscription) {
	if child == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	i := slices.Index(s.children, child)
	if i >= 0 {
		s.children = slices.Delete(s.children, i, i+1)
	}
	s.mu.Unlock()

	if i >= 0 {
		child.detach(s)
	}
}

// Unsubscribe closes s, detaches it from its parents, then unsubscribes its
// children before running its own teardown. Every failure is collected into a
// single *UnsubscriptionError.
func (s *Subscription) Unsubscribe() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	parents := s.parents
	children := s.children
	teardown := s.teardown
	s.parents = nil
	s.children = nil
	s.teardown = nil
	s.mu.Unlock()

	for _, p := range parents {
		if parent := p.Value(); parent != nil {
			parent.Remove(s)
		}
	}

	var errs error
	for _, child := range children {
		errs = multierr.Append(errs, flatten(call(child.Unsubscribe)))
	}

	if teardown != nil {
		errs = multierr.Append(errs, flatten(call(teardown)))
	}

	if errs != nil {
		return &UnsubscriptionError{Errors: multierr.Errors(errs)}
	}

	return nil
}

// call runs fn, a panic becomes a *PanicError so the cascade carries on.
func call(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = NewPanicError(v)
		}
	}()

	return fn()
}

// execute runs the teardown of a child handed to an already closed parent,
// there is no caller to return its error to.
func (s *Subscription) execute(child *Subscription) {
	if err := child.Unsubscribe(); err != nil {
		GetRuntime().ReportUnhandled(err)
	}
}

func (s *Subscription) attach(parent *Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	for _, p := range s.parents {
		if p.Value() == parent {
			return false
		}
	}

	s.parents = append(s.parents, weak.Make(parent))
	return true
}

func (s *Subscription) detach(parent *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.parents = slices.DeleteFunc(s.parents, func(p weak.Pointer[Subscription]) bool {
		return p.Value() == parent
	})
}
