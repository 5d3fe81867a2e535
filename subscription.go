package rxjs

import (
	"context"

	"github.com/benlesh/rxjs/internal"
)

// Subscription is a cancellable resource owning child subscriptions.
// Unsubscribing it releases its children first, then its own teardown.
type Subscription = internal.Subscription

// Teardown releases whatever a producer acquired.
type Teardown func() error

// NewSubscription creates an open subscription running teardown on unsubscribe.
func NewSubscription(teardown Teardown) *Subscription {
	if teardown == nil {
		return internal.NewSubscription(nil)
	}
	return internal.NewSubscription(teardown)
}

// SubscriptionFromContext returns a subscription that is unsubscribed as soon
// as ctx is done. Unsubscribing it early releases the context watch.
func SubscriptionFromContext(ctx context.Context) *Subscription {
	s := internal.NewSubscription(nil)

	stop := context.AfterFunc(ctx, func() {
		if err := s.Unsubscribe(); err != nil {
			internal.GetRuntime().ReportUnhandled(err)
		}
	})
	s.AddFunc(func() error {
		stop()
		return nil
	})

	return s
}
