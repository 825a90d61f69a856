package store

import (
	"context"
	"sync"
)

// Subscription receives change notifications from a Store. Notifications
// coalesce: several mutations between two reads are reported as one merged
// Change, and a slow reader never blocks a writer.
type Subscription struct {
	store   *Store
	mu      sync.Mutex
	pending Change
	ready   chan struct{}
}

// Subscribe registers a new change subscription
func (s *Store) Subscribe() *Subscription {
	sub := &Subscription{
		store: s,
		ready: make(chan struct{}, 1),
	}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub
}

func (s *Store) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

func (sub *Subscription) signal(change Change) {
	sub.mu.Lock()
	sub.pending |= change
	sub.mu.Unlock()
	select {
	case sub.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled whenever new changes are pending
func (sub *Subscription) Ready() <-chan struct{} {
	return sub.ready
}

// Take returns and clears the pending changes
func (sub *Subscription) Take() Change {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	c := sub.pending
	sub.pending = 0
	return c
}

// Next blocks until changes are pending or ctx is done
func (sub *Subscription) Next(ctx context.Context) (Change, error) {
	for {
		if c := sub.Take(); c != 0 {
			return c, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-sub.ready:
		}
	}
}

// Close detaches the subscription from its store
func (sub *Subscription) Close() {
	sub.store.unsubscribe(sub)
}
