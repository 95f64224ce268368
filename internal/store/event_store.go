package store

import (
	"sync"

	"github.com/seulch/campushub/internal/domain"
)

// EventStore is the single authoritative in-memory index of events. All
// mutations run through Mutate so that capacity-check-then-admit and
// waitlist dequeue-and-renumber are single critical sections. Reads hand
// out deep copies; callers never see live aggregate pointers.
type EventStore struct {
	mu     sync.RWMutex
	events map[string]*domain.Event
}

// NewEventStore creates an empty event store
func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[string]*domain.Event),
	}
}

// Put inserts or replaces an event. Used at creation and when reloading
// persisted aggregates at startup.
func (s *EventStore) Put(event *domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
}

// Get returns a deep copy of the event
func (s *EventStore) Get(id string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return e.Clone(), nil
}

// Mutate runs fn on the live aggregate under the write lock. fn must not
// block on external collaborators; notification lists are computed inside
// and delivered after Mutate returns.
func (s *EventStore) Mutate(id string, fn func(*domain.Event) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	return fn(e)
}

// List returns deep copies of all events in unspecified order
func (s *EventStore) List() []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Clone())
	}
	return out
}

// Delete removes an event and its owned registrations with it
func (s *EventStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return false
	}
	delete(s.events, id)
	return true
}

// Len returns the number of events
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
