package store

import (
	"sync"

	"github.com/seulch/campushub/internal/domain"
)

// VenueStore is the authoritative in-memory venue catalog. The store-wide
// lock makes book/release/change operations atomic, including the
// two-venue swap a venue change performs.
type VenueStore struct {
	mu     sync.RWMutex
	venues map[string]*domain.Venue
	order  []string
}

// NewVenueStore creates an empty venue store
func NewVenueStore() *VenueStore {
	return &VenueStore{
		venues: make(map[string]*domain.Venue),
	}
}

// Put inserts or replaces a venue, keeping catalog insertion order for
// availability scans
func (s *VenueStore) Put(venue *domain.Venue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.venues[venue.ID]; !ok {
		s.order = append(s.order, venue.ID)
	}
	s.venues[venue.ID] = venue
}

// Get returns a deep copy of the venue
func (s *VenueStore) Get(id string) (*domain.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.venues[id]
	if !ok {
		return nil, domain.ErrVenueNotFound
	}
	return v.Clone(), nil
}

// Mutate runs fn on the live venue under the write lock
func (s *VenueStore) Mutate(id string, fn func(*domain.Venue) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return domain.ErrVenueNotFound
	}
	return fn(v)
}

// MutateTwo runs fn on two live venues under one critical section so a
// failed rebooking can restore the released booking atomically. The two
// IDs may name the same venue.
func (s *VenueStore) MutateTwo(oldID, newID string, fn func(oldVenue, newVenue *domain.Venue) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	oldVenue, ok := s.venues[oldID]
	if !ok {
		return domain.ErrVenueNotFound
	}
	newVenue, ok := s.venues[newID]
	if !ok {
		return domain.ErrVenueNotFound
	}
	return fn(oldVenue, newVenue)
}

// List returns deep copies of all venues in catalog order
func (s *VenueStore) List() []*domain.Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Venue, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.venues[id].Clone())
	}
	return out
}

// Len returns the number of venues
func (s *VenueStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.venues)
}
