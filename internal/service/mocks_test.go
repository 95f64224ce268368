package service

import (
	"context"
	"sync"
	"time"

	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/internal/store"
)

// recordingNotifier captures every notification sent
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	Message    string
	Recipients []string
	Kind       domain.NotificationKind
}

func (n *recordingNotifier) Send(ctx context.Context, message string, recipientIDs []string, kind domain.NotificationKind) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Message: message, Recipients: recipientIDs, Kind: kind})
	return nil
}

func (n *recordingNotifier) byKind(kind domain.NotificationKind) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// recordingPublisher captures lifecycle events
type recordingPublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	Type    domain.LifecycleEventType
	EventID string
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType domain.LifecycleEventType, campusEventID string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{Type: eventType, EventID: campusEventID})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) countType(t domain.LifecycleEventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.published {
		if e.Type == t {
			n++
		}
	}
	return n
}

// recordingSaver captures snapshot writes
type recordingSaver struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (s *recordingSaver) SaveEvent(ctx context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, event.ID)
	return nil
}

func (s *recordingSaver) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *recordingSaver) SaveVenue(ctx context.Context, venue *domain.Venue) error {
	return nil
}

// seedEvent puts a published event with the given capacity into the store
func seedEvent(events *store.EventStore, id string, capacity int) *domain.Event {
	now := time.Now()
	e := &domain.Event{
		ID:           id,
		Title:        "Intro to Distributed Systems",
		Type:         domain.EventTypeWorkshop,
		Status:       domain.EventStatusPublished,
		StartTime:    now.Add(48 * time.Hour),
		EndTime:      now.Add(50 * time.Hour),
		OrganizerID:  "org-1",
		MaxCapacity:  capacity,
		CreatedAt:    now,
		LastModified: now,
	}
	events.Put(e)
	return e
}

// seedVenue puts an active venue into the store
func seedVenue(venues *store.VenueStore, id string, capacity, setupMin, cleanupMin int) *domain.Venue {
	v := &domain.Venue{
		ID:                 id,
		Name:               "Hall " + id,
		Capacity:           capacity,
		SetupTimeMinutes:   setupMin,
		CleanupTimeMinutes: cleanupMin,
		Active:             true,
		CreatedAt:          time.Now(),
	}
	venues.Put(v)
	return v
}

// register admits or waitlists one attendee directly through the store,
// mirroring the admission critical section
func register(events *store.EventStore, eventID, regID, attendeeID string) {
	now := time.Now()
	_ = events.Mutate(eventID, func(e *domain.Event) error {
		reg := domain.NewRegistration(regID, attendeeID, eventID, now)
		if !e.IsFull() {
			_ = reg.Confirm()
			e.Confirmed = append(e.Confirmed, reg)
		} else {
			enqueueWaitlist(e, reg)
		}
		return nil
	})
}
