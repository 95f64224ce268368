package service

import (
	"context"
	"testing"
	"time"

	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/internal/store"
)

func newVenueFixture() (*store.EventStore, *store.VenueStore, VenueBookingService) {
	events := store.NewEventStore()
	venues := store.NewVenueStore()
	svc := NewVenueBookingService(events, venues, &recordingSaver{}, &recordingSaver{})
	return events, venues, svc
}

func TestVenueBooking_BookAndClampCapacity(t *testing.T) {
	events, venues, svc := newVenueFixture()
	e := seedEvent(events, "e1", 0) // capacity unset
	seedVenue(venues, "v1", 80, 15, 15)

	booking, err := svc.BookVenueForEvent(context.Background(), "e1", "v1")
	if err != nil {
		t.Fatalf("BookVenueForEvent: %v", err)
	}
	if booking.VenueID != "v1" || booking.EventID != "e1" {
		t.Errorf("booking = %+v", booking)
	}
	if !booking.BookingStart.Equal(e.StartTime.Add(-15 * time.Minute)) {
		t.Errorf("BookingStart = %v", booking.BookingStart)
	}

	got, _ := events.Get("e1")
	if got.VenueID != "v1" {
		t.Errorf("event venue = %q", got.VenueID)
	}
	if got.MaxCapacity != 80 {
		t.Errorf("unset capacity should default to the venue's, got %d", got.MaxCapacity)
	}
}

func TestVenueBooking_CapacityExceedsVenue(t *testing.T) {
	events, venues, svc := newVenueFixture()
	seedEvent(events, "e1", 200)
	seedVenue(venues, "v1", 80, 0, 0)

	if _, err := svc.BookVenueForEvent(context.Background(), "e1", "v1"); err != domain.ErrCapacityExceeded {
		t.Errorf("got %v, want ErrCapacityExceeded", err)
	}
	got, _ := events.Get("e1")
	if got.VenueID != "" {
		t.Error("failed booking must not attach a venue")
	}
}

func TestVenueBooking_OverlapRejected(t *testing.T) {
	events, venues, svc := newVenueFixture()
	e1 := seedEvent(events, "e1", 10)
	seedVenue(venues, "v1", 100, 15, 15)

	if _, err := svc.BookVenueForEvent(context.Background(), "e1", "v1"); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// Same window for a second event
	e2 := seedEvent(events, "e2", 10)
	e2.StartTime = e1.StartTime
	e2.EndTime = e1.EndTime
	events.Put(e2)

	if _, err := svc.BookVenueForEvent(context.Background(), "e2", "v1"); err != domain.ErrVenueUnavailable {
		t.Errorf("got %v, want ErrVenueUnavailable", err)
	}
}

func TestVenueBooking_InactiveVenue(t *testing.T) {
	events, venues, svc := newVenueFixture()
	seedEvent(events, "e1", 10)
	v := seedVenue(venues, "v1", 100, 0, 0)
	v.Active = false
	venues.Put(v)

	if _, err := svc.BookVenueForEvent(context.Background(), "e1", "v1"); err != domain.ErrVenueInactive {
		t.Errorf("got %v, want ErrVenueInactive", err)
	}
}

func TestVenueBooking_CancelRelease(t *testing.T) {
	events, venues, svc := newVenueFixture()
	seedEvent(events, "e1", 10)
	seedVenue(venues, "v1", 100, 0, 0)

	if _, err := svc.BookVenueForEvent(context.Background(), "e1", "v1"); err != nil {
		t.Fatalf("book: %v", err)
	}

	released, err := svc.CancelVenueBooking(context.Background(), "e1")
	if err != nil {
		t.Fatalf("CancelVenueBooking: %v", err)
	}
	if !released {
		t.Error("expected a released booking")
	}

	got, _ := events.Get("e1")
	if got.VenueID != "" {
		t.Error("event should no longer hold a venue")
	}
	v, _ := venues.Get("v1")
	if len(v.Bookings) != 0 {
		t.Errorf("venue still holds %d bookings", len(v.Bookings))
	}

	// Releasing again is a no-op
	released, err = svc.CancelVenueBooking(context.Background(), "e1")
	if err != nil || released {
		t.Errorf("second release = (%v, %v)", released, err)
	}
}

func TestVenueBooking_ChangeVenue(t *testing.T) {
	events, venues, svc := newVenueFixture()
	seedEvent(events, "e1", 50)
	seedVenue(venues, "v1", 100, 0, 0)
	seedVenue(venues, "v2", 120, 0, 0)

	if _, err := svc.BookVenueForEvent(context.Background(), "e1", "v1"); err != nil {
		t.Fatalf("book: %v", err)
	}

	booking, err := svc.ChangeEventVenue(context.Background(), "e1", "v2")
	if err != nil {
		t.Fatalf("ChangeEventVenue: %v", err)
	}
	if booking.VenueID != "v2" {
		t.Errorf("booking venue = %s", booking.VenueID)
	}

	got, _ := events.Get("e1")
	if got.VenueID != "v2" {
		t.Errorf("event venue = %s", got.VenueID)
	}
	v1, _ := venues.Get("v1")
	if len(v1.Bookings) != 0 {
		t.Error("old venue should be free")
	}
	v2, _ := venues.Get("v2")
	if v2.BookingFor("e1") == nil {
		t.Error("new venue should hold the booking")
	}
}

func TestVenueBooking_ChangeVenueRollback(t *testing.T) {
	events, venues, svc := newVenueFixture()
	seedEvent(events, "e1", 50)
	seedVenue(venues, "v1", 100, 0, 0)
	seedVenue(venues, "v2", 20, 0, 0) // too small for 50

	if _, err := svc.BookVenueForEvent(context.Background(), "e1", "v1"); err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := svc.ChangeEventVenue(context.Background(), "e1", "v2"); err != domain.ErrCapacityExceeded {
		t.Fatalf("got %v, want ErrCapacityExceeded", err)
	}

	// Original booking must remain intact
	got, _ := events.Get("e1")
	if got.VenueID != "v1" {
		t.Errorf("event venue = %s, want v1", got.VenueID)
	}
	v1, _ := venues.Get("v1")
	if v1.BookingFor("e1") == nil {
		t.Error("original booking must survive a failed change")
	}
}

func TestVenueBooking_ChangeVenueRollbackOnOverlap(t *testing.T) {
	events, venues, svc := newVenueFixture()
	e1 := seedEvent(events, "e1", 10)
	seedVenue(venues, "v1", 100, 0, 0)
	seedVenue(venues, "v2", 100, 0, 0)

	if _, err := svc.BookVenueForEvent(context.Background(), "e1", "v1"); err != nil {
		t.Fatalf("book e1: %v", err)
	}

	// Occupy v2 at the same time with another event
	e2 := seedEvent(events, "e2", 10)
	e2.StartTime = e1.StartTime
	e2.EndTime = e1.EndTime
	events.Put(e2)
	if _, err := svc.BookVenueForEvent(context.Background(), "e2", "v2"); err != nil {
		t.Fatalf("book e2: %v", err)
	}

	if _, err := svc.ChangeEventVenue(context.Background(), "e1", "v2"); err != domain.ErrVenueUnavailable {
		t.Fatalf("got %v, want ErrVenueUnavailable", err)
	}

	v1, _ := venues.Get("v1")
	if v1.BookingFor("e1") == nil {
		t.Error("e1 should still hold its v1 booking")
	}
	got, _ := events.Get("e1")
	if got.VenueID != "v1" {
		t.Errorf("event venue = %s, want v1", got.VenueID)
	}
}

func TestVenueBooking_FindAvailableVenues(t *testing.T) {
	events, venues, svc := newVenueFixture()
	e := seedEvent(events, "e1", 10)
	seedVenue(venues, "v1", 100, 0, 0)
	seedVenue(venues, "v2", 30, 0, 0)
	inactive := seedVenue(venues, "v3", 200, 0, 0)
	inactive.Active = false
	venues.Put(inactive)

	if _, err := svc.BookVenueForEvent(context.Background(), "e1", "v1"); err != nil {
		t.Fatalf("book: %v", err)
	}

	// v1 is occupied, v3 inactive, v2 below min capacity 50
	out, err := svc.FindAvailableVenues(context.Background(), e.StartTime, e.EndTime, 50)
	if err != nil {
		t.Fatalf("FindAvailableVenues: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("available = %d, want 0", len(out))
	}

	out, err = svc.FindAvailableVenues(context.Background(), e.StartTime, e.EndTime, 0)
	if err != nil {
		t.Fatalf("FindAvailableVenues: %v", err)
	}
	if len(out) != 1 || out[0].ID != "v2" {
		t.Errorf("available = %+v, want just v2", out)
	}
}

func TestVenueBooking_VenueConflictsReport(t *testing.T) {
	events, venues, svc := newVenueFixture()
	e := seedEvent(events, "e1", 10)
	seedVenue(venues, "v1", 100, 15, 15)

	if _, err := svc.BookVenueForEvent(context.Background(), "e1", "v1"); err != nil {
		t.Fatalf("book: %v", err)
	}

	resp := svc.VenueConflicts(context.Background(), "v1", e.StartTime, e.EndTime)
	if len(resp.Conflicts) != 1 {
		t.Fatalf("conflicts = %+v", resp.Conflicts)
	}

	resp = svc.VenueConflicts(context.Background(), "missing", e.StartTime, e.EndTime)
	if len(resp.Conflicts) != 1 || resp.Conflicts[0] != "venue not found" {
		t.Errorf("conflicts = %+v", resp.Conflicts)
	}

	free := svc.VenueConflicts(context.Background(), "v1", e.EndTime.Add(time.Hour), e.EndTime.Add(2*time.Hour))
	if len(free.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %+v", free.Conflicts)
	}
}
