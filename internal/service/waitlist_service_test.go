package service

import (
	"context"
	"testing"
	"time"

	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/internal/store"
)

func newWaitlistFixture() (*store.EventStore, *recordingNotifier, *recordingPublisher, WaitlistService) {
	events := store.NewEventStore()
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	svc := NewWaitlistService(events, notifier, publisher, &recordingSaver{})
	return events, notifier, publisher, svc
}

func TestWaitlist_FIFOPositions(t *testing.T) {
	events, _, _, _ := newWaitlistFixture()
	seedEvent(events, "e1", 2)

	register(events, "e1", "r1", "alice")
	register(events, "e1", "r2", "bob")
	register(events, "e1", "r3", "carol")
	register(events, "e1", "r4", "dave")
	register(events, "e1", "r5", "erin")

	e, _ := events.Get("e1")
	if got := e.ConfirmedCount(); got != 2 {
		t.Fatalf("confirmed = %d, want 2", got)
	}
	if got := len(e.Waitlist); got != 3 {
		t.Fatalf("waitlist = %d, want 3", got)
	}
	for i, r := range e.Waitlist {
		if r.WaitlistPosition != i+1 {
			t.Errorf("waitlist[%d].position = %d, want %d", i, r.WaitlistPosition, i+1)
		}
	}
	if e.Waitlist[0].AttendeeID != "carol" || e.Waitlist[2].AttendeeID != "erin" {
		t.Error("waitlist order is not FIFO")
	}
	if e.TotalWaitlisted != 3 {
		t.Errorf("TotalWaitlisted = %d, want 3", e.TotalWaitlisted)
	}
}

func TestWaitlist_CancellationPromotesHead(t *testing.T) {
	events, notifier, publisher, svc := newWaitlistFixture()
	seedEvent(events, "e1", 1)

	register(events, "e1", "r1", "alice")
	register(events, "e1", "r2", "bob")
	register(events, "e1", "r3", "carol")

	result, err := svc.HandleRegistrationCancellation(context.Background(), "e1", "r1", "conflict")
	if err != nil {
		t.Fatalf("HandleRegistrationCancellation: %v", err)
	}
	if result.Cancelled.Status != string(domain.RegistrationStatusCancelled) {
		t.Errorf("cancelled status = %s", result.Cancelled.Status)
	}
	if result.PromotedCount != 1 || len(result.Promoted) != 1 {
		t.Fatalf("promoted count = %d (len %d), want 1", result.PromotedCount, len(result.Promoted))
	}
	if result.Promoted[0].ID != "r2" || result.Promoted[0].AttendeeID != "bob" {
		t.Errorf("promoted = %s/%s, want r2/bob", result.Promoted[0].ID, result.Promoted[0].AttendeeID)
	}
	if result.Promoted[0].Status != string(domain.RegistrationStatusConfirmed) {
		t.Errorf("promoted status = %s", result.Promoted[0].Status)
	}

	e, _ := events.Get("e1")
	if e.ConfirmedCount() != 1 {
		t.Fatalf("confirmed = %d, want 1", e.ConfirmedCount())
	}
	if e.Confirmed[0].AttendeeID != "bob" {
		t.Errorf("promoted attendee = %s, want bob", e.Confirmed[0].AttendeeID)
	}
	if len(e.Waitlist) != 1 || e.Waitlist[0].AttendeeID != "carol" || e.Waitlist[0].WaitlistPosition != 1 {
		t.Error("carol should hold position 1 after promotion")
	}

	promos := notifier.byKind(domain.NotificationPromoted)
	if len(promos) != 1 || promos[0].Recipients[0] != "bob" {
		t.Errorf("promotion notification = %+v", promos)
	}
	if publisher.countType(domain.LifecycleRegistrationPromoted) != 1 {
		t.Error("expected one promotion lifecycle event")
	}
}

func TestWaitlist_CancelWaitlistedRenumbers(t *testing.T) {
	events, _, _, svc := newWaitlistFixture()
	seedEvent(events, "e1", 1)

	register(events, "e1", "r1", "alice")
	register(events, "e1", "r2", "bob")
	register(events, "e1", "r3", "carol")
	register(events, "e1", "r4", "dave")

	// Cancel the middle waitlist entry; positions must stay dense
	if _, err := svc.HandleRegistrationCancellation(context.Background(), "e1", "r3", ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	e, _ := events.Get("e1")
	if e.ConfirmedCount() != 1 {
		t.Errorf("confirmed seat should be untouched, got %d", e.ConfirmedCount())
	}
	if len(e.Waitlist) != 2 {
		t.Fatalf("waitlist = %d, want 2", len(e.Waitlist))
	}
	if e.Waitlist[0].AttendeeID != "bob" || e.Waitlist[0].WaitlistPosition != 1 {
		t.Errorf("head = %s pos %d", e.Waitlist[0].AttendeeID, e.Waitlist[0].WaitlistPosition)
	}
	if e.Waitlist[1].AttendeeID != "dave" || e.Waitlist[1].WaitlistPosition != 2 {
		t.Errorf("tail = %s pos %d", e.Waitlist[1].AttendeeID, e.Waitlist[1].WaitlistPosition)
	}
	if e.WaitlistCancelled != 1 {
		t.Errorf("WaitlistCancelled = %d, want 1", e.WaitlistCancelled)
	}
}

func TestWaitlist_DoubleCancellationFails(t *testing.T) {
	events, _, _, svc := newWaitlistFixture()
	seedEvent(events, "e1", 1)
	register(events, "e1", "r1", "alice")

	if _, err := svc.HandleRegistrationCancellation(context.Background(), "e1", "r1", ""); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := svc.HandleRegistrationCancellation(context.Background(), "e1", "r1", ""); err != domain.ErrRegistrationCancelled {
		t.Errorf("second cancel: got %v, want ErrRegistrationCancelled", err)
	}
}

func TestWaitlist_CapacityIncreasePromotesInOrder(t *testing.T) {
	events, notifier, _, svc := newWaitlistFixture()
	seedEvent(events, "e1", 1)

	register(events, "e1", "r1", "alice")
	register(events, "e1", "r2", "bob")
	register(events, "e1", "r3", "carol")
	register(events, "e1", "r4", "dave")

	// Capacity +2 with three waitlisted promotes exactly two
	promoted, err := svc.HandleCapacityIncrease(context.Background(), "e1", 3)
	if err != nil {
		t.Fatalf("HandleCapacityIncrease: %v", err)
	}
	if len(promoted) != 2 {
		t.Fatalf("promoted = %d, want 2", len(promoted))
	}
	if promoted[0].AttendeeID != "bob" || promoted[1].AttendeeID != "carol" {
		t.Errorf("promotion order: %s, %s", promoted[0].AttendeeID, promoted[1].AttendeeID)
	}

	e, _ := events.Get("e1")
	if e.ConfirmedCount() != 3 {
		t.Errorf("confirmed = %d, want 3", e.ConfirmedCount())
	}
	if len(e.Waitlist) != 1 || e.Waitlist[0].AttendeeID != "dave" || e.Waitlist[0].WaitlistPosition != 1 {
		t.Error("dave should remain at position 1")
	}
	if got := len(notifier.byKind(domain.NotificationPromoted)); got != 2 {
		t.Errorf("promotion notifications = %d, want 2", got)
	}
}

func TestWaitlist_CapacityBelowConfirmedRejected(t *testing.T) {
	events, _, _, svc := newWaitlistFixture()
	seedEvent(events, "e1", 3)

	register(events, "e1", "r1", "alice")
	register(events, "e1", "r2", "bob")

	if _, err := svc.HandleCapacityIncrease(context.Background(), "e1", 1); err != domain.ErrCapacityBelowUsage {
		t.Errorf("got %v, want ErrCapacityBelowUsage", err)
	}
}

func TestWaitlist_PromotionSuppressedBetweenDeadlineAndStart(t *testing.T) {
	events, notifier, _, svc := newWaitlistFixture()
	e := seedEvent(events, "e1", 1)

	// Deadline already elapsed, event not started
	deadline := e.StartTime.Add(-72 * time.Hour)
	_ = events.Mutate("e1", func(ev *domain.Event) error {
		ev.RegistrationDeadline = &deadline
		return nil
	})

	register(events, "e1", "r1", "alice")
	register(events, "e1", "r2", "bob")

	if _, err := svc.HandleRegistrationCancellation(context.Background(), "e1", "r1", ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, _ := events.Get("e1")
	if got.ConfirmedCount() != 0 {
		t.Errorf("confirmed = %d, promotion should be suppressed", got.ConfirmedCount())
	}
	if len(got.Waitlist) != 1 || got.Waitlist[0].AttendeeID != "bob" {
		t.Error("bob should stay waitlisted")
	}
	if len(notifier.byKind(domain.NotificationPromoted)) != 0 {
		t.Error("no promotion notification expected")
	}
}

func TestWaitlist_Statistics(t *testing.T) {
	events, _, _, svc := newWaitlistFixture()
	seedEvent(events, "e1", 1)

	register(events, "e1", "r1", "alice")
	register(events, "e1", "r2", "bob")
	register(events, "e1", "r3", "carol")
	if _, err := svc.HandleRegistrationCancellation(context.Background(), "e1", "r3", ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	stats, err := svc.Statistics(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.ConfirmedCount != 1 || stats.MaxCapacity != 1 {
		t.Errorf("confirmed %d/%d", stats.ConfirmedCount, stats.MaxCapacity)
	}
	if stats.ActiveCount != 1 {
		t.Errorf("active = %d, want 1", stats.ActiveCount)
	}
	if stats.TotalWaitlisted != 2 {
		t.Errorf("total = %d, want 2", stats.TotalWaitlisted)
	}
	if stats.CancelledCount != 1 {
		t.Errorf("cancelled = %d, want 1", stats.CancelledCount)
	}
	if stats.NextPosition != 2 {
		t.Errorf("next position = %d, want 2", stats.NextPosition)
	}
}
