package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/internal/service"
	"github.com/seulch/campushub/internal/store"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []capturedNotification
}

type capturedNotification struct {
	Recipients []string
	Kind       domain.NotificationKind
}

func (n *captureNotifier) Send(ctx context.Context, message string, recipientIDs []string, kind domain.NotificationKind) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, capturedNotification{Recipients: recipientIDs, Kind: kind})
	return nil
}

func (n *captureNotifier) countKind(kind domain.NotificationKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.Kind == kind {
			c++
		}
	}
	return c
}

type capturePublisher struct {
	mu        sync.Mutex
	published []domain.LifecycleEventType
}

func (p *capturePublisher) Publish(ctx context.Context, eventType domain.LifecycleEventType, campusEventID string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, eventType)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) countType(t domain.LifecycleEventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := 0
	for _, e := range p.published {
		if e == t {
			c++
		}
	}
	return c
}

type workerFixture struct {
	events    *store.EventStore
	notifier  *captureNotifier
	publisher *capturePublisher
	worker    *DeadlineWorker
}

func newWorkerFixture() *workerFixture {
	events := store.NewEventStore()
	notifier := &captureNotifier{}
	publisher := &capturePublisher{}
	waitlist := service.NewWaitlistService(events, notifier, publisher, nil)
	w := NewDeadlineWorker(events, notifier, publisher, waitlist, nil, &DeadlineWorkerConfig{
		SweepInterval: time.Hour,
		WarningLead:   time.Hour,
	})
	return &workerFixture{events: events, notifier: notifier, publisher: publisher, worker: w}
}

// seedDeadlineEvent stores a published event starting in two hours with one
// confirmed and one waitlisted registration
func seedDeadlineEvent(events *store.EventStore, id string, capacity int, deadline time.Time) *domain.Event {
	now := time.Now()
	confirmed := domain.NewRegistration(id+"-r1", "alice", id, now)
	_ = confirmed.Confirm()
	waitlisted := domain.NewRegistration(id+"-r2", "bob", id, now)
	_ = waitlisted.MoveToWaitlist(1)

	e := &domain.Event{
		ID:                   id,
		Title:                "Career Fair",
		Type:                 domain.EventTypeConference,
		Status:               domain.EventStatusPublished,
		StartTime:            now.Add(2 * time.Hour),
		EndTime:              now.Add(4 * time.Hour),
		OrganizerID:          "org-1",
		MaxCapacity:          capacity,
		RegistrationDeadline: &deadline,
		Confirmed:            []*domain.Registration{confirmed},
		Waitlist:             []*domain.Registration{waitlisted},
		TotalWaitlisted:      1,
		CreatedAt:            now,
		LastModified:         now,
	}
	events.Put(e)
	return e
}

func TestDeadlineWorker_SweepClosesOnce(t *testing.T) {
	f := newWorkerFixture()
	seedDeadlineEvent(f.events, "e1", 1, time.Now().Add(-time.Minute))

	f.worker.Sweep(context.Background())
	f.worker.Sweep(context.Background())

	e, _ := f.events.Get("e1")
	if !e.RegistrationClosed {
		t.Error("elapsed deadline should close registration")
	}
	if got := f.notifier.countKind(domain.NotificationDeadlineClosed); got != 1 {
		t.Errorf("closed notifications = %d, want exactly 1", got)
	}
	if got := f.publisher.countType(domain.LifecycleDeadlineClosed); got != 1 {
		t.Errorf("closed lifecycle events = %d, want exactly 1", got)
	}
}

func TestDeadlineWorker_ClosureNotifiesAllAttendees(t *testing.T) {
	f := newWorkerFixture()
	seedDeadlineEvent(f.events, "e1", 1, time.Now().Add(-time.Minute))

	f.worker.Sweep(context.Background())

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	for _, s := range f.notifier.sent {
		if s.Kind == domain.NotificationDeadlineClosed {
			if len(s.Recipients) != 2 {
				t.Errorf("recipients = %v, want confirmed and waitlisted", s.Recipients)
			}
			return
		}
	}
	t.Fatal("no closure notification sent")
}

func TestDeadlineWorker_WarningFiresOnce(t *testing.T) {
	f := newWorkerFixture()
	seedDeadlineEvent(f.events, "e1", 1, time.Now().Add(30*time.Minute))

	f.worker.Sweep(context.Background())
	f.worker.Sweep(context.Background())

	e, _ := f.events.Get("e1")
	if e.RegistrationClosed {
		t.Error("a future deadline must not close the window")
	}
	if !e.DeadlineWarningSent {
		t.Error("warning flag should be set inside the lead window")
	}
	if got := f.notifier.countKind(domain.NotificationDeadlineWarning); got != 1 {
		t.Errorf("warnings = %d, want exactly 1", got)
	}
}

func TestDeadlineWorker_SweepSkipsIneligibleEvents(t *testing.T) {
	f := newWorkerFixture()

	// Draft event with an elapsed deadline
	draft := seedDeadlineEvent(f.events, "e1", 1, time.Now().Add(-time.Minute))
	draft.Status = domain.EventStatusDraft
	f.events.Put(draft)

	// Published event without a deadline
	open := seedDeadlineEvent(f.events, "e2", 1, time.Now().Add(-time.Minute))
	open.RegistrationDeadline = nil
	f.events.Put(open)

	// Deadline far outside the warning lead
	far := seedDeadlineEvent(f.events, "e3", 1, time.Now().Add(48*time.Hour))
	f.events.Put(far)

	f.worker.Sweep(context.Background())

	if len(f.notifier.sent) != 0 {
		t.Errorf("notifications = %+v, want none", f.notifier.sent)
	}
	for _, id := range []string{"e1", "e2", "e3"} {
		e, _ := f.events.Get(id)
		if e.RegistrationClosed || e.DeadlineWarningSent {
			t.Errorf("event %s was touched by the sweep", id)
		}
	}
}

func TestDeadlineWorker_ExtendDeadlineReopensAndPromotes(t *testing.T) {
	f := newWorkerFixture()
	// One free seat; bob stays waitlisted while the window is closed
	seedDeadlineEvent(f.events, "e1", 2, time.Now().Add(-time.Minute))
	f.worker.Sweep(context.Background())

	e, _ := f.events.Get("e1")
	if !e.RegistrationClosed {
		t.Fatal("precondition: window should be closed")
	}

	newDeadline := time.Now().Add(time.Hour)
	resp, err := f.worker.ExtendDeadline(context.Background(), "e1", newDeadline, "extended by popular demand")
	if err != nil {
		t.Fatalf("ExtendDeadline: %v", err)
	}
	if resp.RegistrationClosed {
		t.Error("extension should reopen the window")
	}
	if resp.RegistrationDeadline == nil || !resp.RegistrationDeadline.Equal(newDeadline) {
		t.Errorf("deadline = %v", resp.RegistrationDeadline)
	}

	e, _ = f.events.Get("e1")
	if e.DeadlineWarningSent {
		t.Error("warning flag should be cleared so the new deadline warns again")
	}
	if e.ConfirmedCount() != 2 || len(e.Waitlist) != 0 {
		t.Errorf("confirmed %d waitlist %d, want bob promoted into the free seat", e.ConfirmedCount(), len(e.Waitlist))
	}
	if got := f.notifier.countKind(domain.NotificationDeadlineExtended); got != 1 {
		t.Errorf("extension notifications = %d", got)
	}
	if got := f.notifier.countKind(domain.NotificationPromoted); got != 1 {
		t.Errorf("promotion notifications = %d", got)
	}
	if got := f.publisher.countType(domain.LifecycleDeadlineExtended); got != 1 {
		t.Errorf("extension lifecycle events = %d", got)
	}
}

func TestDeadlineWorker_ExtendDeadlineValidation(t *testing.T) {
	f := newWorkerFixture()
	e := seedDeadlineEvent(f.events, "e1", 1, time.Now().Add(time.Hour))

	tests := []struct {
		name     string
		deadline time.Time
		wantErr  error
	}{
		{"not later than current", time.Now().Add(30 * time.Minute), domain.ErrDeadlineNotLater},
		{"equal to current", *e.RegistrationDeadline, domain.ErrDeadlineNotLater},
		{"at event start", e.StartTime, domain.ErrInvalidDeadline},
		{"after event start", e.StartTime.Add(time.Hour), domain.ErrInvalidDeadline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.worker.ExtendDeadline(context.Background(), "e1", tt.deadline, ""); err != tt.wantErr {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Draft events cannot be extended
	draft := seedDeadlineEvent(f.events, "e2", 1, time.Now().Add(time.Hour))
	draft.Status = domain.EventStatusDraft
	f.events.Put(draft)
	if _, err := f.worker.ExtendDeadline(context.Background(), "e2", time.Now().Add(90*time.Minute), ""); err != domain.ErrEventStateConflict {
		t.Errorf("draft extension: got %v, want ErrEventStateConflict", err)
	}
}

func TestDeadlineWorker_ProcessEventImmediately(t *testing.T) {
	f := newWorkerFixture()
	seedDeadlineEvent(f.events, "e1", 1, time.Now().Add(-time.Minute))

	if err := f.worker.ProcessEventImmediately(context.Background(), "missing"); err != domain.ErrEventNotFound {
		t.Errorf("unknown event: got %v, want ErrEventNotFound", err)
	}

	if err := f.worker.ProcessEventImmediately(context.Background(), "e1"); err != nil {
		t.Fatalf("ProcessEventImmediately: %v", err)
	}
	e, _ := f.events.Get("e1")
	if !e.RegistrationClosed {
		t.Error("immediate processing should close the elapsed window")
	}
}

func TestDeadlineWorker_Statistics(t *testing.T) {
	f := newWorkerFixture()
	seedDeadlineEvent(f.events, "e1", 1, time.Now().Add(-time.Minute))
	seedDeadlineEvent(f.events, "e2", 1, time.Now().Add(time.Hour))
	noDeadline := seedDeadlineEvent(f.events, "e3", 1, time.Now().Add(time.Hour))
	noDeadline.RegistrationDeadline = nil
	f.events.Put(noDeadline)

	f.worker.Sweep(context.Background())
	f.worker.Sweep(context.Background())

	stats := f.worker.Statistics(context.Background())
	if stats.TotalSweeps != 2 {
		t.Errorf("sweeps = %d, want 2", stats.TotalSweeps)
	}
	if stats.TotalClosed != 1 {
		t.Errorf("closed = %d, want 1", stats.TotalClosed)
	}
	if stats.PublishedEvents != 3 || stats.WithDeadline != 2 {
		t.Errorf("published %d with deadline %d", stats.PublishedEvents, stats.WithDeadline)
	}
	if stats.ClosedWindows != 1 || stats.OpenWindows != 1 {
		t.Errorf("closed %d open %d", stats.ClosedWindows, stats.OpenWindows)
	}
	if stats.ClosedOnTimeRatio != 1.0 {
		t.Errorf("ratio = %v, want 1.0 after the sweep caught up", stats.ClosedOnTimeRatio)
	}
	if stats.LastSweepAt == nil {
		t.Error("last sweep time should be set")
	}
}

func TestDeadlineWorker_StartStop(t *testing.T) {
	f := newWorkerFixture()

	if f.worker.IsRunning() {
		t.Fatal("worker should start stopped")
	}
	if err := f.worker.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !f.worker.IsRunning() {
		t.Error("worker should report running")
	}
	if err := f.worker.Start(context.Background()); err == nil {
		t.Error("second start should fail")
	}
	f.worker.Stop()
	if f.worker.IsRunning() {
		t.Error("worker should report stopped")
	}

	// A stopped worker restarts with a live sweep loop
	if err := f.worker.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !f.worker.IsRunning() {
		t.Error("worker should report running after restart")
	}
	if err := f.worker.Start(context.Background()); err == nil {
		t.Error("start while running should fail after restart")
	}
	f.worker.Stop()
	if f.worker.IsRunning() {
		t.Error("worker should report stopped after restart cycle")
	}

	// Stop on an already stopped worker is a no-op, not a panic
	f.worker.Stop()
}
