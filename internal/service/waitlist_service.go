package service

import (
	"context"
	"time"

	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/internal/dto"
	"github.com/seulch/campushub/internal/metrics"
	"github.com/seulch/campushub/internal/store"
	"github.com/seulch/campushub/internal/validation"
	"github.com/seulch/campushub/pkg/logger"
	"github.com/seulch/campushub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// EventSaver persists event snapshots. Saves are fire-and-forget; the
// in-memory store stays authoritative.
type EventSaver interface {
	SaveEvent(ctx context.Context, event *domain.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// WaitlistService manages each event's FIFO waitlist: enqueueing past
// capacity, promotion into freed slots and dense position renumbering
type WaitlistService interface {
	// HandleRegistrationCancellation cancels a registration and, when a
	// confirmed seat freed, promotes the waitlist head. The response
	// reports the cancelled registration and every promotion it caused.
	HandleRegistrationCancellation(ctx context.Context, eventID, registrationID, reason string) (*dto.CancelRegistrationResponse, error)

	// HandleCapacityIncrease raises capacity and promotes waitlisted
	// registrations into the new slots in FIFO order
	HandleCapacityIncrease(ctx context.Context, eventID string, newCapacity int) ([]*dto.RegistrationResponse, error)

	// RemoveFromWaitlist cancels a waitlisted registration without
	// touching confirmed seats
	RemoveFromWaitlist(ctx context.Context, eventID, registrationID, reason string) error

	// Statistics returns a snapshot of the event's waitlist
	Statistics(ctx context.Context, eventID string) (*dto.WaitlistStatsResponse, error)

	// PromoteEligible runs a promotion pass, used after a deadline
	// extension reopens the window
	PromoteEligible(ctx context.Context, eventID string) ([]*dto.RegistrationResponse, error)
}

// waitlistService implements WaitlistService
type waitlistService struct {
	events    *store.EventStore
	notifier  Notifier
	publisher LifecyclePublisher
	saver     EventSaver
	log       *logger.Logger
}

// NewWaitlistService creates a waitlist service
func NewWaitlistService(events *store.EventStore, notifier Notifier, publisher LifecyclePublisher, saver EventSaver) WaitlistService {
	if notifier == nil {
		notifier = NewNoOpNotifier()
	}
	if publisher == nil {
		publisher = NewNoOpLifecyclePublisher()
	}
	return &waitlistService{
		events:    events,
		notifier:  notifier,
		publisher: publisher,
		saver:     saver,
		log:       logger.Get(),
	}
}

// enqueueWaitlist appends a registration at the tail with the next dense
// position. Caller holds the event critical section.
func enqueueWaitlist(e *domain.Event, r *domain.Registration) int {
	position := len(e.Waitlist) + 1
	_ = r.MoveToWaitlist(position)
	e.Waitlist = append(e.Waitlist, r)
	e.TotalWaitlisted++
	return position
}

// renumberWaitlist restores dense 1-based positions after any removal.
// Caller holds the event critical section.
func renumberWaitlist(e *domain.Event) {
	for i, r := range e.Waitlist {
		r.WaitlistPosition = i + 1
	}
}

// promoteFromWaitlist moves waitlist heads into free confirmed slots in
// FIFO order, skipping cancelled entries. Returns the promoted
// registrations. Caller holds the event critical section.
func promoteFromWaitlist(e *domain.Event, now time.Time) []*domain.Registration {
	if !e.PromotionAllowed(now) {
		return nil
	}
	var promoted []*domain.Registration
	for !e.IsFull() && len(e.Waitlist) > 0 {
		head := e.Waitlist[0]
		e.Waitlist = e.Waitlist[1:]
		if head.IsCancelled() {
			continue
		}
		_ = head.Confirm()
		e.Confirmed = append(e.Confirmed, head)
		promoted = append(promoted, head)
	}
	renumberWaitlist(e)
	if len(promoted) > 0 {
		e.Touch(now)
	}
	return promoted
}

// removeFromWaitlist drops a registration from the waitlist slice and
// renumbers. Caller holds the event critical section.
func removeFromWaitlist(e *domain.Event, registrationID string) bool {
	for i, r := range e.Waitlist {
		if r.ID == registrationID {
			e.Waitlist = append(e.Waitlist[:i], e.Waitlist[i+1:]...)
			renumberWaitlist(e)
			return true
		}
	}
	return false
}

// promotionNotifications builds one notification per promoted attendee.
// Built inside the critical section, delivered after release.
func promotionNotifications(e *domain.Event, promoted []*domain.Registration) []*domain.Notification {
	out := make([]*domain.Notification, 0, len(promoted))
	for _, r := range promoted {
		out = append(out, &domain.Notification{
			Message:    "A spot opened up for " + e.Title + " and your registration is now confirmed.",
			Recipients: []string{r.AttendeeID},
			Kind:       domain.NotificationPromoted,
		})
	}
	return out
}

// HandleRegistrationCancellation cancels a registration and promotes into
// any freed seat
func (s *waitlistService) HandleRegistrationCancellation(ctx context.Context, eventID, registrationID, reason string) (*dto.CancelRegistrationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.cancel_registration")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, err
	}
	if err := validation.ValidateID(registrationID, domain.ErrInvalidRegistrationID); err != nil {
		span.SetStatus(codes.Error, "invalid registration_id")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("registration_id", registrationID),
	)

	now := time.Now()
	var (
		cancelled     *domain.Registration
		wasWaitlisted bool
		promoted      []*domain.Registration
		notifications []*domain.Notification
		snapshot      *domain.Event
	)

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		reg := e.FindRegistration(registrationID)
		if reg == nil {
			return domain.ErrRegistrationNotFound
		}
		if reg.IsCancelled() {
			return domain.ErrRegistrationCancelled
		}

		wasWaitlisted = reg.IsWaitlisted()
		wasConfirmed := reg.IsConfirmed()
		if err := reg.Cancel(reason, now); err != nil {
			return err
		}

		if wasWaitlisted {
			removeFromWaitlist(e, registrationID)
			e.WaitlistCancelled++
		}
		if wasConfirmed {
			e.RemoveConfirmed(registrationID)
			promoted = promoteFromWaitlist(e, now)
		}
		e.Touch(now)

		regCopy := *reg
		cancelled = &regCopy
		notifications = promotionNotifications(e, promoted)
		snapshot = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	deliverNotifications(ctx, s.notifier, s.log, notifications)
	s.publishLifecycle(ctx, domain.LifecycleRegistrationCancelled, eventID, dto.FromRegistration(cancelled))
	promotedOut := make([]*dto.RegistrationResponse, 0, len(promoted))
	for _, r := range promoted {
		s.publishLifecycle(ctx, domain.LifecycleRegistrationPromoted, eventID, dto.FromRegistration(r))
		metrics.RecordPromotion(ctx, eventID)
		promotedOut = append(promotedOut, dto.FromRegistration(r))
	}
	metrics.RecordCancellation(ctx, eventID, wasWaitlisted)
	persistEvent(ctx, s.saver, s.log, snapshot)

	return &dto.CancelRegistrationResponse{
		Cancelled:     dto.FromRegistration(cancelled),
		Promoted:      promotedOut,
		PromotedCount: len(promotedOut),
	}, nil
}

// HandleCapacityIncrease raises capacity and promotes in FIFO order
func (s *waitlistService) HandleCapacityIncrease(ctx context.Context, eventID string, newCapacity int) ([]*dto.RegistrationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.capacity_increase")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, err
	}
	if err := validation.ValidateCapacity(newCapacity); err != nil {
		span.SetStatus(codes.Error, "invalid capacity")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("new_capacity", newCapacity),
	)

	now := time.Now()
	var (
		promoted      []*domain.Registration
		notifications []*domain.Notification
		snapshot      *domain.Event
	)

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		if newCapacity < e.ConfirmedCount() {
			return domain.ErrCapacityBelowUsage
		}
		e.MaxCapacity = newCapacity
		promoted = promoteFromWaitlist(e, now)
		e.Touch(now)
		notifications = promotionNotifications(e, promoted)
		snapshot = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	deliverNotifications(ctx, s.notifier, s.log, notifications)
	out := make([]*dto.RegistrationResponse, 0, len(promoted))
	for _, r := range promoted {
		s.publishLifecycle(ctx, domain.LifecycleRegistrationPromoted, eventID, dto.FromRegistration(r))
		metrics.RecordPromotion(ctx, eventID)
		out = append(out, dto.FromRegistration(r))
	}
	persistEvent(ctx, s.saver, s.log, snapshot)

	return out, nil
}

// RemoveFromWaitlist cancels a waitlisted registration
func (s *waitlistService) RemoveFromWaitlist(ctx context.Context, eventID, registrationID, reason string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.remove")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		return err
	}
	if err := validation.ValidateID(registrationID, domain.ErrInvalidRegistrationID); err != nil {
		return err
	}

	now := time.Now()
	var snapshot *domain.Event

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		reg := e.FindRegistration(registrationID)
		if reg == nil {
			return domain.ErrRegistrationNotFound
		}
		if !reg.IsWaitlisted() {
			return domain.ErrRegistrationNotFound
		}
		if err := reg.Cancel(reason, now); err != nil {
			return err
		}
		removeFromWaitlist(e, registrationID)
		e.WaitlistCancelled++
		e.Touch(now)
		snapshot = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	metrics.RecordCancellation(ctx, eventID, true)
	persistEvent(ctx, s.saver, s.log, snapshot)
	return nil
}

// Statistics returns a snapshot of the event's waitlist
func (s *waitlistService) Statistics(ctx context.Context, eventID string) (*dto.WaitlistStatsResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.waitlist.statistics")
	defer span.End()

	e, err := s.events.Get(eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &dto.WaitlistStatsResponse{
		EventID:         e.ID,
		ConfirmedCount:  e.ConfirmedCount(),
		MaxCapacity:     e.MaxCapacity,
		ActiveCount:     len(e.Waitlist),
		TotalWaitlisted: e.TotalWaitlisted,
		CancelledCount:  e.WaitlistCancelled,
		NextPosition:    len(e.Waitlist) + 1,
	}, nil
}

// PromoteEligible runs a promotion pass outside of cancellation or
// capacity changes
func (s *waitlistService) PromoteEligible(ctx context.Context, eventID string) ([]*dto.RegistrationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.promote_eligible")
	defer span.End()

	now := time.Now()
	var (
		promoted      []*domain.Registration
		notifications []*domain.Notification
		snapshot      *domain.Event
	)

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		promoted = promoteFromWaitlist(e, now)
		notifications = promotionNotifications(e, promoted)
		if len(promoted) > 0 {
			snapshot = e.Clone()
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	deliverNotifications(ctx, s.notifier, s.log, notifications)
	out := make([]*dto.RegistrationResponse, 0, len(promoted))
	for _, r := range promoted {
		s.publishLifecycle(ctx, domain.LifecycleRegistrationPromoted, eventID, dto.FromRegistration(r))
		metrics.RecordPromotion(ctx, eventID)
		out = append(out, dto.FromRegistration(r))
	}
	if snapshot != nil {
		persistEvent(ctx, s.saver, s.log, snapshot)
	}
	return out, nil
}

func (s *waitlistService) publishLifecycle(ctx context.Context, t domain.LifecycleEventType, eventID string, payload interface{}) {
	if err := s.publisher.Publish(ctx, t, eventID, payload); err != nil {
		s.log.Warn("lifecycle publish failed",
			zap.String("type", string(t)),
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}

// persistEvent writes a snapshot without failing the operation
func persistEvent(ctx context.Context, saver EventSaver, log *logger.Logger, e *domain.Event) {
	if saver == nil || e == nil {
		return
	}
	if err := saver.SaveEvent(ctx, e); err != nil {
		log.Warn("event snapshot save failed",
			zap.String("event_id", e.ID),
			zap.Error(err))
	}
}
