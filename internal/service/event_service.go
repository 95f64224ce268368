package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
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

// EventService owns the Event aggregate. It is the sole writer of event
// status and capacity; waitlist and venue decisions are delegated.
type EventService interface {
	// CreateEvent validates and creates a draft event, booking the venue
	// when one is supplied. No partial state survives a failure.
	CreateEvent(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// ListEvents returns all events
	ListEvents(ctx context.Context) []*dto.EventResponse

	// PublishEvent moves a draft event to published
	PublishEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// ActivateEvent moves a published event to active
	ActivateEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// CompleteEvent moves an active event to completed
	CompleteEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// ArchiveEvent moves a completed or cancelled event to archived
	ArchiveEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// UpdateEvent applies partial metadata changes. Capacity increases
	// route through waitlist promotion; decreases never drop below the
	// confirmed count.
	UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)

	// CancelEvent cancels the event, releases its venue and notifies all
	// confirmed and waitlisted attendees
	CancelEvent(ctx context.Context, eventID, reason string) (*dto.EventResponse, error)

	// RescheduleEvent moves the event to a new time range, re-booking the
	// venue for the new interval or failing the whole operation
	RescheduleEvent(ctx context.Context, eventID string, req *dto.RescheduleEventRequest) (*dto.EventResponse, error)

	// DeleteEvent removes a draft event and its owned registrations
	DeleteEvent(ctx context.Context, eventID string) error

	// RegisterAttendee admits the attendee against capacity or enqueues
	// them on the waitlist, atomically
	RegisterAttendee(ctx context.Context, eventID, attendeeID string) (*dto.RegistrationResponse, error)

	// CancelRegistration cancels a registration and promotes into any
	// freed confirmed seat, reporting the promotions in the response
	CancelRegistration(ctx context.Context, eventID, registrationID, reason string) (*dto.CancelRegistrationResponse, error)

	// ListRegistrations returns the event's registrations, confirmed
	// first, then the waitlist in position order
	ListRegistrations(ctx context.Context, eventID string) ([]*dto.RegistrationResponse, error)

	// MarkAttendance records check-in for a confirmed registration
	MarkAttendance(ctx context.Context, eventID, registrationID string) (*dto.RegistrationResponse, error)
}

// eventService implements EventService
type eventService struct {
	events    *store.EventStore
	validator ScheduleValidator
	waitlist  WaitlistService
	venues    VenueBookingService
	notifier  Notifier
	publisher LifecyclePublisher
	saver     EventSaver
	log       *logger.Logger
}

// NewEventService creates an event service
func NewEventService(
	events *store.EventStore,
	validator ScheduleValidator,
	waitlist WaitlistService,
	venues VenueBookingService,
	notifier Notifier,
	publisher LifecyclePublisher,
	saver EventSaver,
) EventService {
	if notifier == nil {
		notifier = NewNoOpNotifier()
	}
	if publisher == nil {
		publisher = NewNoOpLifecyclePublisher()
	}
	return &eventService{
		events:    events,
		validator: validator,
		waitlist:  waitlist,
		venues:    venues,
		notifier:  notifier,
		publisher: publisher,
		saver:     saver,
		log:       logger.Get(),
	}
}

// CreateEvent validates and creates a draft event
func (s *eventService) CreateEvent(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, domain.ErrInvalidTitle
	}
	if err := validation.ValidateID(organizerID, domain.ErrInvalidOrganizerID); err != nil {
		span.SetStatus(codes.Error, "invalid organizer_id")
		return nil, err
	}
	if err := validation.ValidateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription(req.Description); err != nil {
		return nil, err
	}
	eventType := domain.EventType(req.Type)
	if err := validation.ValidateEventType(eventType); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateEventDuration(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	now := time.Now()
	if err := validation.ValidateFutureStart(req.StartTime, now); err != nil {
		return nil, err
	}
	if err := validation.ValidateDeadline(req.RegistrationDeadline, req.StartTime); err != nil {
		return nil, err
	}
	// Capacity may stay unset only when a venue supplies the default
	if req.VenueID == "" {
		if err := validation.ValidateCapacity(req.MaxCapacity); err != nil {
			return nil, err
		}
	} else if req.MaxCapacity < 0 {
		return nil, domain.ErrInvalidCapacity
	}

	if conflicts := s.validator.DetectConflicts(organizerID, req.StartTime, req.EndTime, ""); len(conflicts) > 0 {
		span.SetStatus(codes.Error, "organizer conflict")
		return nil, fmt.Errorf("%w: %s", domain.ErrOrganizerConflict, conflicts[0])
	}

	event := &domain.Event{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		Type:         eventType,
		Status:       domain.EventStatusDraft,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		OrganizerID:  organizerID,
		MaxCapacity:  req.MaxCapacity,
		CreatedAt:    now,
		LastModified: now,
	}
	if req.RegistrationDeadline != nil {
		d := *req.RegistrationDeadline
		event.RegistrationDeadline = &d
	}
	span.SetAttributes(attribute.String("event_id", event.ID))

	s.events.Put(event)

	if req.VenueID != "" {
		if _, err := s.venues.BookVenueForEvent(ctx, event.ID, req.VenueID); err != nil {
			// No partial state on failure
			s.events.Delete(event.ID)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	created, err := s.events.Get(event.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordEventCreated(ctx, string(eventType))
	s.publishLifecycle(ctx, domain.LifecycleEventCreated, event.ID, dto.FromEvent(created))
	persistEvent(ctx, s.saver, s.log, created)

	return dto.FromEvent(created), nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	e, err := s.events.Get(eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return dto.FromEvent(e), nil
}

// ListEvents returns all events
func (s *eventService) ListEvents(ctx context.Context) []*dto.EventResponse {
	_, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	events := s.events.List()
	out := make([]*dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.FromEvent(e))
	}
	return out
}

// PublishEvent moves a draft event to published
func (s *eventService) PublishEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	return s.transition(ctx, "service.event.publish", eventID, domain.EventStatusPublished, domain.LifecycleEventPublished)
}

// ActivateEvent moves a published event to active
func (s *eventService) ActivateEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	return s.transition(ctx, "service.event.activate", eventID, domain.EventStatusActive, "")
}

// CompleteEvent moves an active event to completed
func (s *eventService) CompleteEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	return s.transition(ctx, "service.event.complete", eventID, domain.EventStatusCompleted, "")
}

// ArchiveEvent moves a completed or cancelled event to archived
func (s *eventService) ArchiveEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	return s.transition(ctx, "service.event.archive", eventID, domain.EventStatusArchived, "")
}

// transition runs one state machine step
func (s *eventService) transition(ctx context.Context, spanName, eventID string, next domain.EventStatus, lifecycle domain.LifecycleEventType) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	now := time.Now()
	var snapshot *domain.Event
	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		if err := e.TransitionTo(next, now); err != nil {
			return err
		}
		snapshot = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if lifecycle != "" {
		s.publishLifecycle(ctx, lifecycle, eventID, dto.FromEvent(snapshot))
	}
	persistEvent(ctx, s.saver, s.log, snapshot)
	return dto.FromEvent(snapshot), nil
}

// UpdateEvent applies partial metadata changes
func (s *eventService) UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		return nil, err
	}
	if req == nil {
		return s.GetEvent(ctx, eventID)
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	if req.Title != nil {
		if err := validation.ValidateTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := validation.ValidateDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if err := validation.ValidateEventType(domain.EventType(*req.Type)); err != nil {
			return nil, err
		}
	}
	if req.MaxCapacity != nil {
		if err := validation.ValidateCapacity(*req.MaxCapacity); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	capacityIncrease := 0
	var snapshot *domain.Event

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		switch e.Status {
		case domain.EventStatusCancelled, domain.EventStatusCompleted, domain.EventStatusArchived:
			return domain.ErrEventStateConflict
		}
		if req.Title != nil {
			e.Title = *req.Title
		}
		if req.Description != nil {
			e.Description = *req.Description
		}
		if req.Type != nil {
			e.Type = domain.EventType(*req.Type)
		}
		if req.MaxCapacity != nil && *req.MaxCapacity != e.MaxCapacity {
			if *req.MaxCapacity < e.ConfirmedCount() {
				return domain.ErrCapacityBelowUsage
			}
			if *req.MaxCapacity > e.MaxCapacity {
				// Applied after the lock so promotion runs through the
				// waitlist service
				capacityIncrease = *req.MaxCapacity
			} else {
				e.MaxCapacity = *req.MaxCapacity
			}
		}
		e.Touch(now)
		snapshot = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if capacityIncrease > 0 {
		if _, err := s.waitlist.HandleCapacityIncrease(ctx, eventID, capacityIncrease); err != nil {
			return nil, err
		}
		return s.GetEvent(ctx, eventID)
	}

	persistEvent(ctx, s.saver, s.log, snapshot)
	return dto.FromEvent(snapshot), nil
}

// CancelEvent cancels the event, releases its venue and notifies attendees
func (s *eventService) CancelEvent(ctx context.Context, eventID, reason string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.cancel")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	now := time.Now()
	var (
		notifications []*domain.Notification
		waitlisted    int
	)

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		if err := e.TransitionTo(domain.EventStatusCancelled, now); err != nil {
			return err
		}
		e.RegistrationClosed = true
		waitlisted = len(e.Waitlist)

		if recipients := e.AttendeeRecipients(); len(recipients) > 0 {
			message := "Event " + e.Title + " has been cancelled."
			if reason != "" {
				message += " Reason: " + reason
			}
			notifications = append(notifications, &domain.Notification{
				Message:    message,
				Recipients: recipients,
				Kind:       domain.NotificationEventCancelled,
			})
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Venue release runs after the status change; a released booking for
	// a cancelled event is the invariant either way
	if _, err := s.venues.CancelVenueBooking(ctx, eventID); err != nil && !domain.IsNotFoundError(err) {
		s.log.Warn("venue release on cancel failed",
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	deliverNotifications(ctx, s.notifier, s.log, notifications)
	metrics.RecordEventCancelled(ctx, eventID, int64(waitlisted))
	s.publishLifecycle(ctx, domain.LifecycleEventCancelled, eventID, map[string]string{"reason": reason})

	final, err := s.events.Get(eventID)
	if err != nil {
		return nil, err
	}
	persistEvent(ctx, s.saver, s.log, final)
	return dto.FromEvent(final), nil
}

// RescheduleEvent moves the event to a new time range
func (s *eventService) RescheduleEvent(ctx context.Context, eventID string, req *dto.RescheduleEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.reschedule")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrInvalidTimeRange
	}
	if err := s.validator.ValidateEventDuration(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	now := time.Now()
	if err := validation.ValidateFutureStart(req.StartTime, now); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	// Conflict detection reads the event index, so it runs before the
	// critical section
	current, err := s.events.Get(eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if conflicts := s.validator.DetectConflicts(current.OrganizerID, req.StartTime, req.EndTime, eventID); len(conflicts) > 0 {
		span.SetStatus(codes.Error, "organizer conflict")
		return nil, fmt.Errorf("%w: %s", domain.ErrOrganizerConflict, conflicts[0])
	}

	var (
		snapshot      *domain.Event
		venueSnap     *domain.Venue
		notifications []*domain.Notification
	)

	err = s.events.Mutate(eventID, func(e *domain.Event) error {
		switch e.Status {
		case domain.EventStatusCancelled, domain.EventStatusCompleted, domain.EventStatusArchived:
			return domain.ErrEventStateConflict
		}
		if e.RegistrationDeadline != nil && !e.RegistrationDeadline.Before(req.StartTime) {
			return domain.ErrInvalidDeadline
		}

		// Venue re-booking fails the whole operation; no partial commit
		v, err := s.venues.RebookForReschedule(e, req.StartTime, req.EndTime)
		if err != nil {
			return err
		}
		venueSnap = v

		e.StartTime = req.StartTime
		e.EndTime = req.EndTime
		e.Touch(now)

		if recipients := e.AttendeeRecipients(); len(recipients) > 0 {
			message := fmt.Sprintf("Event %s has been rescheduled to %s.",
				e.Title, req.StartTime.Format(time.RFC3339))
			if req.Reason != "" {
				message += " Reason: " + req.Reason
			}
			notifications = append(notifications, &domain.Notification{
				Message:    message,
				Recipients: recipients,
				Kind:       domain.NotificationEventRescheduled,
			})
		}
		snapshot = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	deliverNotifications(ctx, s.notifier, s.log, notifications)
	s.publishLifecycle(ctx, domain.LifecycleEventRescheduled, eventID, dto.FromEvent(snapshot))
	persistEvent(ctx, s.saver, s.log, snapshot)
	if venueSnap != nil {
		persistVenue(ctx, s.venueSaverOrNil(), s.log, venueSnap)
	}
	return dto.FromEvent(snapshot), nil
}

// venueSaverOrNil exposes the venue saver through the venue service when
// it carries one
func (s *eventService) venueSaverOrNil() VenueSaver {
	if vs, ok := s.venues.(*venueBookingService); ok {
		return vs.venueSaver
	}
	return nil
}

// DeleteEvent removes a draft event
func (s *eventService) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		return err
	}

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		if e.Status != domain.EventStatusDraft {
			return domain.ErrEventStateConflict
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := s.venues.CancelVenueBooking(ctx, eventID); err != nil && !domain.IsNotFoundError(err) {
		s.log.Warn("venue release on delete failed",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
	s.events.Delete(eventID)

	if s.saver != nil {
		if err := s.saver.DeleteEvent(ctx, eventID); err != nil {
			s.log.Warn("event snapshot delete failed",
				zap.String("event_id", eventID),
				zap.Error(err))
		}
	}
	return nil
}

// RegisterAttendee admits the attendee or enqueues them on the waitlist
func (s *eventService) RegisterAttendee(ctx context.Context, eventID, attendeeID string) (*dto.RegistrationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.register")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID(attendeeID, domain.ErrInvalidAttendeeID); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("attendee_id", attendeeID),
	)

	target, err := s.events.Get(eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.attendeeOverlapCheck(attendeeID, target); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	var (
		result        *domain.Registration
		waitlisted    bool
		position      int
		notifications []*domain.Notification
		snapshot      *domain.Event
	)

	err = s.events.Mutate(eventID, func(e *domain.Event) error {
		if !e.IsRegistrationOpen(now) {
			return domain.ErrRegistrationWindowClosed
		}
		if e.ActiveRegistrationFor(attendeeID) != nil {
			return domain.ErrAlreadyRegistered
		}

		reg := domain.NewRegistration(uuid.New().String(), attendeeID, eventID, now)
		if !e.IsFull() {
			_ = reg.Confirm()
			e.Confirmed = append(e.Confirmed, reg)
		} else {
			waitlisted = true
			position = enqueueWaitlist(e, reg)
			notifications = append(notifications, &domain.Notification{
				Message:    fmt.Sprintf("Event %s is full. You are on the waitlist at position %d.", e.Title, position),
				Recipients: []string{attendeeID},
				Kind:       domain.NotificationWaitlisted,
			})
		}
		e.Touch(now)

		regCopy := *reg
		result = &regCopy
		snapshot = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	deliverNotifications(ctx, s.notifier, s.log, notifications)
	s.publishLifecycle(ctx, domain.LifecycleRegistrationCreated, eventID, dto.FromRegistration(result))
	if waitlisted {
		metrics.RecordWaitlisted(ctx, eventID, position)
	} else {
		metrics.RecordConfirmation(ctx, eventID)
	}
	persistEvent(ctx, s.saver, s.log, snapshot)

	return dto.FromRegistration(result), nil
}

// attendeeOverlapCheck rejects registration when the attendee already
// holds an active registration for another event overlapping this one
func (s *eventService) attendeeOverlapCheck(attendeeID string, target *domain.Event) error {
	for _, e := range s.events.List() {
		if e.ID == target.ID {
			continue
		}
		switch e.Status {
		case domain.EventStatusCancelled, domain.EventStatusCompleted, domain.EventStatusArchived:
			continue
		}
		if !e.Overlaps(target.StartTime, target.EndTime) {
			continue
		}
		if e.ActiveRegistrationFor(attendeeID) != nil {
			return domain.ErrAttendeeTimeConflict
		}
	}
	return nil
}

// CancelRegistration cancels a registration and promotes into freed seats
func (s *eventService) CancelRegistration(ctx context.Context, eventID, registrationID, reason string) (*dto.CancelRegistrationResponse, error) {
	return s.waitlist.HandleRegistrationCancellation(ctx, eventID, registrationID, reason)
}

// ListRegistrations returns confirmed registrations then the waitlist
func (s *eventService) ListRegistrations(ctx context.Context, eventID string) ([]*dto.RegistrationResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.event.list_registrations")
	defer span.End()

	e, err := s.events.Get(eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]*dto.RegistrationResponse, 0, len(e.Confirmed)+len(e.Waitlist))
	for _, r := range e.Confirmed {
		out = append(out, dto.FromRegistration(r))
	}
	for _, r := range e.Waitlist {
		out = append(out, dto.FromRegistration(r))
	}
	return out, nil
}

// MarkAttendance records check-in for a confirmed registration
func (s *eventService) MarkAttendance(ctx context.Context, eventID, registrationID string) (*dto.RegistrationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.mark_attendance")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID(registrationID, domain.ErrInvalidRegistrationID); err != nil {
		return nil, err
	}

	now := time.Now()
	var (
		result   *domain.Registration
		snapshot *domain.Event
	)

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		reg := e.FindRegistration(registrationID)
		if reg == nil {
			return domain.ErrRegistrationNotFound
		}
		if err := reg.MarkAttended(now); err != nil {
			return err
		}
		e.Touch(now)
		regCopy := *reg
		result = &regCopy
		snapshot = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	persistEvent(ctx, s.saver, s.log, snapshot)
	return dto.FromRegistration(result), nil
}

func (s *eventService) publishLifecycle(ctx context.Context, t domain.LifecycleEventType, eventID string, payload interface{}) {
	if err := s.publisher.Publish(ctx, t, eventID, payload); err != nil {
		s.log.Warn("lifecycle publish failed",
			zap.String("type", string(t)),
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}
