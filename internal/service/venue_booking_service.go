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

// VenueSaver persists venue snapshots. Saves are fire-and-forget.
type VenueSaver interface {
	SaveVenue(ctx context.Context, venue *domain.Venue) error
}

// VenueBookingService manages the venue catalog and the buffer-aware
// booking ledger. It is the sole writer of venue booking membership.
type VenueBookingService interface {
	// CreateVenue adds a venue to the catalog
	CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*dto.VenueResponse, error)

	// GetVenue retrieves a venue by ID
	GetVenue(ctx context.Context, venueID string) (*dto.VenueResponse, error)

	// ListVenues returns the catalog in insertion order
	ListVenues(ctx context.Context) []*dto.VenueResponse

	// DeactivateVenue takes a venue out of the bookable catalog without
	// touching its existing bookings
	DeactivateVenue(ctx context.Context, venueID string) error

	// BookVenueForEvent books a venue for the event's time range plus the
	// venue's setup/cleanup buffers
	BookVenueForEvent(ctx context.Context, eventID, venueID string) (*dto.VenueBookingResponse, error)

	// CancelVenueBooking releases the event's booking; false when the
	// event holds no venue
	CancelVenueBooking(ctx context.Context, eventID string) (bool, error)

	// FindAvailableVenues scans active venues in catalog order
	FindAvailableVenues(ctx context.Context, start, end time.Time, minCapacity int) ([]*dto.VenueResponse, error)

	// CanChangeVenue reports whether ChangeEventVenue would succeed
	CanChangeVenue(ctx context.Context, eventID, newVenueID string) (bool, error)

	// ChangeEventVenue atomically moves the event's booking to a new
	// venue, restoring the old booking when the new one cannot be placed
	ChangeEventVenue(ctx context.Context, eventID, newVenueID string) (*dto.VenueBookingResponse, error)

	// VenueConflicts returns a descriptive conflict list for a probe
	// window; missing or inactive venues are reported, not errors
	VenueConflicts(ctx context.Context, venueID string, start, end time.Time) *dto.VenueConflictsResponse

	// RebookForReschedule moves the event's booking to a new time range
	// inside the caller's event critical section
	RebookForReschedule(e *domain.Event, newStart, newEnd time.Time) (*domain.Venue, error)
}

// venueBookingService implements VenueBookingService. Critical sections
// nest the venue store lock inside the event store lock; every path keeps
// that order.
type venueBookingService struct {
	events     *store.EventStore
	venues     *store.VenueStore
	eventSaver EventSaver
	venueSaver VenueSaver
	log        *logger.Logger
}

// NewVenueBookingService creates a venue booking service
func NewVenueBookingService(events *store.EventStore, venues *store.VenueStore, eventSaver EventSaver, venueSaver VenueSaver) VenueBookingService {
	return &venueBookingService{
		events:     events,
		venues:     venues,
		eventSaver: eventSaver,
		venueSaver: venueSaver,
		log:        logger.Get(),
	}
}

// CreateVenue adds a venue to the catalog
func (s *venueBookingService) CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*dto.VenueResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.create")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, domain.ErrInvalidVenueID
	}
	if err := validation.ValidateTitle(req.Name); err != nil {
		span.SetStatus(codes.Error, "invalid name")
		return nil, domain.ErrInvalidTitle
	}
	if err := validation.ValidateCapacity(req.Capacity); err != nil {
		span.SetStatus(codes.Error, "invalid capacity")
		return nil, err
	}
	if req.SetupTimeMinutes < 0 || req.CleanupTimeMinutes < 0 {
		span.SetStatus(codes.Error, "invalid buffers")
		return nil, domain.ErrInvalidTimeRange
	}

	venue := &domain.Venue{
		ID:                 uuid.New().String(),
		Name:               req.Name,
		Location:           req.Location,
		Capacity:           req.Capacity,
		SetupTimeMinutes:   req.SetupTimeMinutes,
		CleanupTimeMinutes: req.CleanupTimeMinutes,
		Active:             true,
		CreatedAt:          time.Now(),
	}
	s.venues.Put(venue)
	span.SetAttributes(attribute.String("venue_id", venue.ID))

	persistVenue(ctx, s.venueSaver, s.log, venue.Clone())
	return dto.FromVenue(venue), nil
}

// GetVenue retrieves a venue by ID
func (s *venueBookingService) GetVenue(ctx context.Context, venueID string) (*dto.VenueResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.venue.get")
	defer span.End()

	v, err := s.venues.Get(venueID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return dto.FromVenue(v), nil
}

// ListVenues returns the catalog in insertion order
func (s *venueBookingService) ListVenues(ctx context.Context) []*dto.VenueResponse {
	_, span := telemetry.StartSpan(ctx, "service.venue.list")
	defer span.End()

	venues := s.venues.List()
	out := make([]*dto.VenueResponse, 0, len(venues))
	for _, v := range venues {
		out = append(out, dto.FromVenue(v))
	}
	return out
}

// DeactivateVenue takes a venue out of the bookable catalog
func (s *venueBookingService) DeactivateVenue(ctx context.Context, venueID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.deactivate")
	defer span.End()

	var snapshot *domain.Venue
	err := s.venues.Mutate(venueID, func(v *domain.Venue) error {
		v.Active = false
		snapshot = v.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	persistVenue(ctx, s.venueSaver, s.log, snapshot)
	return nil
}

// BookVenueForEvent books a venue for the event's time range
func (s *venueBookingService) BookVenueForEvent(ctx context.Context, eventID, venueID string) (*dto.VenueBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.book")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, err
	}
	if err := validation.ValidateID(venueID, domain.ErrInvalidVenueID); err != nil {
		span.SetStatus(codes.Error, "invalid venue_id")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("venue_id", venueID),
	)

	now := time.Now()
	var (
		booking   *domain.VenueBooking
		eventSnap *domain.Event
		venueSnap *domain.Venue
	)

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		switch e.Status {
		case domain.EventStatusCancelled, domain.EventStatusCompleted, domain.EventStatusArchived:
			return domain.ErrEventStateConflict
		}
		if e.VenueID != "" {
			return domain.ErrVenueAlreadyBooked
		}
		return s.venues.Mutate(venueID, func(v *domain.Venue) error {
			if !v.Active {
				return domain.ErrVenueInactive
			}
			if e.MaxCapacity > v.Capacity {
				return domain.ErrCapacityExceeded
			}
			b := v.NewBooking(e.ID, e.StartTime, e.EndTime)
			if err := v.AddBooking(b); err != nil {
				return err
			}
			// Unset capacity defaults to the venue's
			if e.MaxCapacity <= 0 {
				e.MaxCapacity = v.Capacity
			}
			e.VenueID = v.ID
			e.Touch(now)

			bc := *b
			booking = &bc
			eventSnap = e.Clone()
			venueSnap = v.Clone()
			return nil
		})
	})
	if err != nil {
		if err == domain.ErrVenueUnavailable {
			metrics.RecordVenueConflict(ctx, venueID)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordVenueBooking(ctx, venueID)
	persistEvent(ctx, s.eventSaver, s.log, eventSnap)
	persistVenue(ctx, s.venueSaver, s.log, venueSnap)

	return &dto.VenueBookingResponse{
		VenueID:      venueID,
		EventID:      eventID,
		StartTime:    booking.StartTime,
		EndTime:      booking.EndTime,
		BookingStart: booking.BookingStart,
		BookingEnd:   booking.BookingEnd,
	}, nil
}

// CancelVenueBooking releases the event's booking
func (s *venueBookingService) CancelVenueBooking(ctx context.Context, eventID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.release")
	defer span.End()

	now := time.Now()
	released := false
	var (
		eventSnap *domain.Event
		venueSnap *domain.Venue
	)

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		if e.VenueID == "" {
			return nil
		}
		venueID := e.VenueID
		err := s.venues.Mutate(venueID, func(v *domain.Venue) error {
			released = v.RemoveBooking(e.ID)
			venueSnap = v.Clone()
			return nil
		})
		if err != nil && err != domain.ErrVenueNotFound {
			return err
		}
		e.VenueID = ""
		e.Touch(now)
		eventSnap = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	persistEvent(ctx, s.eventSaver, s.log, eventSnap)
	persistVenue(ctx, s.venueSaver, s.log, venueSnap)
	return released, nil
}

// FindAvailableVenues scans active venues in catalog order
func (s *venueBookingService) FindAvailableVenues(ctx context.Context, start, end time.Time, minCapacity int) ([]*dto.VenueResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.venue.find_available")
	defer span.End()

	if err := validation.ValidateTimeRange(start, end); err != nil {
		span.SetStatus(codes.Error, "invalid time range")
		return nil, err
	}

	var out []*dto.VenueResponse
	for _, v := range s.venues.List() {
		if !v.Active || v.Capacity < minCapacity {
			continue
		}
		if v.IsAvailable(start, end, "") {
			out = append(out, dto.FromVenue(v))
		}
	}
	return out, nil
}

// CanChangeVenue reports whether ChangeEventVenue would succeed
func (s *venueBookingService) CanChangeVenue(ctx context.Context, eventID, newVenueID string) (bool, error) {
	_, span := telemetry.StartSpan(ctx, "service.venue.can_change")
	defer span.End()

	e, err := s.events.Get(eventID)
	if err != nil {
		return false, err
	}
	v, err := s.venues.Get(newVenueID)
	if err != nil {
		return false, err
	}
	if !v.Active {
		return false, nil
	}
	if v.Capacity < e.MaxCapacity || v.Capacity < e.ConfirmedCount() {
		return false, nil
	}
	return v.IsAvailable(e.StartTime, e.EndTime, e.ID), nil
}

// ChangeEventVenue atomically moves the event's booking to a new venue.
// The old booking is restored when the new one cannot be placed, so a
// failed change never strands the event without a venue.
func (s *venueBookingService) ChangeEventVenue(ctx context.Context, eventID, newVenueID string) (*dto.VenueBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.change")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID(newVenueID, domain.ErrInvalidVenueID); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("new_venue_id", newVenueID),
	)

	now := time.Now()
	var (
		booking   *domain.VenueBooking
		eventSnap *domain.Event
		oldSnap   *domain.Venue
		newSnap   *domain.Venue
	)

	err := s.events.Mutate(eventID, func(e *domain.Event) error {
		switch e.Status {
		case domain.EventStatusCancelled, domain.EventStatusCompleted, domain.EventStatusArchived:
			return domain.ErrEventStateConflict
		}

		place := func(oldVenue, newVenue *domain.Venue) error {
			if !newVenue.Active {
				return domain.ErrVenueInactive
			}
			if newVenue.Capacity < e.MaxCapacity || newVenue.Capacity < e.ConfirmedCount() {
				return domain.ErrCapacityExceeded
			}

			removed := false
			if oldVenue != nil {
				removed = oldVenue.RemoveBooking(e.ID)
			}

			b := newVenue.NewBooking(e.ID, e.StartTime, e.EndTime)
			if err := newVenue.AddBooking(b); err != nil {
				if removed {
					// Restore under the same critical section
					_ = oldVenue.AddBooking(oldVenue.NewBooking(e.ID, e.StartTime, e.EndTime))
				}
				return err
			}

			e.VenueID = newVenue.ID
			e.Touch(now)

			bc := *b
			booking = &bc
			eventSnap = e.Clone()
			if oldVenue != nil {
				oldSnap = oldVenue.Clone()
			}
			newSnap = newVenue.Clone()
			return nil
		}

		if e.VenueID == "" {
			return s.venues.Mutate(newVenueID, func(v *domain.Venue) error {
				return place(nil, v)
			})
		}
		if e.VenueID == newVenueID {
			return domain.ErrVenueAlreadyBooked
		}
		return s.venues.MutateTwo(e.VenueID, newVenueID, place)
	})
	if err != nil {
		if err == domain.ErrVenueUnavailable {
			metrics.RecordVenueConflict(ctx, newVenueID)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordVenueBooking(ctx, newVenueID)
	persistEvent(ctx, s.eventSaver, s.log, eventSnap)
	persistVenue(ctx, s.venueSaver, s.log, oldSnap)
	persistVenue(ctx, s.venueSaver, s.log, newSnap)

	return &dto.VenueBookingResponse{
		VenueID:      newVenueID,
		EventID:      eventID,
		StartTime:    booking.StartTime,
		EndTime:      booking.EndTime,
		BookingStart: booking.BookingStart,
		BookingEnd:   booking.BookingEnd,
	}, nil
}

// VenueConflicts returns a descriptive conflict list for a probe window
func (s *venueBookingService) VenueConflicts(ctx context.Context, venueID string, start, end time.Time) *dto.VenueConflictsResponse {
	_, span := telemetry.StartSpan(ctx, "service.venue.conflicts")
	defer span.End()

	resp := &dto.VenueConflictsResponse{VenueID: venueID, Conflicts: []string{}}

	v, err := s.venues.Get(venueID)
	if err != nil {
		resp.Conflicts = append(resp.Conflicts, "venue not found")
		return resp
	}
	if !v.Active {
		resp.Conflicts = append(resp.Conflicts, "venue is not active")
	}
	candidate := v.NewBooking("", start, end)
	for _, b := range v.Bookings {
		if b.Overlaps(candidate) {
			resp.Conflicts = append(resp.Conflicts, fmt.Sprintf(
				"already booked by event %s from %s to %s (including buffers)",
				b.EventID,
				b.BookingStart.Format(time.RFC3339), b.BookingEnd.Format(time.RFC3339),
			))
		}
	}
	return resp
}

// RebookForReschedule replaces the event's booking for a new time range.
// The caller holds the event critical section; the whole reschedule fails
// when the venue cannot take the new interval, with the original booking
// left in place.
func (s *venueBookingService) RebookForReschedule(e *domain.Event, newStart, newEnd time.Time) (*domain.Venue, error) {
	if e.VenueID == "" {
		return nil, nil
	}
	var snapshot *domain.Venue
	err := s.venues.Mutate(e.VenueID, func(v *domain.Venue) error {
		if !v.IsAvailable(newStart, newEnd, e.ID) {
			return domain.ErrVenueUnavailable
		}
		v.RemoveBooking(e.ID)
		if err := v.AddBooking(v.NewBooking(e.ID, newStart, newEnd)); err != nil {
			return err
		}
		snapshot = v.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// persistVenue writes a snapshot without failing the operation
func persistVenue(ctx context.Context, saver VenueSaver, log *logger.Logger, v *domain.Venue) {
	if saver == nil || v == nil {
		return
	}
	if err := saver.SaveVenue(ctx, v); err != nil {
		log.Warn("venue snapshot save failed",
			zap.String("venue_id", v.ID),
			zap.Error(err))
	}
}
