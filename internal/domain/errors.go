package domain

import "errors"

// Domain errors
var (
	// Validation errors
	ErrInvalidEventID         = errors.New("invalid event id")
	ErrInvalidAttendeeID      = errors.New("invalid attendee id")
	ErrInvalidOrganizerID     = errors.New("invalid organizer id")
	ErrInvalidRegistrationID  = errors.New("invalid registration id")
	ErrInvalidVenueID         = errors.New("invalid venue id")
	ErrInvalidTitle           = errors.New("event title must not be empty")
	ErrInvalidDescription     = errors.New("event description too long")
	ErrInvalidEventType       = errors.New("invalid event type")
	ErrInvalidEventStatus     = errors.New("invalid event status")
	ErrInvalidCapacity        = errors.New("capacity must be greater than zero")
	ErrInvalidTimeRange       = errors.New("end time must be after start time")
	ErrStartTimeInPast        = errors.New("start time must be in the future")
	ErrEventTooShort          = errors.New("event duration below minimum")
	ErrEventTooLong           = errors.New("event duration above maximum")
	ErrInvalidDeadline        = errors.New("registration deadline must be before event start")
	ErrDeadlineNotLater       = errors.New("new deadline must be after the current deadline")

	// State conflict errors
	ErrEventStateConflict       = errors.New("operation not allowed in current event status")
	ErrRegistrationCancelled    = errors.New("registration is already cancelled")
	ErrRegistrationNotConfirmed = errors.New("registration is not confirmed")
	ErrAlreadyRegistered        = errors.New("attendee already has an active registration for this event")
	ErrAttendeeTimeConflict     = errors.New("attendee has an overlapping registration for another event")
	ErrOrganizerConflict        = errors.New("organizer has an overlapping event")
	ErrRegistrationWindowClosed = errors.New("registration is closed for this event")
	ErrVenueAlreadyBooked       = errors.New("event already holds a booking for this venue")

	// Capacity / availability errors
	ErrCapacityExceeded    = errors.New("event capacity exceeds venue capacity")
	ErrCapacityBelowUsage  = errors.New("capacity cannot drop below confirmed registrations")
	ErrVenueUnavailable    = errors.New("venue is unavailable for the requested interval")
	ErrVenueInactive       = errors.New("venue is not active")

	// Not found errors
	ErrEventNotFound        = errors.New("event not found")
	ErrVenueNotFound        = errors.New("venue not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrVenueNotFound) ||
		errors.Is(err, ErrRegistrationNotFound)
}

// IsValidationError checks if the error is an invalid-argument error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidAttendeeID) ||
		errors.Is(err, ErrInvalidOrganizerID) ||
		errors.Is(err, ErrInvalidRegistrationID) ||
		errors.Is(err, ErrInvalidVenueID) ||
		errors.Is(err, ErrInvalidTitle) ||
		errors.Is(err, ErrInvalidDescription) ||
		errors.Is(err, ErrInvalidEventType) ||
		errors.Is(err, ErrInvalidEventStatus) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrStartTimeInPast) ||
		errors.Is(err, ErrEventTooShort) ||
		errors.Is(err, ErrEventTooLong) ||
		errors.Is(err, ErrInvalidDeadline) ||
		errors.Is(err, ErrDeadlineNotLater)
}

// IsConflictError checks if the error is a state conflict the caller must
// re-fetch state to resolve
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEventStateConflict) ||
		errors.Is(err, ErrRegistrationCancelled) ||
		errors.Is(err, ErrRegistrationNotConfirmed) ||
		errors.Is(err, ErrAlreadyRegistered) ||
		errors.Is(err, ErrAttendeeTimeConflict) ||
		errors.Is(err, ErrOrganizerConflict) ||
		errors.Is(err, ErrRegistrationWindowClosed) ||
		errors.Is(err, ErrVenueAlreadyBooked) ||
		errors.Is(err, ErrCapacityBelowUsage)
}

// IsUnavailableError checks if the error is an expected, recoverable
// capacity or availability condition
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrVenueUnavailable) ||
		errors.Is(err, ErrVenueInactive)
}
