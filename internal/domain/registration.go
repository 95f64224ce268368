package domain

import (
	"time"
)

// RegistrationStatus represents the status of a registration
type RegistrationStatus string

const (
	RegistrationStatusPending    RegistrationStatus = "pending"
	RegistrationStatusConfirmed  RegistrationStatus = "confirmed"
	RegistrationStatusWaitlisted RegistrationStatus = "waitlisted"
	RegistrationStatusCancelled  RegistrationStatus = "cancelled"
)

// IsValid checks if the status is a valid RegistrationStatus
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusConfirmed,
		RegistrationStatusWaitlisted, RegistrationStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RegistrationStatus
func (s RegistrationStatus) String() string {
	return string(s)
}

// Registration is one attendee's relationship to one event. A cancelled
// registration is terminal; re-registering creates a new one.
type Registration struct {
	ID         string             `json:"id"`
	AttendeeID string             `json:"attendee_id"`
	EventID    string             `json:"event_id"`
	Status     RegistrationStatus `json:"status"`

	// WaitlistPosition is the 1-based rank on the waitlist, 0 when the
	// registration is not waitlisted. Positions stay dense.
	WaitlistPosition int `json:"waitlist_position"`

	RegisteredAt time.Time `json:"registered_at"`

	Attended   bool       `json:"attended"`
	AttendedAt *time.Time `json:"attended_at,omitempty"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

// NewRegistration creates a pending registration; admission decides whether
// it confirms or waitlists
func NewRegistration(id, attendeeID, eventID string, now time.Time) *Registration {
	return &Registration{
		ID:           id,
		AttendeeID:   attendeeID,
		EventID:      eventID,
		Status:       RegistrationStatusPending,
		RegisteredAt: now,
	}
}

// IsConfirmed checks if the registration counts against event capacity
func (r *Registration) IsConfirmed() bool {
	return r.Status == RegistrationStatusConfirmed
}

// IsWaitlisted checks if the registration is queued for promotion
func (r *Registration) IsWaitlisted() bool {
	return r.Status == RegistrationStatusWaitlisted
}

// IsCancelled checks if the registration reached its terminal state
func (r *Registration) IsCancelled() bool {
	return r.Status == RegistrationStatusCancelled
}

// Confirm admits the registration against capacity
func (r *Registration) Confirm() error {
	if r.IsCancelled() {
		return ErrRegistrationCancelled
	}
	r.Status = RegistrationStatusConfirmed
	r.WaitlistPosition = 0
	return nil
}

// MoveToWaitlist parks the registration at the given 1-based position
func (r *Registration) MoveToWaitlist(position int) error {
	if r.IsCancelled() {
		return ErrRegistrationCancelled
	}
	r.Status = RegistrationStatusWaitlisted
	r.WaitlistPosition = position
	return nil
}

// Cancel marks the registration cancelled. Cancellation is terminal.
func (r *Registration) Cancel(reason string, now time.Time) error {
	if r.IsCancelled() {
		return ErrRegistrationCancelled
	}
	r.Status = RegistrationStatusCancelled
	r.WaitlistPosition = 0
	r.CancellationReason = reason
	r.CancelledAt = &now
	return nil
}

// MarkAttended records check-in for a confirmed registration
func (r *Registration) MarkAttended(now time.Time) error {
	if !r.IsConfirmed() {
		return ErrRegistrationNotConfirmed
	}
	r.Attended = true
	r.AttendedAt = &now
	return nil
}
