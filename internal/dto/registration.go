package dto

import (
	"time"

	"github.com/seulch/campushub/internal/domain"
)

// CancelRegistrationRequest represents a request to cancel a registration
type CancelRegistrationRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RegistrationResponse represents a registration in API responses
type RegistrationResponse struct {
	ID               string     `json:"id"`
	AttendeeID       string     `json:"attendee_id"`
	EventID          string     `json:"event_id"`
	Status           string     `json:"status"`
	WaitlistPosition int        `json:"waitlist_position,omitempty"`
	RegisteredAt     time.Time  `json:"registered_at"`
	Attended         bool       `json:"attended"`
	AttendedAt       *time.Time `json:"attended_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}

// FromRegistration converts a domain Registration to a RegistrationResponse
func FromRegistration(r *domain.Registration) *RegistrationResponse {
	return &RegistrationResponse{
		ID:               r.ID,
		AttendeeID:       r.AttendeeID,
		EventID:          r.EventID,
		Status:           string(r.Status),
		WaitlistPosition: r.WaitlistPosition,
		RegisteredAt:     r.RegisteredAt,
		Attended:         r.Attended,
		AttendedAt:       r.AttendedAt,
		CancelledAt:      r.CancelledAt,
	}
}

// CancelRegistrationResponse reports a cancellation together with the
// waitlist promotions it triggered
type CancelRegistrationResponse struct {
	Cancelled     *RegistrationResponse   `json:"cancelled"`
	Promoted      []*RegistrationResponse `json:"promoted,omitempty"`
	PromotedCount int                     `json:"promoted_count"`
}

// WaitlistStatsResponse summarizes one event's waitlist
type WaitlistStatsResponse struct {
	EventID         string `json:"event_id"`
	ConfirmedCount  int    `json:"confirmed_count"`
	MaxCapacity     int    `json:"max_capacity"`
	ActiveCount     int    `json:"active_count"`
	TotalWaitlisted int    `json:"total_waitlisted"`
	CancelledCount  int    `json:"cancelled_count"`
	NextPosition    int    `json:"next_position"`
}
