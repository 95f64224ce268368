package dto

import (
	"time"

	"github.com/seulch/campushub/internal/domain"
)

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Title                string     `json:"title" binding:"required"`
	Description          string     `json:"description,omitempty"`
	Type                 string     `json:"type" binding:"required"`
	StartTime            time.Time  `json:"start_time" binding:"required"`
	EndTime              time.Time  `json:"end_time" binding:"required"`
	MaxCapacity          int        `json:"max_capacity"`
	VenueID              string     `json:"venue_id,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
}

// UpdateEventRequest represents a partial update of event metadata.
// Nil fields are left untouched.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Type        *string `json:"type,omitempty"`
	MaxCapacity *int    `json:"max_capacity,omitempty"`
}

// RescheduleEventRequest represents a request to move an event to a new
// time range
type RescheduleEventRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Reason    string    `json:"reason,omitempty"`
}

// CancelEventRequest represents a request to cancel an event
type CancelEventRequest struct {
	Reason string `json:"reason,omitempty"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	Type                 string     `json:"type"`
	Status               string     `json:"status"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              time.Time  `json:"end_time"`
	OrganizerID          string     `json:"organizer_id"`
	VenueID              string     `json:"venue_id,omitempty"`
	MaxCapacity          int        `json:"max_capacity"`
	ConfirmedCount       int        `json:"confirmed_count"`
	WaitlistCount        int        `json:"waitlist_count"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	RegistrationClosed   bool       `json:"registration_closed"`
	CreatedAt            time.Time  `json:"created_at"`
	LastModified         time.Time  `json:"last_modified"`
}

// FromEvent converts a domain Event to an EventResponse
func FromEvent(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		Type:                 string(e.Type),
		Status:               string(e.Status),
		StartTime:            e.StartTime,
		EndTime:              e.EndTime,
		OrganizerID:          e.OrganizerID,
		VenueID:              e.VenueID,
		MaxCapacity:          e.MaxCapacity,
		ConfirmedCount:       e.ConfirmedCount(),
		WaitlistCount:        len(e.Waitlist),
		RegistrationDeadline: e.RegistrationDeadline,
		RegistrationClosed:   e.RegistrationClosed,
		CreatedAt:            e.CreatedAt,
		LastModified:         e.LastModified,
	}
}
