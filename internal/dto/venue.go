package dto

import (
	"time"

	"github.com/seulch/campushub/internal/domain"
)

// CreateVenueRequest represents a request to add a venue to the catalog
type CreateVenueRequest struct {
	Name               string `json:"name" binding:"required"`
	Location           string `json:"location,omitempty"`
	Capacity           int    `json:"capacity" binding:"required,min=1"`
	SetupTimeMinutes   int    `json:"setup_time_minutes"`
	CleanupTimeMinutes int    `json:"cleanup_time_minutes"`
}

// BookVenueRequest represents a request to book a venue for an event
type BookVenueRequest struct {
	VenueID string `json:"venue_id" binding:"required"`
}

// ChangeVenueRequest represents a request to move an event to another venue
type ChangeVenueRequest struct {
	NewVenueID string `json:"new_venue_id" binding:"required"`
}

// VenueBookingResponse represents a placed booking
type VenueBookingResponse struct {
	VenueID      string    `json:"venue_id"`
	EventID      string    `json:"event_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	BookingStart time.Time `json:"booking_start"`
	BookingEnd   time.Time `json:"booking_end"`
}

// VenueResponse represents a venue in API responses
type VenueResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Location           string    `json:"location,omitempty"`
	Capacity           int       `json:"capacity"`
	SetupTimeMinutes   int       `json:"setup_time_minutes"`
	CleanupTimeMinutes int       `json:"cleanup_time_minutes"`
	Active             bool      `json:"active"`
	BookingCount       int       `json:"booking_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// FromVenue converts a domain Venue to a VenueResponse
func FromVenue(v *domain.Venue) *VenueResponse {
	return &VenueResponse{
		ID:                 v.ID,
		Name:               v.Name,
		Location:           v.Location,
		Capacity:           v.Capacity,
		SetupTimeMinutes:   v.SetupTimeMinutes,
		CleanupTimeMinutes: v.CleanupTimeMinutes,
		Active:             v.Active,
		BookingCount:       len(v.Bookings),
		CreatedAt:          v.CreatedAt,
	}
}

// VenueConflictsResponse lists descriptive conflicts for a probe window
type VenueConflictsResponse struct {
	VenueID   string   `json:"venue_id"`
	Conflicts []string `json:"conflicts"`
}
