package domain

import (
	"time"
)

// Venue is a physical space with capacity and mandatory setup/cleanup
// buffers. It owns its booking ledger.
type Venue struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Location           string    `json:"location"`
	Capacity           int       `json:"capacity"`
	SetupTimeMinutes   int       `json:"setup_time_minutes"`
	CleanupTimeMinutes int       `json:"cleanup_time_minutes"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`

	Bookings []*VenueBooking `json:"bookings"`
}

// VenueBooking blocks a venue for one event, including the venue's
// setup/cleanup buffers around the event's real time range.
type VenueBooking struct {
	EventID   string    `json:"event_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// BookingStart/BookingEnd are the buffer-inclusive bounds the
	// overlap check runs against.
	BookingStart time.Time `json:"booking_start"`
	BookingEnd   time.Time `json:"booking_end"`
}

// Overlaps tests half-open interval intersection with another booking
func (b *VenueBooking) Overlaps(other *VenueBooking) bool {
	return b.BookingStart.Before(other.BookingEnd) && other.BookingStart.Before(b.BookingEnd)
}

// OverlapsWindow tests half-open interval intersection with [start, end)
func (b *VenueBooking) OverlapsWindow(start, end time.Time) bool {
	return b.BookingStart.Before(end) && start.Before(b.BookingEnd)
}

// NewBooking builds a buffer-inclusive booking for the given event times
func (v *Venue) NewBooking(eventID string, start, end time.Time) *VenueBooking {
	return &VenueBooking{
		EventID:      eventID,
		StartTime:    start,
		EndTime:      end,
		BookingStart: start.Add(-time.Duration(v.SetupTimeMinutes) * time.Minute),
		BookingEnd:   end.Add(time.Duration(v.CleanupTimeMinutes) * time.Minute),
	}
}

// IsAvailable reports whether the buffer-inclusive interval for the given
// event times is free of overlaps. excludeEventID skips that event's own
// booking, so reschedules do not conflict with themselves.
func (v *Venue) IsAvailable(start, end time.Time, excludeEventID string) bool {
	candidate := v.NewBooking(excludeEventID, start, end)
	for _, b := range v.Bookings {
		if excludeEventID != "" && b.EventID == excludeEventID {
			continue
		}
		if b.Overlaps(candidate) {
			return false
		}
	}
	return true
}

// BookingFor returns the booking held by the given event, or nil
func (v *Venue) BookingFor(eventID string) *VenueBooking {
	for _, b := range v.Bookings {
		if b.EventID == eventID {
			return b
		}
	}
	return nil
}

// AddBooking appends a booking after a final overlap check
func (v *Venue) AddBooking(booking *VenueBooking) error {
	for _, b := range v.Bookings {
		if b.EventID == booking.EventID {
			return ErrVenueAlreadyBooked
		}
		if b.Overlaps(booking) {
			return ErrVenueUnavailable
		}
	}
	v.Bookings = append(v.Bookings, booking)
	return nil
}

// RemoveBooking drops the booking held by the given event, returning true
// when one was removed
func (v *Venue) RemoveBooking(eventID string) bool {
	for i, b := range v.Bookings {
		if b.EventID == eventID {
			v.Bookings = append(v.Bookings[:i], v.Bookings[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out of the store
func (v *Venue) Clone() *Venue {
	cp := *v
	cp.Bookings = make([]*VenueBooking, len(v.Bookings))
	for i, b := range v.Bookings {
		bc := *b
		cp.Bookings[i] = &bc
	}
	return &cp
}
