package domain

import (
	"testing"
	"time"
)

func testVenue() *Venue {
	return &Venue{
		ID:                 "v1",
		Name:               "Lecture Hall A",
		Capacity:           100,
		SetupTimeMinutes:   15,
		CleanupTimeMinutes: 15,
		Active:             true,
	}
}

func TestVenue_NewBooking_IncludesBuffers(t *testing.T) {
	v := testVenue()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	b := v.NewBooking("e1", start, end)

	wantStart := time.Date(2026, 9, 1, 9, 45, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 9, 1, 12, 15, 0, 0, time.UTC)
	if !b.BookingStart.Equal(wantStart) {
		t.Errorf("BookingStart = %v, want %v", b.BookingStart, wantStart)
	}
	if !b.BookingEnd.Equal(wantEnd) {
		t.Errorf("BookingEnd = %v, want %v", b.BookingEnd, wantEnd)
	}
}

func TestVenue_IsAvailable_BufferOverlap(t *testing.T) {
	// A 10:00-12:00 event with 15-minute buffers blocks 09:45-12:15
	v := testVenue()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	if err := v.AddBooking(v.NewBooking("e1", start, start.Add(2*time.Hour))); err != nil {
		t.Fatalf("AddBooking: %v", err)
	}

	day := func(h, m int) time.Time {
		return time.Date(2026, 9, 1, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		// 12:10 event start means a 11:55 booking start, inside the
		// existing 09:45-12:15 window
		{"cleanup buffer collision", day(12, 10), day(13, 0), false},
		// 12:30 event start keeps its setup buffer clear of 12:15
		{"just past the buffers", day(12, 30), day(13, 30), true},
		{"before with clearance", day(8, 0), day(9, 15), true},
		{"setup buffer collision before", day(8, 0), day(9, 45), false},
		{"fully inside", day(10, 30), day(11, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.IsAvailable(tt.start, tt.end, ""); got != tt.want {
				t.Errorf("IsAvailable(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestVenue_IsAvailable_ExcludesOwnBooking(t *testing.T) {
	v := testVenue()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	if err := v.AddBooking(v.NewBooking("e1", start, start.Add(2*time.Hour))); err != nil {
		t.Fatalf("AddBooking: %v", err)
	}

	// The same event probing a shifted window must not conflict with itself
	if !v.IsAvailable(start.Add(time.Hour), start.Add(3*time.Hour), "e1") {
		t.Error("event should not conflict with its own booking")
	}
	if v.IsAvailable(start.Add(time.Hour), start.Add(3*time.Hour), "") {
		t.Error("other events must still see the booking")
	}
}

func TestVenue_AddBooking_RejectsOverlapAndDuplicate(t *testing.T) {
	v := testVenue()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	if err := v.AddBooking(v.NewBooking("e1", start, start.Add(time.Hour))); err != nil {
		t.Fatalf("AddBooking: %v", err)
	}

	if err := v.AddBooking(v.NewBooking("e1", start.Add(6*time.Hour), start.Add(7*time.Hour))); err != ErrVenueAlreadyBooked {
		t.Errorf("duplicate event booking: got %v, want ErrVenueAlreadyBooked", err)
	}
	if err := v.AddBooking(v.NewBooking("e2", start.Add(30*time.Minute), start.Add(2*time.Hour))); err != ErrVenueUnavailable {
		t.Errorf("overlapping booking: got %v, want ErrVenueUnavailable", err)
	}
	if err := v.AddBooking(v.NewBooking("e3", start.Add(4*time.Hour), start.Add(5*time.Hour))); err != nil {
		t.Errorf("disjoint booking rejected: %v", err)
	}
}

func TestVenue_RemoveBooking(t *testing.T) {
	v := testVenue()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	_ = v.AddBooking(v.NewBooking("e1", start, start.Add(time.Hour)))

	if !v.RemoveBooking("e1") {
		t.Error("expected booking to be removed")
	}
	if v.RemoveBooking("e1") {
		t.Error("second removal should report false")
	}
	if len(v.Bookings) != 0 {
		t.Errorf("bookings left: %d", len(v.Bookings))
	}
}
