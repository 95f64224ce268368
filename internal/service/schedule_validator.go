package service

import (
	"fmt"
	"time"

	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/internal/store"
)

// ScheduleValidator checks event durations and organizer schedules against
// the tracked event set
type ScheduleValidator interface {
	// ValidateEventDuration checks time-range validity and duration bounds
	ValidateEventDuration(start, end time.Time) error

	// IsOrganizerAvailable reports whether the organizer has no overlapping
	// event in [start, end). excludeEventID skips that event itself.
	IsOrganizerAvailable(organizerID string, start, end time.Time, excludeEventID string) bool

	// DetectConflicts returns descriptions of the organizer's overlapping
	// events, empty when the slot is free
	DetectConflicts(organizerID string, start, end time.Time, excludeEventID string) []string
}

// scheduleValidator implements ScheduleValidator over the event store
type scheduleValidator struct {
	events *store.EventStore
}

// NewScheduleValidator creates a schedule validator
func NewScheduleValidator(events *store.EventStore) ScheduleValidator {
	return &scheduleValidator{events: events}
}

// ValidateEventDuration checks time-range validity and duration bounds
func (v *scheduleValidator) ValidateEventDuration(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return domain.ErrInvalidTimeRange
	}
	d := end.Sub(start)
	if d < domain.MinEventDuration {
		return domain.ErrEventTooShort
	}
	if d > domain.MaxEventDuration {
		return domain.ErrEventTooLong
	}
	return nil
}

// IsOrganizerAvailable reports whether the organizer has no overlapping
// event in [start, end)
func (v *scheduleValidator) IsOrganizerAvailable(organizerID string, start, end time.Time, excludeEventID string) bool {
	return len(v.DetectConflicts(organizerID, start, end, excludeEventID)) == 0
}

// DetectConflicts scans the organizer's non-terminal events for time
// overlap. An overlap is a conflict whether or not either event has a
// venue; two gatherings cannot share one host.
func (v *scheduleValidator) DetectConflicts(organizerID string, start, end time.Time, excludeEventID string) []string {
	var conflicts []string
	for _, e := range v.events.List() {
		if e.OrganizerID != organizerID || e.ID == excludeEventID {
			continue
		}
		switch e.Status {
		case domain.EventStatusCancelled, domain.EventStatusCompleted, domain.EventStatusArchived:
			continue
		}
		if e.Overlaps(start, end) {
			conflicts = append(conflicts, fmt.Sprintf(
				"event %q (%s) runs %s to %s",
				e.Title, e.ID,
				e.StartTime.Format(time.RFC3339), e.EndTime.Format(time.RFC3339),
			))
		}
	}
	return conflicts
}
