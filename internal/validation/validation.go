package validation

import (
	"strings"
	"time"

	"github.com/seulch/campushub/internal/domain"
)

// Field limits for event metadata
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// ValidateTitle checks that a title is non-blank and within limits
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" || len(trimmed) > MaxTitleLength {
		return domain.ErrInvalidTitle
	}
	return nil
}

// ValidateDescription checks the description length
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return domain.ErrInvalidDescription
	}
	return nil
}

// ValidateCapacity checks that a capacity is positive
func ValidateCapacity(capacity int) error {
	if capacity <= 0 {
		return domain.ErrInvalidCapacity
	}
	return nil
}

// ValidateEventType checks the type against the known set
func ValidateEventType(t domain.EventType) error {
	if !t.IsValid() {
		return domain.ErrInvalidEventType
	}
	return nil
}

// ValidateTimeRange checks that both times are set and end follows start
func ValidateTimeRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.ErrInvalidTimeRange
	}
	if !end.After(start) {
		return domain.ErrInvalidTimeRange
	}
	return nil
}

// ValidateFutureStart checks that the start time has not already passed
func ValidateFutureStart(start, now time.Time) error {
	if !start.After(now) {
		return domain.ErrStartTimeInPast
	}
	return nil
}

// ValidateDeadline checks that a registration deadline precedes the start
func ValidateDeadline(deadline *time.Time, start time.Time) error {
	if deadline == nil {
		return nil
	}
	if deadline.IsZero() || !deadline.Before(start) {
		return domain.ErrInvalidDeadline
	}
	return nil
}

// ValidateID checks that an identifier is non-blank
func ValidateID(id string, sentinel error) error {
	if strings.TrimSpace(id) == "" {
		return sentinel
	}
	return nil
}
