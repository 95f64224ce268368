package domain

import (
	"time"
)

// EventStatus represents the lifecycle status of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusArchived  EventStatus = "archived"
)

// IsValid checks if the status is a valid EventStatus
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusActive,
		EventStatusCompleted, EventStatusCancelled, EventStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of EventStatus
func (s EventStatus) String() string {
	return string(s)
}

// EventType classifies an event for catalog purposes
type EventType string

const (
	EventTypeWorkshop   EventType = "workshop"
	EventTypeSeminar    EventType = "seminar"
	EventTypeConference EventType = "conference"
	EventTypeSocial     EventType = "social"
	EventTypeSports     EventType = "sports"
	EventTypeOther      EventType = "other"
)

// IsValid checks if the type is a known EventType
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeWorkshop, EventTypeSeminar, EventTypeConference,
		EventTypeSocial, EventTypeSports, EventTypeOther:
		return true
	}
	return false
}

// Duration limits enforced for every event
const (
	MinEventDuration = 15 * time.Minute
	MaxEventDuration = 12 * time.Hour
)

// allowedTransitions encodes the event state machine:
// draft -> published -> active -> completed, cancellation from any
// pre-completed state, archiving from the two terminal outcomes.
var allowedTransitions = map[EventStatus][]EventStatus{
	EventStatusDraft:     {EventStatusPublished, EventStatusCancelled},
	EventStatusPublished: {EventStatusActive, EventStatusCancelled},
	EventStatusActive:    {EventStatusCompleted, EventStatusCancelled},
	EventStatusCompleted: {EventStatusArchived},
	EventStatusCancelled: {EventStatusArchived},
	EventStatusArchived:  {},
}

// Event is the aggregate root for a campus event. It owns its confirmed
// registrations and its waitlist; both are destroyed with the event and
// never shared between events.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        EventType   `json:"type"`
	Status      EventStatus `json:"status"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	OrganizerID string      `json:"organizer_id"`
	VenueID     string      `json:"venue_id,omitempty"`
	MaxCapacity int         `json:"max_capacity"`

	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`

	// Confirmed holds registrations counted against MaxCapacity, in
	// admission order. Waitlist holds the FIFO promotion queue with
	// dense 1-based positions.
	Confirmed []*Registration `json:"confirmed_registrations"`
	Waitlist  []*Registration `json:"waitlist"`

	// TotalWaitlisted counts every registration ever enqueued;
	// WaitlistCancelled counts those cancelled while waitlisted.
	TotalWaitlisted   int `json:"total_waitlisted"`
	WaitlistCancelled int `json:"waitlist_cancelled"`

	// RegistrationClosed is set once the deadline sweep has processed
	// the deadline. Extending the deadline clears it again.
	RegistrationClosed bool `json:"registration_closed"`

	// DeadlineWarningSent tracks whether the pre-deadline warning went
	// out for the current deadline window.
	DeadlineWarningSent bool `json:"deadline_warning_sent"`

	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

// ConfirmedCount returns the number of registrations counted against capacity
func (e *Event) ConfirmedCount() int {
	return len(e.Confirmed)
}

// IsFull reports whether admission would exceed MaxCapacity
func (e *Event) IsFull() bool {
	return len(e.Confirmed) >= e.MaxCapacity
}

// CanTransitionTo checks the state machine for a legal transition
func (e *Event) CanTransitionTo(next EventStatus) bool {
	for _, s := range allowedTransitions[e.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the event to the next status or fails with a
// state conflict
func (e *Event) TransitionTo(next EventStatus, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidEventStatus
	}
	if !e.CanTransitionTo(next) {
		return ErrEventStateConflict
	}
	e.Status = next
	e.Touch(now)
	return nil
}

// IsRegistrationOpen reports whether new registrations are admitted.
// Admission requires a published or active event, an unclosed window and
// a deadline still in the future when one is set.
func (e *Event) IsRegistrationOpen(now time.Time) bool {
	if e.Status != EventStatusPublished && e.Status != EventStatusActive {
		return false
	}
	if e.RegistrationClosed {
		return false
	}
	if e.RegistrationDeadline != nil && !now.Before(*e.RegistrationDeadline) {
		return false
	}
	return true
}

// PromotionAllowed reports whether waitlist promotions may run. Promotions
// stop while the registration window is closed and between an elapsed
// deadline and the event start.
func (e *Event) PromotionAllowed(now time.Time) bool {
	if e.RegistrationClosed {
		return false
	}
	if e.RegistrationDeadline != nil &&
		!now.Before(*e.RegistrationDeadline) && now.Before(e.StartTime) {
		return false
	}
	return true
}

// ActiveRegistrationFor returns the attendee's non-cancelled registration,
// confirmed or waitlisted, or nil
func (e *Event) ActiveRegistrationFor(attendeeID string) *Registration {
	for _, r := range e.Confirmed {
		if r.AttendeeID == attendeeID && !r.IsCancelled() {
			return r
		}
	}
	for _, r := range e.Waitlist {
		if r.AttendeeID == attendeeID && !r.IsCancelled() {
			return r
		}
	}
	return nil
}

// FindRegistration looks up a registration by ID in either collection
func (e *Event) FindRegistration(registrationID string) *Registration {
	for _, r := range e.Confirmed {
		if r.ID == registrationID {
			return r
		}
	}
	for _, r := range e.Waitlist {
		if r.ID == registrationID {
			return r
		}
	}
	return nil
}

// RemoveConfirmed drops a registration from the confirmed set, returning
// true when it was present
func (e *Event) RemoveConfirmed(registrationID string) bool {
	for i, r := range e.Confirmed {
		if r.ID == registrationID {
			e.Confirmed = append(e.Confirmed[:i], e.Confirmed[i+1:]...)
			return true
		}
	}
	return false
}

// AttendeeRecipients collects attendee IDs of all confirmed and waitlisted
// registrations that are not cancelled. Used to build notification lists
// inside a store critical section.
func (e *Event) AttendeeRecipients() []string {
	ids := make([]string, 0, len(e.Confirmed)+len(e.Waitlist))
	for _, r := range e.Confirmed {
		if !r.IsCancelled() {
			ids = append(ids, r.AttendeeID)
		}
	}
	for _, r := range e.Waitlist {
		if !r.IsCancelled() {
			ids = append(ids, r.AttendeeID)
		}
	}
	return ids
}

// Overlaps reports whether the event's time range intersects [start, end)
func (e *Event) Overlaps(start, end time.Time) bool {
	return e.StartTime.Before(end) && start.Before(e.EndTime)
}

// Touch updates the last-modified timestamp
func (e *Event) Touch(now time.Time) {
	e.LastModified = now
}

// Clone returns a deep copy safe to hand out of the store
func (e *Event) Clone() *Event {
	cp := *e
	if e.RegistrationDeadline != nil {
		d := *e.RegistrationDeadline
		cp.RegistrationDeadline = &d
	}
	cp.Confirmed = make([]*Registration, len(e.Confirmed))
	for i, r := range e.Confirmed {
		rc := *r
		cp.Confirmed[i] = &rc
	}
	cp.Waitlist = make([]*Registration, len(e.Waitlist))
	for i, r := range e.Waitlist {
		rc := *r
		cp.Waitlist[i] = &rc
	}
	return &cp
}
