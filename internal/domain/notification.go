package domain

// NotificationKind classifies outbound attendee notifications
type NotificationKind string

const (
	NotificationWaitlisted       NotificationKind = "waitlisted"
	NotificationPromoted         NotificationKind = "promoted"
	NotificationDeadlineWarning  NotificationKind = "deadline_warning"
	NotificationDeadlineClosed   NotificationKind = "registration_closed"
	NotificationDeadlineExtended NotificationKind = "deadline_extended"
	NotificationEventCancelled   NotificationKind = "event_cancelled"
	NotificationEventRescheduled NotificationKind = "event_rescheduled"
)

// Notification is a pending fire-and-forget message to a set of attendees.
// Services build these inside store critical sections and deliver them
// after the lock is released.
type Notification struct {
	Message    string           `json:"message"`
	Recipients []string         `json:"recipients"`
	Kind       NotificationKind `json:"kind"`
}
