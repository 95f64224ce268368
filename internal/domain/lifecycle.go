package domain

import (
	"fmt"
	"time"
)

// LifecycleEventType labels messages published when an event or a
// registration changes state
type LifecycleEventType string

const (
	LifecycleEventCreated          LifecycleEventType = "event.created"
	LifecycleEventPublished        LifecycleEventType = "event.published"
	LifecycleEventCancelled        LifecycleEventType = "event.cancelled"
	LifecycleEventRescheduled      LifecycleEventType = "event.rescheduled"
	LifecycleRegistrationCreated   LifecycleEventType = "registration.created"
	LifecycleRegistrationPromoted  LifecycleEventType = "registration.promoted"
	LifecycleRegistrationCancelled LifecycleEventType = "registration.cancelled"
	LifecycleDeadlineClosed        LifecycleEventType = "deadline.closed"
	LifecycleDeadlineExtended      LifecycleEventType = "deadline.extended"
)

// LifecycleEvent is the envelope published to the message broker for
// downstream consumers (reporting, audit)
type LifecycleEvent struct {
	EventID       string             `json:"event_id"`
	Type          LifecycleEventType `json:"type"`
	CampusEventID string             `json:"campus_event_id"`
	Payload       interface{}        `json:"payload,omitempty"`
	OccurredAt    time.Time          `json:"occurred_at"`
	Version       string             `json:"version"`
}

// NewLifecycleEvent builds an envelope for the given campus event
func NewLifecycleEvent(t LifecycleEventType, campusEventID, envelopeID string, payload interface{}) *LifecycleEvent {
	return &LifecycleEvent{
		EventID:       envelopeID,
		Type:          t,
		CampusEventID: campusEventID,
		Payload:       payload,
		OccurredAt:    time.Now(),
		Version:       "1.0",
	}
}

// Key returns the partition key; all messages for one campus event stay
// ordered on one partition
func (e *LifecycleEvent) Key() string {
	return fmt.Sprintf("event:%s", e.CampusEventID)
}
