package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/seulch/campushub/internal/dto"
	"github.com/seulch/campushub/internal/service"
	"github.com/seulch/campushub/pkg/middleware"
	"github.com/seulch/campushub/pkg/response"
	"github.com/seulch/campushub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventHandler handles event and registration HTTP requests
type EventHandler struct {
	eventService    service.EventService
	waitlistService service.WaitlistService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService, waitlistService service.WaitlistService) *EventHandler {
	return &EventHandler{
		eventService:    eventService,
		waitlistService: waitlistService,
	}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	organizerID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "organizer identity required")
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("organizer_id", organizerID),
		attribute.String("event_type", req.Type),
	)

	result, err := h.eventService.CreateEvent(ctx, organizerID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "create_event", err)
		return
	}

	span.SetAttributes(attribute.String("event_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.eventService.GetEvent(ctx, c.Param("id"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "get_event", err)
		return
	}
	response.Success(c, result)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	response.Success(c, h.eventService.ListEvents(ctx))
}

// PublishEvent handles POST /events/:id/publish
func (h *EventHandler) PublishEvent(c *gin.Context) {
	h.transition(c, "handler.event.publish", "publish_event", h.eventService.PublishEvent)
}

// ActivateEvent handles POST /events/:id/activate
func (h *EventHandler) ActivateEvent(c *gin.Context) {
	h.transition(c, "handler.event.activate", "activate_event", h.eventService.ActivateEvent)
}

// CompleteEvent handles POST /events/:id/complete
func (h *EventHandler) CompleteEvent(c *gin.Context) {
	h.transition(c, "handler.event.complete", "complete_event", h.eventService.CompleteEvent)
}

// ArchiveEvent handles POST /events/:id/archive
func (h *EventHandler) ArchiveEvent(c *gin.Context) {
	h.transition(c, "handler.event.archive", "archive_event", h.eventService.ArchiveEvent)
}

func (h *EventHandler) transition(c *gin.Context, spanName, operation string, fn func(ctx context.Context, eventID string) (*dto.EventResponse, error)) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := fn(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, operation, err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// UpdateEvent handles PATCH /events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.eventService.UpdateEvent(ctx, eventID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "update_event", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CancelEvent handles POST /events/:id/cancel
func (h *EventHandler) CancelEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	var req dto.CancelEventRequest
	// Reason is optional, an empty body is fine
	_ = c.ShouldBindJSON(&req)

	result, err := h.eventService.CancelEvent(ctx, eventID, req.Reason)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "cancel_event", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// RescheduleEvent handles POST /events/:id/reschedule
func (h *EventHandler) RescheduleEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.reschedule")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	var req dto.RescheduleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.eventService.RescheduleEvent(ctx, eventID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "reschedule_event", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// DeleteEvent handles DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	if err := h.eventService.DeleteEvent(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "delete_event", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"deleted": true})
}

// RegisterAttendee handles POST /events/:id/registrations
func (h *EventHandler) RegisterAttendee(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.register")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	attendeeID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "attendee identity required")
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("attendee_id", attendeeID),
	)

	result, err := h.eventService.RegisterAttendee(ctx, eventID, attendeeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "register_attendee", err)
		return
	}
	span.SetAttributes(attribute.String("registration_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// CancelRegistration handles DELETE /events/:id/registrations/:registration_id
func (h *EventHandler) CancelRegistration(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.cancel_registration")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	registrationID := c.Param("registration_id")
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("registration_id", registrationID),
	)

	var req dto.CancelRegistrationRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.eventService.CancelRegistration(ctx, eventID, registrationID, req.Reason)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "cancel_registration", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ListRegistrations handles GET /events/:id/registrations
func (h *EventHandler) ListRegistrations(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list_registrations")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.eventService.ListRegistrations(ctx, c.Param("id"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "list_registrations", err)
		return
	}
	response.Success(c, result)
}

// MarkAttendance handles POST /events/:id/registrations/:registration_id/attendance
func (h *EventHandler) MarkAttendance(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.mark_attendance")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	registrationID := c.Param("registration_id")
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("registration_id", registrationID),
	)

	result, err := h.eventService.MarkAttendance(ctx, eventID, registrationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "mark_attendance", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// WaitlistStats handles GET /events/:id/waitlist
func (h *EventHandler) WaitlistStats(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.waitlist_stats")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.waitlistService.Statistics(ctx, c.Param("id"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "waitlist_stats", err)
		return
	}
	response.Success(c, result)
}
