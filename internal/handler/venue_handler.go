package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seulch/campushub/internal/dto"
	"github.com/seulch/campushub/internal/service"
	"github.com/seulch/campushub/pkg/response"
	"github.com/seulch/campushub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// VenueHandler handles venue catalog and booking HTTP requests
type VenueHandler struct {
	venueService service.VenueBookingService
}

// NewVenueHandler creates a new venue handler
func NewVenueHandler(venueService service.VenueBookingService) *VenueHandler {
	return &VenueHandler{venueService: venueService}
}

// CreateVenue handles POST /venues
func (h *VenueHandler) CreateVenue(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.venueService.CreateVenue(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "create_venue", err)
		return
	}
	span.SetAttributes(attribute.String("venue_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetVenue handles GET /venues/:id
func (h *VenueHandler) GetVenue(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.venueService.GetVenue(ctx, c.Param("id"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "get_venue", err)
		return
	}
	response.Success(c, result)
}

// ListVenues handles GET /venues
func (h *VenueHandler) ListVenues(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	response.Success(c, h.venueService.ListVenues(ctx))
}

// DeactivateVenue handles DELETE /venues/:id
func (h *VenueHandler) DeactivateVenue(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.deactivate")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	venueID := c.Param("id")
	span.SetAttributes(attribute.String("venue_id", venueID))

	if err := h.venueService.DeactivateVenue(ctx, venueID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "deactivate_venue", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"deactivated": true})
}

// FindAvailableVenues handles GET /venues/available
func (h *VenueHandler) FindAvailableVenues(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.find_available")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	start, end, ok := parseWindow(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid window")
		return
	}
	minCapacity := 0
	if raw := c.Query("min_capacity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			span.SetStatus(codes.Error, "invalid min_capacity")
			response.BadRequest(c, "min_capacity must be a non-negative integer")
			return
		}
		minCapacity = n
	}

	result, err := h.venueService.FindAvailableVenues(ctx, start, end, minCapacity)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "find_available_venues", err)
		return
	}
	response.Success(c, result)
}

// VenueConflicts handles GET /venues/:id/conflicts
func (h *VenueHandler) VenueConflicts(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.conflicts")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	start, end, ok := parseWindow(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid window")
		return
	}

	result := h.venueService.VenueConflicts(ctx, c.Param("id"), start, end)
	span.SetAttributes(attribute.Int("conflicts", len(result.Conflicts)))
	response.Success(c, result)
}

// BookVenue handles POST /events/:id/venue
func (h *VenueHandler) BookVenue(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.book")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")

	var req dto.BookVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("venue_id", req.VenueID),
	)

	result, err := h.venueService.BookVenueForEvent(ctx, eventID, req.VenueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "book_venue", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// ChangeVenue handles PUT /events/:id/venue
func (h *VenueHandler) ChangeVenue(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.change")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")

	var req dto.ChangeVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("new_venue_id", req.NewVenueID),
	)

	result, err := h.venueService.ChangeEventVenue(ctx, eventID, req.NewVenueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "change_venue", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ReleaseVenue handles DELETE /events/:id/venue
func (h *VenueHandler) ReleaseVenue(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.venue.release")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	released, err := h.venueService.CancelVenueBooking(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "release_venue", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"released": released})
}

// parseWindow reads the start/end RFC3339 query parameters
func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		response.BadRequest(c, "start must be an RFC3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		response.BadRequest(c, "end must be an RFC3339 timestamp")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
