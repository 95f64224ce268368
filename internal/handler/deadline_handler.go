package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/seulch/campushub/internal/dto"
	"github.com/seulch/campushub/internal/worker"
	"github.com/seulch/campushub/pkg/response"
	"github.com/seulch/campushub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DeadlineHandler exposes deadline sweep operations over HTTP
type DeadlineHandler struct {
	worker *worker.DeadlineWorker
}

// NewDeadlineHandler creates a new deadline handler
func NewDeadlineHandler(w *worker.DeadlineWorker) *DeadlineHandler {
	return &DeadlineHandler{worker: w}
}

// ExtendDeadline handles POST /events/:id/deadline/extend
func (h *DeadlineHandler) ExtendDeadline(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.deadline.extend")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")

	var req dto.ExtendDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.worker.ExtendDeadline(ctx, eventID, req.NewDeadline, req.Reason)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "extend_deadline", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ProcessDeadline handles POST /events/:id/deadline/process
func (h *DeadlineHandler) ProcessDeadline(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.deadline.process")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	if err := h.worker.ProcessEventImmediately(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, "process_deadline", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"processed": true})
}

// Statistics handles GET /deadlines/stats
func (h *DeadlineHandler) Statistics(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.deadline.stats")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	response.Success(c, h.worker.Statistics(ctx))
}
