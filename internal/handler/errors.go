package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/internal/metrics"
	"github.com/seulch/campushub/pkg/response"
)

// handleError maps domain errors onto HTTP status codes. Validation errors
// are the caller's fault, conflicts need a state re-fetch, capacity and
// availability misses are expected outcomes rather than failures.
func handleError(c *gin.Context, operation string, err error) {
	switch {
	case domain.IsValidationError(err):
		metrics.RecordError(c.Request.Context(), "validation", operation)
		response.BadRequest(c, err.Error())
	case domain.IsNotFoundError(err):
		metrics.RecordError(c.Request.Context(), "not_found", operation)
		response.NotFound(c, err.Error())
	case domain.IsConflictError(err):
		metrics.RecordError(c.Request.Context(), "conflict", operation)
		response.Conflict(c, err.Error())
	case domain.IsUnavailableError(err):
		metrics.RecordError(c.Request.Context(), "unavailable", operation)
		response.UnprocessableEntity(c, "UNAVAILABLE", err.Error())
	default:
		metrics.RecordError(c.Request.Context(), "internal", operation)
		response.InternalError(c, err)
	}
}
