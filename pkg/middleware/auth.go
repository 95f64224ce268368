package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/seulch/campushub/pkg/response"
)

const (
	// UserIDHeader carries the caller identity set by the gateway
	UserIDHeader = "X-User-ID"
	// ContextKeyUserID is the context key for the caller identity
	ContextKeyUserID = "user_id"
)

// UserIdentity extracts the caller identity from the X-User-ID header and
// stores it in the request context. Identity verification happens upstream;
// this service treats the ID as opaque.
func UserIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(UserIDHeader)); userID != "" {
			c.Set(ContextKeyUserID, userID)
		}
		c.Next()
	}
}

// RequireUserID aborts with 401 when no caller identity is present
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorBody("MISSING_USER_ID", "X-User-ID header is required"))
			return
		}
		c.Next()
	}
}

// GetUserID extracts the caller identity from gin context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
