package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vibechat-service/internal/observability"
)

const RequestIDKey = "request_id"

// RequestID propagates X-Request-Id, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := observability.RequestIDFromRequest(c.Request)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set("X-Request-Id", id)
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
