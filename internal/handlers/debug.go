package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibechat-service/internal/middleware"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRouter, audit Auditor, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if audit == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		audit.Emit(c.Request.Context(), "audit_test", "audit test", c.GetString(middleware.UserIDKey), map[string]string{
			"request_id": c.GetString(middleware.RequestIDKey),
		})
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
