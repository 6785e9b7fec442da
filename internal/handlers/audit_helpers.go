package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"messaging-service/internal/middleware"
	"messaging-service/internal/telemetry"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func emitAudit(c *gin.Context, audit *telemetry.AuditEmitter, level, text string) {
	if audit == nil {
		return
	}
	var userID *string
	if id := middleware.UserID(c); id != "" {
		userID = &id
	}
	audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userID)
}

func (h *RoomHandler) emitAudit(c *gin.Context, level, text string) {
	emitAudit(c, h.audit, level, text)
}

func (h *NotificationHandler) emitAudit(c *gin.Context, level, text string) {
	emitAudit(c, h.audit, level, text)
}
