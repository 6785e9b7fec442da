package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/middleware"
	"messaging-service/internal/notify"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// NotificationHandler serves the admin push-token registry and the bulk
// notification entry point used by the dashboard.
type NotificationHandler struct {
	users   repositories.UserRepository
	gateway notify.Gateway
	audit   *telemetry.AuditEmitter
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(users repositories.UserRepository, gateway notify.Gateway, audit *telemetry.AuditEmitter) *NotificationHandler {
	return &NotificationHandler{users: users, gateway: gateway, audit: audit}
}

// RecordToken upserts the caller's push-notification token.
func (h *NotificationHandler) RecordToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := middleware.UserID(c)
	if err := h.users.RecordAdminToken(c.Request.Context(), adminID, req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record token"})
		return
	}

	h.emitAudit(c, "info", "admin token recorded")
	c.Status(http.StatusNoContent)
}

// ListTokens returns every registered admin token.
func (h *NotificationHandler) ListTokens(c *gin.Context) {
	tokens, err := h.users.ListAdminTokens(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// SendBulk pushes a notification to every registered admin token and
// reports per-token outcomes.
func (h *NotificationHandler) SendBulk(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := h.users.ListAdminTokens(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tokens"})
		return
	}
	if len(tokens) == 0 {
		c.JSON(http.StatusOK, gin.H{"sent": 0, "failed": 0})
		return
	}

	results, err := h.gateway.SendBulk(c.Request.Context(), tokens, req.Title, req.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send notifications"})
		return
	}

	sent, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else {
			sent++
		}
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent, "failed": failed})
}
