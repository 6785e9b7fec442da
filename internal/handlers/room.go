package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/middleware"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

const (
	roomsPageSize    = 6
	messagesPageSize = 15
)

// RoomHandler serves the room and message HTTP endpoints.
type RoomHandler struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	statuses repositories.DeliveryStatusRepository
	audit    *telemetry.AuditEmitter
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(
	rooms repositories.RoomRepository,
	messages repositories.MessageRepository,
	statuses repositories.DeliveryStatusRepository,
	audit *telemetry.AuditEmitter,
) *RoomHandler {
	return &RoomHandler{rooms: rooms, messages: messages, statuses: statuses, audit: audit}
}

// CreateRoom creates or returns the existing room between the caller and
// the peer, with the peer's profile attached.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		PeerID string `json:"peer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	room, err := h.rooms.CreateOrGetRoom(c.Request.Context(), userID, req.PeerID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidParticipants) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot create a room with yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}

	h.emitAudit(c, "info", "room created")
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// ListRooms returns a page of the caller's rooms with peer profile, unseen
// counter and last-message view, most recently active first.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID := middleware.UserID(c)
	page := pageParam(c)
	offset := (page - 1) * roomsPageSize

	rooms, err := h.rooms.ListRoomSummaries(c.Request.Context(), userID, roomsPageSize, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms":    rooms,
		"nextPage": nextPage(page, len(rooms), roomsPageSize),
	})
}

// GetRoom returns the peer-profile view of one room. A room the caller does
// not belong to is reported as not found.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	room, err := h.rooms.GetRoom(c.Request.Context(), roomID, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// ListMessages returns a most-recent-first page of a room's messages. A
// non-participant gets an empty page, not an error.
func (h *RoomHandler) ListMessages(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID := middleware.UserID(c)
	page := pageParam(c)
	offset := (page - 1) * messagesPageSize

	msgs, err := h.messages.ListRoomMessages(c.Request.Context(), roomID, userID, messagesPageSize, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
		"nextPage": nextPage(page, len(msgs), messagesPageSize),
	})
}

// PostMessage persists a message through the HTTP surface. Realtime clients
// use the websocket path instead; this exists for clients that have no open
// socket.
func (h *RoomHandler) PostMessage(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID := middleware.UserID(c)
	member, err := h.rooms.IsParticipant(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	var req struct {
		Type     models.MessageType `json:"type" binding:"required"`
		Content  string             `json:"content"`
		VoiceURL string             `json:"voice_url"`
		Duration *int               `json:"duration"`
		Images   []string           `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := models.ParsePayload(req.Type, req.Content, req.VoiceURL, req.Duration, req.Images)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messages.CreateMessage(c.Request.Context(), roomID, userID, payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create message"})
		return
	}
	observability.IncMessagePersisted(string(msg.Type))
	h.emitAudit(c, "info", "message created")

	c.JSON(http.StatusCreated, gin.H{
		"message": models.MessageView{
			ID:       msg.ID,
			SenderID: msg.SenderID,
			Message:  models.BuildBody(payload, msg.Status, msg.CreatedAt, true),
		},
	})
}

// MarkSeen advances every peer-authored message in the room to seen.
func (h *RoomHandler) MarkSeen(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	advanced, err := h.statuses.MarkSeen(c.Request.Context(), roomID, middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages as seen"})
		return
	}
	observability.AddStatusTransitions(string(models.StatusSeen), advanced)

	c.Status(http.StatusNoContent)
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// nextPage implements the pagination contract: nil when the returned page
// is shorter than the page size.
func nextPage(page, got, size int) *int {
	if got < size {
		return nil
	}
	next := page + 1
	return &next
}
