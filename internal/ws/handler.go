package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/observability"
)

// Handler upgrades HTTP requests to websocket connections and runs their
// lifecycle: register sweep, read loop, disconnect sweep.
type Handler struct {
	hub        *Hub
	dispatcher *Dispatcher
	log        zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, dispatcher *Dispatcher, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, dispatcher: dispatcher, log: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client. The handshake
// must carry a user identifier; without one the connection is rejected
// before the upgrade.
func (h *Handler) Handle(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = c.GetHeader("X-User-Id")
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	meta := observability.MetaFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		DeviceID:    meta.DeviceID,
		IP:          meta.IP,
		RequestID:   meta.RequestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	client := NewClient(conn, info, h.log)
	h.hub.Add(client)
	go client.WritePump()

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycleEvent(ctx, info, "ws_connect", "")

	h.dispatcher.HandleRegister(ctx, client)

	go func() {
		var closeReason string
		defer func() {
			h.dispatcher.HandleDisconnect(context.Background(), client)
			h.hub.Remove(client)
			client.Close()
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			h.publishLifecycleEvent(context.Background(), info, "ws_disconnect", closeReason)
		}()

		closeReason = client.ReadLoop(h.dispatcher)
		if closeReason != "" {
			observability.IncWSEvent("ws_error")
		}
	}()
}

func (h *Handler) publishLifecycleEvent(ctx context.Context, info ConnInfo, name, reason string) {
	_ = observability.PublishEvent(ctx, observability.RoutingKeyWS, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: name,
		Payload: observability.WSEventPayload{
			Event:      name,
			ConnID:     info.ConnID,
			UserID:     info.UserID,
			DeviceID:   info.DeviceID,
			IP:         info.IP,
			DurationMS: time.Since(info.ConnectedAt).Milliseconds(),
			Reason:     reason,
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
