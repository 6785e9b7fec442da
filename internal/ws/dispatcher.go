package ws

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/presence"
	"messaging-service/internal/repositories"
)

// Dispatcher wires the presence registry, room resolver, message store and
// delivery state machine together and handles every socket event. Handlers
// for one connection run sequentially on its read loop; cross-connection
// state lives in the registry and the database.
type Dispatcher struct {
	sender   Sender
	registry presence.Registry
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	statuses repositories.DeliveryStatusRepository
	users    repositories.UserRepository
	log      zerolog.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(
	sender Sender,
	registry presence.Registry,
	rooms repositories.RoomRepository,
	messages repositories.MessageRepository,
	statuses repositories.DeliveryStatusRepository,
	users repositories.UserRepository,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		registry: registry,
		rooms:    rooms,
		messages: messages,
		statuses: statuses,
		users:    users,
		log:      logger,
	}
}

// Dispatch routes one decoded client event to its handler.
func (d *Dispatcher) Dispatch(c *Client, event models.ClientEvent) {
	ctx := context.Background()
	observability.IncWSEvent(event.Event)

	switch event.Event {
	case models.EventSendMessage:
		var data models.SendMessageData
		if !d.decode(c, event.Data, &data) {
			return
		}
		d.HandleSendMessage(ctx, c, data)
	case models.EventMessagesToSeen:
		var data models.SeenData
		if !d.decode(c, event.Data, &data) {
			return
		}
		d.HandleSeen(ctx, c, data)
	case models.EventTyping:
		var data models.TypingData
		if !d.decode(c, event.Data, &data) {
			return
		}
		d.HandleTyping(ctx, c, data)
	case models.EventRecording:
		var data models.RecordingData
		if !d.decode(c, event.Data, &data) {
			return
		}
		d.HandleRecording(ctx, c, data)
	default:
		d.log.Debug().Str("event", event.Event).Msg("ignoring unknown event")
	}
}

func (d *Dispatcher) decode(c *Client, raw json.RawMessage, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		d.sendError(c, "Invalid event payload")
		return false
	}
	return true
}

func (d *Dispatcher) sendError(c *Client, message string) {
	d.sender.Send(c.ID(), models.ServerEvent{Event: models.EventError, Data: models.ErrorEvent{Message: message}})
}

// sendTo delivers an event to whatever connection the registry holds for
// the user. Returns false when the user is not reachable.
func (d *Dispatcher) sendTo(ctx context.Context, userID string, event models.ServerEvent) bool {
	connID, ok := d.lookup(ctx, userID)
	if !ok {
		return false
	}
	return d.sender.Send(connID, event)
}

func (d *Dispatcher) lookup(ctx context.Context, userID string) (string, bool) {
	connID, ok, err := d.registry.Lookup(ctx, userID)
	if err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("presence lookup failed")
		return "", false
	}
	return connID, ok
}

// HandleRegister runs the registration sweep for a freshly connected
// client: record presence, flip the persisted online flag, push a presence
// snapshot to the client, announce the client to its online peers, then
// promote undelivered messages and notify the senders affected.
func (d *Dispatcher) HandleRegister(ctx context.Context, c *Client) {
	userID := c.UserID()

	if err := d.registry.Register(ctx, userID, c.ID()); err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("presence register failed")
		return
	}

	if err := d.users.SetOnlineStatus(ctx, userID, true); err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("failed to mark user online")
	}

	peers, err := d.rooms.ListRoomPeers(ctx, userID)
	if err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("failed to load rooms")
		return
	}
	if len(peers) == 0 {
		return
	}

	snapshot := make([]models.OnlineStatus, 0, len(peers))
	for _, peer := range peers {
		_, online := d.lookup(ctx, peer.PeerID)
		snapshot = append(snapshot, models.OnlineStatus{RoomID: peer.RoomID, UserID: peer.PeerID, Online: online})
	}
	d.sender.Send(c.ID(), models.ServerEvent{Event: models.EventOnlineStatus, Data: snapshot})

	// Each online peer gets the full list of rooms this user just came
	// online in.
	announce := make([]models.OnlineStatus, 0, len(peers))
	for _, peer := range peers {
		announce = append(announce, models.OnlineStatus{RoomID: peer.RoomID, UserID: userID, Online: true})
	}
	for _, peer := range peers {
		d.sendTo(ctx, peer.PeerID, models.ServerEvent{Event: models.EventOnlineStatus, Data: announce})
	}

	touched, advanced, err := d.statuses.MarkAllDeliveredForUser(ctx, userID)
	if err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("delivery sweep failed")
		return
	}
	observability.AddStatusTransitions(string(models.StatusDelivered), advanced)
	for _, pair := range touched {
		d.sendTo(ctx, pair.PeerID, models.ServerEvent{
			Event: models.EventAllDelivered,
			Data: models.BulkDelivered{
				RoomID: pair.RoomID,
				UserID: pair.PeerID,
				Status: models.StatusDelivered,
			},
		})
	}
}

// HandleSendMessage persists the message, echoes it to the sender and, when
// the recipient is connected, forwards it and runs the instant-delivery
// fast path.
func (d *Dispatcher) HandleSendMessage(ctx context.Context, c *Client, data models.SendMessageData) {
	if data.RoomID == 0 || data.UserID == "" || data.Type == "" {
		d.sendError(c, "Invalid message payload")
		return
	}

	payload, err := data.Payload()
	if err != nil {
		d.sendError(c, "Invalid message payload")
		return
	}

	msg, err := d.messages.CreateMessage(ctx, data.RoomID, data.UserID, payload)
	if err != nil {
		d.log.Error().Err(err).Int64("room_id", data.RoomID).Msg("failed to persist message")
		d.sendError(c, "Failed to send message")
		return
	}
	observability.IncMessagePersisted(string(msg.Type))

	envelope := models.MessageEnvelope{
		ID:       msg.ID,
		SenderID: data.UserID,
		RoomID:   data.RoomID,
		ClientID: data.ClientID,
		Message:  models.BuildBody(payload, msg.Status, msg.CreatedAt, false),
	}

	recipientConn, recipientOnline := d.lookup(ctx, data.OtherUserID)
	if recipientOnline {
		d.sender.Send(recipientConn, models.ServerEvent{Event: models.EventReceiveMessage, Data: envelope})
	}

	echo := envelope
	echo.Message.IsOwn = true
	d.sender.Send(c.ID(), models.ServerEvent{Event: models.EventClientMessage, Data: echo})

	if !recipientOnline {
		// Message stays 'sent'; the recipient's next registration sweep
		// promotes it.
		return
	}

	advanced, err := d.statuses.MarkDelivered(ctx, data.RoomID, data.OtherUserID)
	if err != nil {
		d.log.Error().Err(err).Int64("room_id", data.RoomID).Msg("delivery fast path failed")
		return
	}
	observability.AddStatusTransitions(string(models.StatusDelivered), advanced)

	d.sender.Send(c.ID(), models.ServerEvent{
		Event: models.EventMessageStatusUpdate,
		Data: models.StatusUpdate{
			ID:     msg.ID,
			RoomID: data.RoomID,
			Status: models.StatusDelivered,
		},
	})
}

// HandleSeen marks every message in the room authored by the peer as seen
// and notifies the peer when connected.
func (d *Dispatcher) HandleSeen(ctx context.Context, c *Client, data models.SeenData) {
	advanced, err := d.statuses.MarkSeen(ctx, data.RoomID, data.UserID)
	if err != nil {
		d.log.Error().Err(err).Int64("room_id", data.RoomID).Msg("seen sweep failed")
		d.sendError(c, "Failed to update messages")
		return
	}
	observability.AddStatusTransitions(string(models.StatusSeen), advanced)

	d.sendTo(ctx, data.OtherUserID, models.ServerEvent{
		Event: models.EventAllSeen,
		Data:  models.BulkSeen{RoomID: data.RoomID, UserID: data.OtherUserID},
	})
}

// HandleTyping relays a typing indicator to the peer, best effort. Nothing
// is persisted.
func (d *Dispatcher) HandleTyping(ctx context.Context, _ *Client, data models.TypingData) {
	if data.RoomID == 0 || data.UserID == "" || data.OtherUserID == "" {
		return
	}
	d.sendTo(ctx, data.OtherUserID, models.ServerEvent{
		Event: models.EventIsTyping,
		Data: models.TypingIndicator{
			RoomID:      data.RoomID,
			UserID:      data.OtherUserID,
			OtherUserID: data.UserID,
			IsTyping:    data.IsTyping,
		},
	})
}

// HandleRecording relays a voice-recording indicator to the peer.
func (d *Dispatcher) HandleRecording(ctx context.Context, _ *Client, data models.RecordingData) {
	if data.RoomID == 0 || data.UserID == "" || data.OtherUserID == "" {
		return
	}
	d.sendTo(ctx, data.OtherUserID, models.ServerEvent{
		Event: models.EventIsRecording,
		Data: models.RecordingIndicator{
			RoomID:      data.RoomID,
			UserID:      data.OtherUserID,
			OtherUserID: data.UserID,
			IsRecording: data.IsRecording,
		},
	})
}

// HandleDisconnect flips the persisted online flag, broadcasts the offline
// status to connected peers and removes the presence entry, but only while
// it still points at this connection.
func (d *Dispatcher) HandleDisconnect(ctx context.Context, c *Client) {
	userID := c.UserID()

	if err := d.users.SetOnlineStatus(ctx, userID, false); err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("failed to mark user offline")
	}

	peers, err := d.rooms.ListRoomPeers(ctx, userID)
	if err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("failed to load rooms")
	}

	if len(peers) > 0 {
		offline := make([]models.OnlineStatus, 0, len(peers))
		for _, peer := range peers {
			offline = append(offline, models.OnlineStatus{RoomID: peer.RoomID, UserID: userID, Online: false})
		}
		for _, peer := range peers {
			d.sendTo(ctx, peer.PeerID, models.ServerEvent{Event: models.EventOnlineStatus, Data: offline})
		}
	}

	// A newer connection from the same user may already own the entry; the
	// compare-and-remove contract makes this a no-op then.
	if _, err := d.registry.Unregister(ctx, userID, c.ID()); err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("presence unregister failed")
	}
}
