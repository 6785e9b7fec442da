package models

import "encoding/json"

// Server -> client event names.
const (
	EventOnlineStatus        = "online_status"
	EventReceiveMessage      = "receive_message"
	EventClientMessage       = "client_message"
	EventMessageStatusUpdate = "message_status_update"
	EventAllDelivered        = "all_messages_to_delivered"
	EventAllSeen             = "all_messages_to_seen"
	EventIsTyping            = "is_typing"
	EventIsRecording         = "is_recording"
	EventError               = "error"
)

// Client -> server event names.
const (
	EventSendMessage    = "send_message"
	EventMessagesToSeen = "messages_to_seen"
	EventTyping         = "typing"
	EventRecording      = "recording"
)

// ServerEvent is an outgoing websocket frame.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ClientEvent is an incoming websocket frame; Data is decoded per event.
type ClientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OnlineStatus is one entry of a presence snapshot or delta.
type OnlineStatus struct {
	RoomID int64  `json:"roomId"`
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// MessageEnvelope wraps a message pushed to the recipient or echoed to the
// sender.
type MessageEnvelope struct {
	ID       int64       `json:"id"`
	SenderID string      `json:"sender_id"`
	RoomID   int64       `json:"roomId"`
	ClientID string      `json:"clientId,omitempty"`
	Message  MessageBody `json:"message"`
}

// StatusUpdate reports a single-message status change.
type StatusUpdate struct {
	ID     int64         `json:"id"`
	RoomID int64         `json:"roomId"`
	Status MessageStatus `json:"status"`
}

// BulkDelivered reports one room touched by a delivery sweep.
type BulkDelivered struct {
	RoomID int64         `json:"roomId"`
	UserID string        `json:"userId"`
	Status MessageStatus `json:"status"`
}

// BulkSeen reports a seen sweep over one room.
type BulkSeen struct {
	RoomID int64  `json:"roomId"`
	UserID string `json:"userId"`
}

// TypingIndicator is the ephemeral typing relay payload.
type TypingIndicator struct {
	RoomID      int64  `json:"roomId"`
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
	IsTyping    bool   `json:"isTyping"`
}

// RecordingIndicator is the ephemeral voice-recording relay payload.
type RecordingIndicator struct {
	RoomID      int64  `json:"roomId"`
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
	IsRecording bool   `json:"isRecording"`
}

// ErrorEvent is sent to the originating connection on a processing or
// validation failure. The connection stays open.
type ErrorEvent struct {
	Message string `json:"message"`
}

// SendMessageData is the send_message event payload.
type SendMessageData struct {
	RoomID      int64       `json:"roomId"`
	UserID      string      `json:"userId"`
	OtherUserID string      `json:"otherUserId"`
	ClientID    string      `json:"clientId"`
	Type        MessageType `json:"type"`
	Content     string      `json:"content"`
	VoiceURL    string      `json:"voice_url"`
	Duration    *int        `json:"duration"`
	Images      []string    `json:"images"`
}

// Payload converts the raw event data into its tagged payload variant.
func (d SendMessageData) Payload() (Payload, error) {
	return ParsePayload(d.Type, d.Content, d.VoiceURL, d.Duration, d.Images)
}

// SeenData is the messages_to_seen event payload.
type SeenData struct {
	RoomID      int64  `json:"roomId"`
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

// TypingData is the typing event payload.
type TypingData struct {
	RoomID      int64  `json:"roomId"`
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
	IsTyping    bool   `json:"isTyping"`
}

// RecordingData is the recording event payload.
type RecordingData struct {
	RoomID      int64  `json:"roomId"`
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
	IsRecording bool   `json:"isRecording"`
}
