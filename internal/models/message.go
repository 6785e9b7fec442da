package models

import (
	"database/sql"
	"fmt"
	"time"
)

// MessageType discriminates the payload variant of a message.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeVoice MessageType = "voice"
	MessageTypeImage MessageType = "image"
)

// MessageStatus is the delivery lifecycle state. Transitions only ever
// advance: sent -> delivered -> seen.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusSeen      MessageStatus = "seen"
)

// Message is the base message row. Type-specific payload lives in
// message_voices / message_images.
type Message struct {
	ID        int64          `db:"id" json:"id"`
	RoomID    int64          `db:"room_id" json:"room_id"`
	SenderID  string         `db:"sender_id" json:"sender_id"`
	Type      MessageType    `db:"type" json:"type"`
	Status    MessageStatus  `db:"status" json:"status"`
	Content   sql.NullString `db:"content" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Payload is the type-specific body of a message. Exactly one
// implementation exists per MessageType; code consuming a Payload switches
// over the concrete variants so an unhandled type is an error, not a
// silent default.
type Payload interface {
	MessageType() MessageType
}

// TextPayload carries inline text content.
type TextPayload struct {
	Content string
}

func (TextPayload) MessageType() MessageType { return MessageTypeText }

// VoicePayload references an external audio object.
type VoicePayload struct {
	URL      string
	Duration *int
}

func (VoicePayload) MessageType() MessageType { return MessageTypeVoice }

// ImagePayload carries an ordered set of external image references plus an
// optional caption.
type ImagePayload struct {
	Content string
	Images  []string
}

func (ImagePayload) MessageType() MessageType { return MessageTypeImage }

// MessageBody is the type-shaped view of a message sent to clients and
// returned by read projections.
type MessageBody struct {
	Type      MessageType   `json:"type"`
	Status    MessageStatus `json:"status"`
	Content   string        `json:"content,omitempty"`
	VoiceURL  string        `json:"voice_url,omitempty"`
	Duration  *int          `json:"duration,omitempty"`
	Images    []string      `json:"images,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	IsOwn     bool          `json:"is_own"`
}

// MessageView is one entry of a room's history page.
type MessageView struct {
	ID       int64       `json:"id"`
	SenderID string      `json:"sender_id"`
	Message  MessageBody `json:"message"`
}

// BuildBody shapes a payload into the client-facing message view.
func BuildBody(p Payload, status MessageStatus, createdAt time.Time, isOwn bool) MessageBody {
	body := MessageBody{
		Type:      p.MessageType(),
		Status:    status,
		CreatedAt: createdAt,
		IsOwn:     isOwn,
	}
	switch v := p.(type) {
	case TextPayload:
		body.Content = v.Content
	case VoicePayload:
		body.VoiceURL = v.URL
		body.Duration = v.Duration
	case ImagePayload:
		body.Content = v.Content
		body.Images = v.Images
	}
	return body
}

// ParsePayload builds the payload variant for a raw send request.
func ParsePayload(msgType MessageType, content, voiceURL string, duration *int, images []string) (Payload, error) {
	switch msgType {
	case MessageTypeText:
		return TextPayload{Content: content}, nil
	case MessageTypeVoice:
		return VoicePayload{URL: voiceURL, Duration: duration}, nil
	case MessageTypeImage:
		return ImagePayload{Content: content, Images: images}, nil
	default:
		return nil, fmt.Errorf("unsupported message type %q", msgType)
	}
}
