package models

import "time"

// Room represents a private conversation between exactly two users.
// At most one room exists per unordered user pair.
type Room struct {
	ID        int64     `db:"id" json:"id"`
	User1ID   string    `db:"user1_id" json:"user1_id"`
	User2ID   string    `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PeerProfile is the public slice of a user row returned alongside a room,
// always describing the other participant.
type PeerProfile struct {
	UserID   string     `db:"user_id" json:"user_id"`
	Username string     `db:"username" json:"username"`
	Profile  *string    `db:"profile" json:"profile,omitempty"`
	Online   bool       `db:"online" json:"online"`
	LastSeen *time.Time `db:"last_seen" json:"last_seen,omitempty"`
}

// RoomView pairs a room id with the peer's profile.
type RoomView struct {
	RoomID int64 `db:"id" json:"id"`
	PeerProfile
}

// RoomPeer identifies the other participant of one of a user's rooms.
type RoomPeer struct {
	RoomID int64  `db:"id" json:"roomId"`
	PeerID string `db:"user_id" json:"userId"`
}

// RoomSummary is the room-list projection: peer profile, unseen counter and
// a type-shaped view of the most recent message.
type RoomSummary struct {
	RoomView
	UnseenCount int64        `json:"unseen_count"`
	LastMessage *MessageBody `json:"last_message"`
}
