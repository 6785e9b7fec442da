package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messaging-service/internal/models"
)

// MessageRepository persists messages and serves the per-room history
// projection. A message and its type-specific payload are written in one
// transaction: either both land or neither does.
type MessageRepository interface {
	CreateMessage(ctx context.Context, roomID int64, senderID string, payload models.Payload) (models.Message, error)
	ListRoomMessages(ctx context.Context, roomID int64, userID string, limit, offset int) ([]models.MessageView, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage inserts the base row with status 'sent' plus the payload
// rows the variant requires.
func (r *MessageRepo) CreateMessage(ctx context.Context, roomID int64, senderID string, payload models.Payload) (models.Message, error) {
	var content sql.NullString
	switch v := payload.(type) {
	case models.TextPayload:
		content = sql.NullString{String: v.Content, Valid: true}
	case models.ImagePayload:
		if v.Content != "" {
			content = sql.NullString{String: v.Content, Valid: true}
		}
	case models.VoicePayload:
		if v.URL == "" {
			return models.Message{}, fmt.Errorf("voice message requires a voice_url")
		}
	default:
		return models.Message{}, fmt.Errorf("unsupported message type %q", payload.MessageType())
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var msg models.Message
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO messages (room_id, sender_id, type, content)
         VALUES ($1, $2, $3, $4)
         RETURNING id, room_id, sender_id, type, status, content, created_at`,
		roomID, senderID, payload.MessageType(), content).StructScan(&msg)
	if err != nil {
		return models.Message{}, err
	}

	switch v := payload.(type) {
	case models.VoicePayload:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO message_voices (message_id, voice_url, duration) VALUES ($1, $2, $3)`,
			msg.ID, v.URL, v.Duration); err != nil {
			return models.Message{}, err
		}
	case models.ImagePayload:
		if len(v.Images) > 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO message_images (message_id, image_url)
                 SELECT $1, unnest($2::text[])`,
				msg.ID, pq.Array(v.Images)); err != nil {
				return models.Message{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

type messageRow struct {
	ID       int64  `db:"id"`
	SenderID string `db:"sender_id"`
	lastMessageRow
}

// ListRoomMessages returns a most-recent-first page of shaped message views
// tagged is_own relative to userID. A non-participant gets an empty result.
func (r *MessageRepo) ListRoomMessages(ctx context.Context, roomID int64, userID string, limit, offset int) ([]models.MessageView, error) {
	query := `
        SELECT m.id, m.sender_id,
               m.type, m.status, m.content, m.created_at AS message_created_at,
               (m.sender_id = $2) AS is_own,
               mv.voice_url, mv.duration,
               (
                   SELECT ARRAY_AGG(mi.image_url ORDER BY mi.id)
                   FROM message_images mi
                   WHERE mi.message_id = m.id
               ) AS images
        FROM messages m
        LEFT JOIN message_voices mv ON mv.message_id = m.id
        INNER JOIN rooms r ON r.id = m.room_id
        WHERE m.room_id = $1
          AND ($2 = r.user1_id OR $2 = r.user2_id)
        ORDER BY m.created_at DESC, m.id DESC
        LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryxContext(ctx, query, roomID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.MessageView
	for rows.Next() {
		var row messageRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		result = append(result, models.MessageView{
			ID:       row.ID,
			SenderID: row.SenderID,
			Message:  row.lastMessageRow.body(),
		})
	}
	return result, rows.Err()
}

// lastMessageRow holds the raw columns of a type-polymorphic message view.
type lastMessageRow struct {
	Type      models.MessageType   `db:"type"`
	Status    models.MessageStatus `db:"status"`
	Content   sql.NullString       `db:"content"`
	CreatedAt time.Time            `db:"message_created_at"`
	IsOwn     bool                 `db:"is_own"`
	VoiceURL  sql.NullString       `db:"voice_url"`
	Duration  sql.NullInt64        `db:"duration"`
	Images    pq.StringArray       `db:"images"`
}

// body shapes the raw columns per message type: voice carries url+duration,
// image carries the ordered url list, text and anything else carry content.
func (r lastMessageRow) body() models.MessageBody {
	body := models.MessageBody{
		Type:      r.Type,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		IsOwn:     r.IsOwn,
	}
	switch r.Type {
	case models.MessageTypeVoice:
		body.VoiceURL = r.VoiceURL.String
		if r.Duration.Valid {
			duration := int(r.Duration.Int64)
			body.Duration = &duration
		}
	case models.MessageTypeImage:
		body.Content = r.Content.String
		body.Images = r.Images
	default:
		body.Content = r.Content.String
	}
	return body
}
