package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrInvalidParticipants = errors.New("invalid room participants")
)

// RoomRepository resolves the unique two-party room for a pair of users and
// serves the room-list projections.
type RoomRepository interface {
	CreateOrGetRoom(ctx context.Context, userID, peerID string) (models.RoomView, error)
	GetRoom(ctx context.Context, roomID int64, userID string) (models.RoomView, error)
	ListRoomPeers(ctx context.Context, userID string) ([]models.RoomPeer, error)
	ListRoomSummaries(ctx context.Context, userID string, limit, offset int) ([]models.RoomSummary, error)
	IsParticipant(ctx context.Context, roomID int64, userID string) (bool, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// CreateOrGetRoom upserts the room for the unordered user pair and returns
// it together with the peer's profile. The conflict branch updates a column
// to its own value so the statement always returns the row.
func (r *RoomRepo) CreateOrGetRoom(ctx context.Context, userID, peerID string) (models.RoomView, error) {
	if userID == peerID {
		return models.RoomView{}, ErrInvalidParticipants
	}

	query := `
        WITH upserted AS (
            INSERT INTO rooms (user1_id, user2_id)
            VALUES ($1, $2)
            ON CONFLICT (LEAST(user1_id, user2_id), GREATEST(user1_id, user2_id))
            DO UPDATE SET user1_id = rooms.user1_id
            RETURNING id, user1_id, user2_id
        )
        SELECT r.id, u.user_id, u.username, u.profile, u.online, u.last_seen
        FROM upserted r
        JOIN users u ON u.user_id = CASE
            WHEN r.user1_id = $1 THEN r.user2_id
            ELSE r.user1_id
        END`

	var view models.RoomView
	if err := r.db.GetContext(ctx, &view, query, userID, peerID); err != nil {
		return models.RoomView{}, err
	}
	return view, nil
}

// GetRoom returns the peer-profile view of a room. A room the user does not
// participate in is reported as not found.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int64, userID string) (models.RoomView, error) {
	query := `
        SELECT r.id, u.user_id, u.username, u.profile, u.online, u.last_seen
        FROM rooms r
        JOIN users u ON u.user_id = CASE
            WHEN r.user1_id = $2 THEN r.user2_id
            ELSE r.user1_id
        END
        WHERE r.id = $1 AND ($2 = r.user1_id OR $2 = r.user2_id)`

	var view models.RoomView
	err := r.db.GetContext(ctx, &view, query, roomID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoomView{}, ErrRoomNotFound
	}
	return view, err
}

// ListRoomPeers returns every room the user belongs to with the computed
// peer user id.
func (r *RoomRepo) ListRoomPeers(ctx context.Context, userID string) ([]models.RoomPeer, error) {
	query := `
        SELECT r.id,
               CASE WHEN r.user1_id = $1 THEN r.user2_id ELSE r.user1_id END AS user_id
        FROM rooms r
        WHERE r.user1_id = $1 OR r.user2_id = $1`

	var peers []models.RoomPeer
	err := r.db.SelectContext(ctx, &peers, query, userID)
	return peers, err
}

// IsParticipant checks whether the user belongs to the room.
func (r *RoomRepo) IsParticipant(ctx context.Context, roomID int64, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM rooms WHERE id=$1 AND (user1_id=$2 OR user2_id=$2))`,
		roomID, userID)
	return exists, err
}

type roomSummaryRow struct {
	models.RoomView
	UnseenCount int64 `db:"unseen_count"`
	lastMessageRow
}

// ListRoomSummaries returns the user's rooms ordered by most recent
// activity, each with the peer profile, the unseen counter and a shaped
// view of the latest message. Rooms with no messages yet are omitted.
func (r *RoomRepo) ListRoomSummaries(ctx context.Context, userID string, limit, offset int) ([]models.RoomSummary, error) {
	query := `
        SELECT
            r.id,
            u.user_id, u.username, u.profile, u.online, u.last_seen,
            (
                SELECT COUNT(*)
                FROM messages c
                WHERE c.room_id = r.id
                  AND c.sender_id <> $1
                  AND c.status <> 'seen'
            ) AS unseen_count,
            m.type, m.status, m.content, m.created_at AS message_created_at,
            (m.sender_id = $1) AS is_own,
            mv.voice_url, mv.duration,
            (
                SELECT ARRAY_AGG(mi.image_url ORDER BY mi.id)
                FROM message_images mi
                WHERE mi.message_id = m.id
            ) AS images
        FROM rooms r
        JOIN users u ON u.user_id = CASE
            WHEN r.user1_id = $1 THEN r.user2_id
            ELSE r.user1_id
        END
        JOIN LATERAL (
            SELECT *
            FROM messages msg
            WHERE msg.room_id = r.id
            ORDER BY msg.created_at DESC, msg.id DESC
            LIMIT 1
        ) m ON TRUE
        LEFT JOIN message_voices mv ON mv.message_id = m.id
        WHERE r.user1_id = $1 OR r.user2_id = $1
        ORDER BY m.created_at DESC, m.id DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryxContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.RoomSummary
	for rows.Next() {
		var row roomSummaryRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		body := row.lastMessageRow.body()
		result = append(result, models.RoomSummary{
			RoomView:    row.RoomView,
			UnseenCount: row.UnseenCount,
			LastMessage: &body,
		})
	}
	return result, rows.Err()
}
