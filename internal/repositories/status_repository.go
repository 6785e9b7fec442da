package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// DeliveryStatusRepository is the sent -> delivered -> seen state machine.
// All transitions are bulk and conditional: the WHERE guard on the current
// status makes repeated application a no-op and keeps status monotonic even
// when sweeps race with in-flight sends.
type DeliveryStatusRepository interface {
	MarkDelivered(ctx context.Context, roomID int64, excludeSenderID string) (int64, error)
	MarkSeen(ctx context.Context, roomID int64, excludeSenderID string) (int64, error)
	MarkAllDeliveredForUser(ctx context.Context, userID string) ([]models.RoomPeer, int64, error)
}

// StatusRepo is a sqlx implementation of DeliveryStatusRepository.
type StatusRepo struct {
	db *sqlx.DB
}

// NewStatusRepo constructs a StatusRepo.
func NewStatusRepo(db *sqlx.DB) *StatusRepo {
	return &StatusRepo{db: db}
}

// MarkDelivered advances every 'sent' message in the room not authored by
// excludeSenderID to 'delivered'. Returns the number of rows advanced.
func (r *StatusRepo) MarkDelivered(ctx context.Context, roomID int64, excludeSenderID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages
         SET status = 'delivered'
         WHERE room_id = $1
           AND sender_id <> $2
           AND status = 'sent'`,
		roomID, excludeSenderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkSeen advances every not-yet-seen message in the room not authored by
// excludeSenderID to 'seen', covering both 'sent' and 'delivered' sources.
func (r *StatusRepo) MarkSeen(ctx context.Context, roomID int64, excludeSenderID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages
         SET status = 'seen'
         WHERE room_id = $1
           AND sender_id <> $2
           AND status <> 'seen'`,
		roomID, excludeSenderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkAllDeliveredForUser promotes the peers' 'sent' messages to
// 'delivered' across every room the user belongs to. Returns the distinct
// (room, peer) pairs touched, so the caller notifies only the peers
// affected, plus the total number of rows advanced.
func (r *StatusRepo) MarkAllDeliveredForUser(ctx context.Context, userID string) ([]models.RoomPeer, int64, error) {
	query := `
        WITH updated AS (
            UPDATE messages m
            SET status = 'delivered'
            FROM rooms r
            WHERE m.room_id = r.id
              AND (r.user1_id = $1 OR r.user2_id = $1)
              AND m.sender_id <> $1
              AND m.status = 'sent'
            RETURNING m.room_id,
                      CASE WHEN r.user1_id = $1 THEN r.user2_id ELSE r.user1_id END AS user_id
        )
        SELECT room_id AS id, user_id
        FROM updated`

	var advanced []models.RoomPeer
	if err := r.db.SelectContext(ctx, &advanced, query, userID); err != nil {
		return nil, 0, err
	}

	dedup := make(map[models.RoomPeer]struct{}, len(advanced))
	touched := make([]models.RoomPeer, 0, len(advanced))
	for _, pair := range advanced {
		if _, ok := dedup[pair]; ok {
			continue
		}
		dedup[pair] = struct{}{}
		touched = append(touched, pair)
	}
	return touched, int64(len(advanced)), nil
}
