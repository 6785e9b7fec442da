package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// UserRepository covers the user-record pieces the messaging core mutates:
// the persisted online flag and the admin push-token registry.
type UserRepository interface {
	SetOnlineStatus(ctx context.Context, userID string, online bool) error
	RecordAdminToken(ctx context.Context, adminID, token string) error
	ListAdminTokens(ctx context.Context) ([]string, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// SetOnlineStatus flips the persisted online flag. Going offline also
// stamps last_seen.
func (r *UserRepo) SetOnlineStatus(ctx context.Context, userID string, online bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
         SET online = $1,
             last_seen = CASE WHEN $1 = FALSE THEN NOW() ELSE last_seen END
         WHERE user_id = $2`,
		online, userID)
	return err
}

// RecordAdminToken upserts the push-notification token for an admin.
func (r *UserRepo) RecordAdminToken(ctx context.Context, adminID, token string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_notification_tokens (admin_id, token)
         VALUES ($1, $2)
         ON CONFLICT (admin_id) DO UPDATE SET token = EXCLUDED.token`,
		adminID, token)
	return err
}

// ListAdminTokens returns every registered admin token.
func (r *UserRepo) ListAdminTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := r.db.SelectContext(ctx, &tokens, `SELECT token FROM admin_notification_tokens`)
	return tokens, err
}
