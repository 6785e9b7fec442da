package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string, logger zerolog.Logger) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info().Msg("database migrations applied")
	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            username TEXT NOT NULL,
            profile TEXT,
            online BOOLEAN NOT NULL DEFAULT FALSE,
            last_seen TIMESTAMPTZ
        );`,
		`CREATE TABLE IF NOT EXISTS rooms (
            id BIGSERIAL PRIMARY KEY,
            user1_id TEXT NOT NULL REFERENCES users(user_id),
            user2_id TEXT NOT NULL REFERENCES users(user_id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (user1_id <> user2_id)
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS rooms_participants_key
            ON rooms (LEAST(user1_id, user2_id), GREATEST(user1_id, user2_id));`,
		`CREATE TABLE IF NOT EXISTS messages (
            id BIGSERIAL PRIMARY KEY,
            room_id BIGINT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
            sender_id TEXT NOT NULL REFERENCES users(user_id),
            type TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'sent',
            content TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS messages_room_created_idx
            ON messages (room_id, created_at DESC, id DESC);`,
		`CREATE TABLE IF NOT EXISTS message_voices (
            message_id BIGINT PRIMARY KEY REFERENCES messages(id) ON DELETE CASCADE,
            voice_url TEXT NOT NULL,
            duration INT
        );`,
		`CREATE TABLE IF NOT EXISTS message_images (
            id BIGSERIAL PRIMARY KEY,
            message_id BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
            image_url TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS admin_notification_tokens (
            admin_id TEXT PRIMARY KEY,
            token TEXT NOT NULL
        );`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
