package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestCreateOrGetRoomRejectsSelf(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)

	_, err := repo.CreateOrGetRoom(context.Background(), "alice", "alice")
	require.ErrorIs(t, err, ErrInvalidParticipants)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrGetRoomUpsertsNormalizedPair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)

	// The conflict target is the (LEAST, GREATEST) pair, so either
	// argument order resolves to the one existing room, and the no-op
	// update makes the statement return it.
	upsert := `ON CONFLICT \(LEAST\(user1_id, user2_id\), GREATEST\(user1_id, user2_id\)\) DO UPDATE SET user1_id = rooms\.user1_id`
	columns := []string{"id", "user_id", "username", "profile", "online", "last_seen"}

	mock.ExpectQuery(upsert).WithArgs("alice", "bob").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(3), "bob", "Bob", nil, true, nil))
	mock.ExpectQuery(upsert).WithArgs("bob", "alice").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(3), "alice", "Alice", nil, false, nil))

	first, err := repo.CreateOrGetRoom(context.Background(), "alice", "bob")
	require.NoError(t, err)
	second, err := repo.CreateOrGetRoom(context.Background(), "bob", "alice")
	require.NoError(t, err)

	require.Equal(t, first.RoomID, second.RoomID)
	require.Equal(t, "bob", first.UserID)
	require.Equal(t, "alice", second.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRoomSummariesCountsUnseenAgainstCaller(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)

	columns := []string{
		"id", "user_id", "username", "profile", "online", "last_seen",
		"unseen_count", "type", "status", "content", "message_created_at",
		"is_own", "voice_url", "duration", "images",
	}
	now := time.Now()

	// Counter excludes the caller's own messages and anything already seen.
	mock.ExpectQuery(`c\.sender_id <> \$1 AND c\.status <> 'seen'`).
		WithArgs("alice", 6, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(3), "bob", "Bob", nil, true, nil,
				int64(3), "text", "sent", "hi", now, false, nil, nil, nil))

	summaries, err := repo.ListRoomSummaries(context.Background(), "alice", 6, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, int64(3), summaries[0].UnseenCount)
	require.NotNil(t, summaries[0].LastMessage)
	require.Equal(t, "hi", summaries[0].LastMessage.Content)
	require.False(t, summaries[0].LastMessage.IsOwn)
	require.NoError(t, mock.ExpectationsWereMet())
}
