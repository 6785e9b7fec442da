package ws

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

func newTestClient(connID, userID string) *Client {
	return NewClient(nil, ConnInfo{ConnID: connID, UserID: userID}, zerolog.Nop())
}

func TestHubAddSendRemove(t *testing.T) {
	hub := NewHub()
	client := newTestClient("conn-1", "alice")

	hub.Add(client)
	require.Equal(t, 1, hub.Len())

	require.True(t, hub.Send("conn-1", models.ServerEvent{Event: models.EventError}))

	queued := <-client.send
	require.Equal(t, models.EventError, queued.Event)

	hub.Remove(client)
	require.Equal(t, 0, hub.Len())
	require.False(t, hub.Send("conn-1", models.ServerEvent{Event: models.EventError}))
}

func TestHubSendUnknownConnection(t *testing.T) {
	hub := NewHub()
	require.False(t, hub.Send("missing", models.ServerEvent{Event: models.EventError}))
}

func TestHubRemoveKeepsNewerClientWithSameID(t *testing.T) {
	hub := NewHub()
	older := newTestClient("conn-1", "alice")
	newer := newTestClient("conn-1", "alice")

	hub.Add(older)
	hub.Add(newer)
	hub.Remove(older)

	require.Equal(t, 1, hub.Len())
	require.True(t, hub.Send("conn-1", models.ServerEvent{Event: models.EventError}))
}

func TestClientSendDropsWhenBufferFull(t *testing.T) {
	client := newTestClient("conn-1", "alice")

	for i := 0; i < sendBuffer; i++ {
		require.True(t, client.Send(models.ServerEvent{Event: models.EventIsTyping}))
	}
	require.False(t, client.Send(models.ServerEvent{Event: models.EventIsTyping}))
}
