package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"messaging-service/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Client wraps one websocket connection. Outbound events go through a
// buffered channel drained by WritePump so concurrent handlers never write
// to the socket directly.
type Client struct {
	info ConnInfo
	conn *websocket.Conn
	log  zerolog.Logger

	send      chan models.ServerEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn, info ConnInfo, logger zerolog.Logger) *Client {
	return &Client{
		info: info,
		conn: conn,
		log:  logger.With().Str("conn_id", info.ConnID).Str("user_id", info.UserID).Logger(),
		send: make(chan models.ServerEvent, sendBuffer),
		done: make(chan struct{}),
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.info.ConnID }

// UserID returns the handshake-supplied user identifier.
func (c *Client) UserID() string { return c.info.UserID }

// Info returns the handshake metadata.
func (c *Client) Info() ConnInfo { return c.info }

// Send queues an event for delivery. A full buffer drops the event rather
// than blocking the caller.
func (c *Client) Send(event models.ServerEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- event:
		return true
	default:
		c.log.Warn().Str("event", event.Event).Msg("send buffer full, dropping event")
		return false
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// WritePump serializes queued events onto the socket and keeps the
// connection alive with pings. Runs until Close or a write failure.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case event := <-c.send:
			payload, err := json.Marshal(event)
			if err != nil {
				c.log.Error().Err(err).Str("event", event.Event).Msg("failed to serialize event")
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// ReadLoop decodes incoming frames and hands them to the dispatcher. It
// returns the close reason when the connection drops; the caller owns the
// disconnect handling.
func (c *Client) ReadLoop(d *Dispatcher) string {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ""
			}
			return err.Error()
		}

		var event models.ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.Send(models.ServerEvent{Event: models.EventError, Data: models.ErrorEvent{Message: "Invalid event frame"}})
			continue
		}
		d.Dispatch(c, event)
	}
}
