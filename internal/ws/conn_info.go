package ws

import "time"

// ConnInfo carries per-connection identity and tracing metadata captured at
// handshake time.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
