// Package presence tracks which users are currently reachable and through
// which connection. The registry maps a user identifier to the id of its
// most recent connection; the transport layer resolves connection ids to
// live sockets.
package presence

import (
	"context"
	"sync"
)

// Registry is the process-visible mapping of user id to active connection
// id. Register unconditionally overwrites (last connection wins).
// Unregister removes the entry only when it still holds the given
// connection id, so a late-disconnecting stale connection never evicts a
// newer one.
type Registry interface {
	Register(ctx context.Context, userID, connID string) error
	Lookup(ctx context.Context, userID string) (string, bool, error)
	Unregister(ctx context.Context, userID, connID string) (bool, error)
}

// MemoryRegistry is the single-node Registry backed by an in-process map.
type MemoryRegistry struct {
	mu    sync.RWMutex
	conns map[string]string
}

// NewMemoryRegistry creates an empty in-process registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{conns: make(map[string]string)}
}

// Register records connID as the user's active connection, replacing any
// previous one.
func (r *MemoryRegistry) Register(_ context.Context, userID, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = connID
	return nil
}

// Lookup returns the user's active connection id, if any.
func (r *MemoryRegistry) Lookup(_ context.Context, userID string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.conns[userID]
	return connID, ok, nil
}

// Unregister removes the entry only if it still equals connID. Reports
// whether an entry was removed.
func (r *MemoryRegistry) Unregister(_ context.Context, userID, connID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[userID]; !ok || current != connID {
		return false, nil
	}
	delete(r.conns, userID)
	return true, nil
}
