package presence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRegistryLastConnectionWins(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, "alice", "conn-1"))
	require.NoError(t, registry.Register(ctx, "alice", "conn-2"))

	connID, ok, err := registry.Lookup(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "conn-2", connID)
}

func TestMemoryRegistryLookupAbsent(t *testing.T) {
	registry := NewMemoryRegistry()

	_, ok, err := registry.Lookup(context.Background(), "nobody")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryRegistryCompareAndRemove(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, "alice", "conn-1"))
	require.NoError(t, registry.Register(ctx, "alice", "conn-2"))

	// The stale connection's disconnect must not evict the newer entry.
	removed, err := registry.Unregister(ctx, "alice", "conn-1")
	require.NoError(t, err)
	require.False(t, removed)

	connID, ok, err := registry.Lookup(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "conn-2", connID)

	removed, err = registry.Unregister(ctx, "alice", "conn-2")
	require.NoError(t, err)
	require.True(t, removed)

	_, ok, err = registry.Lookup(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryRegistryUnregisterUnknownUser(t *testing.T) {
	registry := NewMemoryRegistry()

	removed, err := registry.Unregister(context.Background(), "nobody", "conn-1")
	require.NoError(t, err)
	require.False(t, removed)
}
