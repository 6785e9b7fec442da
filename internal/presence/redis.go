package presence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// compare-and-delete: remove the key only while it still holds this
// connection id. Keeps the Unregister contract atomic across nodes.
var unregisterScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRegistry is a Registry backed by a shared Redis instance, for
// deployments where connections are spread across several nodes.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry connects to Redis and verifies the connection.
func NewRedisRegistry(ctx context.Context, redisURL string) (*RedisRegistry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisRegistry{client: client}, nil
}

// Close closes the Redis connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

func presenceKey(userID string) string {
	return fmt.Sprintf("presence:%s", userID)
}

// Register records connID as the user's active connection, replacing any
// previous one.
func (r *RedisRegistry) Register(ctx context.Context, userID, connID string) error {
	return r.client.Set(ctx, presenceKey(userID), connID, 0).Err()
}

// Lookup returns the user's active connection id, if any.
func (r *RedisRegistry) Lookup(ctx context.Context, userID string) (string, bool, error) {
	connID, err := r.client.Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return connID, true, nil
}

// Unregister removes the entry only if it still equals connID.
func (r *RedisRegistry) Unregister(ctx context.Context, userID, connID string) (bool, error) {
	removed, err := unregisterScript.Run(ctx, r.client, []string{presenceKey(userID)}, connID).Int()
	if err != nil {
		return false, err
	}
	return removed == 1, nil
}
