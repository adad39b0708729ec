package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront-catalog/internal/catalog"
)

const sessionKeyPrefix = "storefront:session:"

// RedisSessionStore keeps session snapshots as JSON strings with a TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore wraps an existing client.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

// ConnectRedis parses url, connects and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("store: invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: failed to connect to redis: %w", err)
	}
	return client, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisSessionStore) SaveSession(ctx context.Context, id string, snap catalog.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: SaveSession failed to encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(id), blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("store: SaveSession failed to write redis key: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) GetSession(ctx context.Context, id string) (catalog.Snapshot, error) {
	blob, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return catalog.Snapshot{}, ErrSessionNotFound
		}
		return catalog.Snapshot{}, fmt.Errorf("store: GetSession failed to read redis key: %w", err)
	}
	var snap catalog.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("store: GetSession failed to decode snapshot: %w", err)
	}
	return snap, nil
}

func (r *RedisSessionStore) DeleteSession(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("store: DeleteSession failed to delete redis key: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Ping checks the redis connection, used by the health endpoint.
func (r *RedisSessionStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}
