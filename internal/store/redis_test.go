package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-catalog/internal/catalog"
)

func TestConnectRedis_InvalidURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "not-a-redis-url")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store: invalid REDIS_URL")
}

func TestRedisSessionStore_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewRedisSessionStore(client, time.Minute)
	defer s.Close()
	ctx := context.Background()

	err := s.SaveSession(ctx, "abc", catalog.Snapshot{Page: 1, PageSize: 12})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store: SaveSession failed")

	_, err = s.GetSession(ctx, "abc")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSessionNotFound), "transport errors are not reported as missing sessions")
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "storefront:session:abc", sessionKey("abc"))
}
