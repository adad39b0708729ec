package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/domain"
)

func TestMemoryWishlist(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWishlist([]int64{1, 2, 3})

	added, err := w.AddToWishlist(ctx, "alice", 2)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = w.AddToWishlist(ctx, "alice", 2)
	require.NoError(t, err)
	assert.False(t, added, "duplicates are ignored")

	_, err = w.AddToWishlist(ctx, "alice", 42)
	assert.True(t, errors.Is(err, ErrProductNotFound))

	_, err = w.AddToWishlist(ctx, "alice", 1)
	require.NoError(t, err)

	ids, err := w.ListWishlist(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids)

	require.NoError(t, w.RemoveFromWishlist(ctx, "alice", 2))
	assert.True(t, errors.Is(w.RemoveFromWishlist(ctx, "alice", 2), ErrProductNotFound))

	ids, err = w.ListWishlist(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemorySessionStore_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	snap := catalog.Snapshot{
		Filters:  domain.DefaultFilterState(1000),
		Page:     2,
		PageSize: 24,
	}
	snap.Filters.Brands = []string{"sony"}
	require.NoError(t, s.SaveSession(ctx, "abc", snap))

	got, err := s.GetSession(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	clock = clock.Add(2 * time.Minute)
	_, err = s.GetSession(ctx, "abc")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.Equal(t, 1, s.Sweep())
	assert.True(t, errors.Is(s.DeleteSession(ctx, "abc"), ErrSessionNotFound))
}

func TestMemorySessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(time.Minute)
	require.NoError(t, s.SaveSession(ctx, "abc", catalog.Snapshot{Page: 1, PageSize: 12}))

	require.NoError(t, s.DeleteSession(ctx, "abc"))
	_, err := s.GetSession(ctx, "abc")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}
