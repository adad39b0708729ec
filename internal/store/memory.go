package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"storefront-catalog/internal/catalog"
)

// MemoryWishlist is an in-process WishlistStorer. Product existence is
// checked against the catalog it was created with.
type MemoryWishlist struct {
	mu     sync.RWMutex
	known  map[int64]bool
	owners map[string][]int64
}

// NewMemoryWishlist creates a wishlist that accepts only the given product IDs.
func NewMemoryWishlist(productIDs []int64) *MemoryWishlist {
	known := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		known[id] = true
	}
	return &MemoryWishlist{known: known, owners: map[string][]int64{}}
}

func (m *MemoryWishlist) AddToWishlist(_ context.Context, ownerID string, productID int64) (bool, error) {
	if !m.known[productID] {
		return false, ErrProductNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.owners[ownerID], productID) {
		return false, nil
	}
	m.owners[ownerID] = append(m.owners[ownerID], productID)
	return true, nil
}

func (m *MemoryWishlist) RemoveFromWishlist(_ context.Context, ownerID string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.owners[ownerID]
	i := slices.Index(list, productID)
	if i < 0 {
		return ErrProductNotFound
	}
	m.owners[ownerID] = slices.Delete(list, i, i+1)
	return nil
}

func (m *MemoryWishlist) ListWishlist(_ context.Context, ownerID string) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int64{}, m.owners[ownerID]...), nil
}

// ── Browse session snapshots ─────────────────────────────────────────────────

type sessionEntry struct {
	blob    []byte
	savedAt time.Time
}

// MemorySessionStore keeps session snapshots in process, expiring them after ttl.
// Snapshots are stored as JSON so callers never share state with the store.
type MemorySessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

// NewMemorySessionStore creates a store whose entries live for ttl after their last save.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, now: time.Now, sessions: map[string]sessionEntry{}}
}

func (m *MemorySessionStore) SaveSession(_ context.Context, id string, snap catalog.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: SaveSession failed to encode snapshot: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = sessionEntry{blob: blob, savedAt: m.now()}
	return nil
}

func (m *MemorySessionStore) GetSession(_ context.Context, id string) (catalog.Snapshot, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || m.now().Sub(entry.savedAt) >= m.ttl {
		return catalog.Snapshot{}, ErrSessionNotFound
	}
	var snap catalog.Snapshot
	if err := json.Unmarshal(entry.blob, &snap); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("store: GetSession failed to decode snapshot: %w", err)
	}
	return snap, nil
}

func (m *MemorySessionStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemorySessionStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, entry := range m.sessions {
		if m.now().Sub(entry.savedAt) >= m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
