package store

import (
	"context"
	"errors"
	"fmt"

	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/domain"
)

// Predefined errors for store operations
var (
	ErrProductNotFound = errors.New("store: product not found")
	ErrSessionNotFound = errors.New("store: browse session not found")
	ErrEmptyCatalog    = errors.New("store: catalog has no products")
	ErrDuplicateID     = errors.New("store: duplicate product id")
	ErrInvalidDiscount = errors.New("store: discount price must be below price")
	ErrInvalidPrice    = errors.New("store: price must not be negative")
	ErrInvalidRating   = errors.New("store: rating must be between 0 and 5")
	ErrInvalidStock    = errors.New("store: stock must not be negative")
)

// CatalogLoader loads the full product list once at startup.
// Implementations return products in catalog insertion order.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Product, error)
}

// WishlistStorer keeps a per-owner list of saved product IDs.
type WishlistStorer interface {
	// AddToWishlist saves productID for owner. It reports false when the
	// product was already on the list.
	AddToWishlist(ctx context.Context, ownerID string, productID int64) (bool, error)
	RemoveFromWishlist(ctx context.Context, ownerID string, productID int64) error
	ListWishlist(ctx context.Context, ownerID string) ([]int64, error)
}

// SessionStorer persists browse-session snapshots as opaque blobs.
type SessionStorer interface {
	SaveSession(ctx context.Context, id string, snap catalog.Snapshot) error
	GetSession(ctx context.Context, id string) (catalog.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error
}

// ValidateCatalog checks the catalog invariants: unique IDs, non-negative
// price and stock, a rating within 0-5, and a discount price strictly below
// the base price when present.
func ValidateCatalog(products []domain.Product) error {
	if len(products) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[int64]bool, len(products))
	for _, p := range products {
		if seen[p.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = true
		if p.Price < 0 {
			return fmt.Errorf("%w: product %d (%v)", ErrInvalidPrice, p.ID, p.Price)
		}
		if p.Rating < 0 || p.Rating > 5 {
			return fmt.Errorf("%w: product %d (%v)", ErrInvalidRating, p.ID, p.Rating)
		}
		if p.Stock < 0 {
			return fmt.Errorf("%w: product %d (%d)", ErrInvalidStock, p.ID, p.Stock)
		}
		if p.DiscountPrice != nil && *p.DiscountPrice >= p.Price {
			return fmt.Errorf("%w: product %d (%v >= %v)", ErrInvalidDiscount, p.ID, *p.DiscountPrice, p.Price)
		}
	}
	return nil
}
