package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"storefront-catalog/internal/domain"
)

// PostgresStore implements CatalogLoader and WishlistStorer using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = `id, name, description, category, brand, price, discount_price,
		rating, review_count, stock, featured, image_url`

func scanProduct(rows *sql.Rows) (domain.Product, error) {
	var (
		p             domain.Product
		description   sql.NullString
		discountPrice sql.NullFloat64
		imageURL      sql.NullString
	)
	err := rows.Scan(
		&p.ID, &p.Name, &description, &p.Category, &p.Brand, &p.Price, &discountPrice,
		&p.Rating, &p.ReviewCount, &p.Stock, &p.Featured, &imageURL,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.Description = description.String
	p.ImageURL = imageURL.String
	if discountPrice.Valid {
		d := discountPrice.Float64
		p.DiscountPrice = &d
	}
	return p, nil
}

// --- CatalogLoader Implementation ---

// LoadCatalog reads every product in insertion (id) order.
func (s *PostgresStore) LoadCatalog(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products.products
		ORDER BY id ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: LoadCatalog failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("store: LoadCatalog failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: LoadCatalog iteration error: %w", err)
	}
	if err := ValidateCatalog(products); err != nil {
		return nil, err
	}
	return products, nil
}

// --- WishlistStorer Implementation ---

func (s *PostgresStore) AddToWishlist(ctx context.Context, ownerID string, productID int64) (bool, error) {
	query := `
		INSERT INTO products.wishlist_items (owner_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (owner_id, product_id) DO NOTHING;
	`
	result, err := s.db.ExecContext(ctx, query, ownerID, productID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // Foreign key violation
			return false, ErrProductNotFound
		}
		return false, fmt.Errorf("store: AddToWishlist failed to execute insert: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: AddToWishlist failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (s *PostgresStore) RemoveFromWishlist(ctx context.Context, ownerID string, productID int64) error {
	query := `DELETE FROM products.wishlist_items WHERE owner_id = $1 AND product_id = $2;`
	result, err := s.db.ExecContext(ctx, query, ownerID, productID)
	if err != nil {
		return fmt.Errorf("store: RemoveFromWishlist failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: RemoveFromWishlist failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *PostgresStore) ListWishlist(ctx context.Context, ownerID string) ([]int64, error) {
	query := `
		SELECT product_id
		FROM products.wishlist_items
		WHERE owner_id = $1
		ORDER BY created_at ASC, product_id ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: ListWishlist failed to query items: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: ListWishlist failed to scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListWishlist iteration error: %w", err)
	}
	return ids, nil
}

// Ping checks the connection, used by the health endpoint.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection pool.
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
