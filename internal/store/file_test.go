package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallCatalog = `
products:
  - id: 1
    name: Wireless Headphones
    category: electronics
    brand: sony
    price: 199.99
    discount_price: 149.99
    rating: 4.5
    review_count: 120
    stock: 15
    featured: true
  - id: 2
    name: Running Shoes
    category: fashion
    brand: nike
    price: 89.99
    rating: 4.2
    review_count: 85
    stock: 0
`

func TestFileCatalog_LoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallCatalog), 0o600))

	products, err := NewFileCatalog(path).LoadCatalog(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Wireless Headphones", products[0].Name)
	require.NotNil(t, products[0].DiscountPrice)
	assert.Equal(t, 149.99, *products[0].DiscountPrice)
	assert.Nil(t, products[1].DiscountPrice)
	assert.False(t, products[1].Featured)
}

func TestFileCatalog_SeedFileIsValid(t *testing.T) {
	products, err := NewFileCatalog(filepath.Join("..", "..", "testdata", "catalog.yaml")).LoadCatalog(context.Background())

	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(products), 20)
}

func TestFileCatalog_MissingFile(t *testing.T) {
	_, err := NewFileCatalog(filepath.Join(t.TempDir(), "nope.yaml")).LoadCatalog(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseCatalog_Invariants(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"empty", "products: []", ErrEmptyCatalog},
		{"duplicate id", "products:\n  - {id: 1, price: 5}\n  - {id: 1, price: 6}", ErrDuplicateID},
		{"discount not below price", "products:\n  - {id: 1, price: 5, discount_price: 5}", ErrInvalidDiscount},
		{"negative price", "products:\n  - {id: 1, price: -1}", ErrInvalidPrice},
		{"rating above five", "products:\n  - {id: 1, price: 5, rating: 5.5}", ErrInvalidRating},
		{"negative rating", "products:\n  - {id: 1, price: 5, rating: -0.5}", ErrInvalidRating},
		{"negative stock", "products:\n  - {id: 1, price: 5, stock: -3}", ErrInvalidStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.doc))
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseCatalog_Malformed(t *testing.T) {
	_, err := ParseCatalog([]byte("products: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store: failed to decode catalog")
}
