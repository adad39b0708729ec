package catalog

import "storefront-catalog/internal/domain"

// PtrTo returns a pointer to v (useful for optional fields in domain structs).
func PtrTo[T any](v T) *T {
	return &v
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

// sampleCatalog is a small storefront catalog in insertion order.
func sampleCatalog() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Wireless Headphones", Category: "electronics", Brand: "sony", Price: 199.99, DiscountPrice: PtrTo(149.99), Rating: 4.5, ReviewCount: 120, Stock: 15, Featured: true},
		{ID: 2, Name: "Running Shoes", Category: "fashion", Brand: "nike", Price: 89.99, Rating: 4.2, ReviewCount: 85, Stock: 0, Featured: false},
		{ID: 3, Name: "Smart Watch", Category: "electronics", Brand: "apple", Price: 399, DiscountPrice: PtrTo(349.0), Rating: 4.8, ReviewCount: 230, Stock: 7, Featured: true},
		{ID: 4, Name: "Coffee Maker", Category: "home", Brand: "philips", Price: 59.5, Rating: 3.9, ReviewCount: 40, Stock: 22, Featured: false},
		{ID: 5, Name: "Yoga Mat", Category: "sports", Brand: "nike", Price: 25, DiscountPrice: PtrTo(20.0), Rating: 4.2, ReviewCount: 85, Stock: 0, Featured: false},
		{ID: 6, Name: "Laptop Stand", Category: "electronics", Brand: "logitech", Price: 45, Rating: 4.0, ReviewCount: 12, Stock: 3, Featured: true},
		{ID: 7, Name: "4K Television", Category: "electronics", Brand: "samsung", Price: 1299, DiscountPrice: PtrTo(999.0), Rating: 4.6, ReviewCount: 310, Stock: 5, Featured: false},
		{ID: 8, Name: "Denim Jacket", Category: "fashion", Brand: "levis", Price: 120, Rating: 3.5, ReviewCount: 18, Stock: 9, Featured: false},
	}
}
