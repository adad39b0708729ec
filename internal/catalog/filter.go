package catalog

import "storefront-catalog/internal/domain"

// AvailabilityMode decides how multiple availability selections combine.
type AvailabilityMode string

const (
	// AvailabilityIntersect applies each selected availability as a successive
	// reduction, so selecting both in-stock and out-of-stock matches nothing.
	AvailabilityIntersect AvailabilityMode = "intersect"
	// AvailabilityUnion keeps a product when any selected availability matches it.
	AvailabilityUnion AvailabilityMode = "union"
)

// applyFilters returns the products that satisfy every active constraint in f,
// preserving catalog order.
func applyFilters(products []domain.Product, f domain.FilterState, mode AvailabilityMode) []domain.Product {
	categories := setOf(f.Categories)
	brands := setOf(f.Brands)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		// Base price, not the discounted one.
		if p.Price < f.MinPrice || p.Price > f.MaxPrice {
			continue
		}
		if len(categories) > 0 && !categories[p.Category] {
			continue
		}
		if len(brands) > 0 && !brands[p.Brand] {
			continue
		}
		if f.Rating != nil && p.Rating < float64(*f.Rating) {
			continue
		}
		if !matchesAvailability(p, f.Availability, mode) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesAvailability(p domain.Product, selected []domain.Availability, mode AvailabilityMode) bool {
	if len(selected) == 0 {
		return true
	}
	for _, a := range selected {
		ok := availabilityHolds(p, a)
		if mode == AvailabilityUnion && ok {
			return true
		}
		if mode != AvailabilityUnion && !ok {
			return false
		}
	}
	return mode != AvailabilityUnion
}

func availabilityHolds(p domain.Product, a domain.Availability) bool {
	switch a {
	case domain.InStock:
		return p.Stock > 0
	case domain.OutOfStock:
		return p.Stock == 0
	}
	// Unknown options never constrain.
	return true
}

func setOf(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
