package catalog

import (
	"cmp"
	"slices"

	"storefront-catalog/internal/domain"
)

// sortProducts returns a sorted copy of products. Every ordering is stable:
// products with equal keys keep their relative input order.
// Unknown keys fall through to the featured partition.
func sortProducts(products []domain.Product, key domain.SortKey) []domain.Product {
	sorted := slices.Clone(products)

	switch key {
	case domain.SortPriceLow:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(a.EffectivePrice(), b.EffectivePrice())
		})
	case domain.SortPriceHigh:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(b.EffectivePrice(), a.EffectivePrice())
		})
	case domain.SortRating:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case domain.SortNewest:
		// No date field: newest is the reverse of catalog order.
		slices.Reverse(sorted)
	case domain.SortPopular:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(b.ReviewCount, a.ReviewCount)
		})
	case domain.SortDiscount:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(b.DiscountRatio(), a.DiscountRatio())
		})
	default:
		sorted = featuredFirst(sorted)
	}
	return sorted
}

// featuredFirst is a stable partition, not a full sort.
func featuredFirst(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	for _, p := range products {
		if !p.Featured {
			out = append(out, p)
		}
	}
	return out
}
