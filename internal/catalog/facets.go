package catalog

import (
	"cmp"
	"slices"

	"storefront-catalog/internal/domain"
)

// PriceRange is the span of base prices in a product set.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AvailabilityCounts counts products on each side of the stock line.
type AvailabilityCounts struct {
	InStock    int `json:"in_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// FacetOption is one selectable category or brand with its product count.
type FacetOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Facets holds the filter metadata a storefront needs to render its sidebar.
type Facets struct {
	PriceRange   PriceRange         `json:"price_range"`
	Availability AvailabilityCounts `json:"availability"`
	Categories   []FacetOption      `json:"categories"`
	Brands       []FacetOption      `json:"brands"`
}

// BuildFacets derives filter options from the typed product fields.
// Options are sorted by value.
func BuildFacets(products []domain.Product) Facets {
	f := Facets{Categories: []FacetOption{}, Brands: []FacetOption{}}
	categories := map[string]int{}
	brands := map[string]int{}

	for i, p := range products {
		if i == 0 || p.Price < f.PriceRange.Min {
			f.PriceRange.Min = p.Price
		}
		if i == 0 || p.Price > f.PriceRange.Max {
			f.PriceRange.Max = p.Price
		}
		if p.InStock() {
			f.Availability.InStock++
		} else {
			f.Availability.OutOfStock++
		}
		if p.Category != "" {
			categories[p.Category]++
		}
		if p.Brand != "" {
			brands[p.Brand]++
		}
	}

	f.Categories = facetOptions(categories)
	f.Brands = facetOptions(brands)
	return f
}

func facetOptions(counts map[string]int) []FacetOption {
	out := make([]FacetOption, 0, len(counts))
	for v, n := range counts {
		out = append(out, FacetOption{Value: v, Label: capitalize(v), Count: n})
	}
	slices.SortFunc(out, func(a, b FacetOption) int { return cmp.Compare(a.Value, b.Value) })
	return out
}
