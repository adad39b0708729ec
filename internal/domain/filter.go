package domain

import "strings"

// SortKey names an ordering of the visible products.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
	SortPopular   SortKey = "popular"
	SortDiscount  SortKey = "discount"
)

// SortKeys lists every supported sort key in display order.
var SortKeys = []SortKey{SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortNewest, SortPopular, SortDiscount}

// ParseSortKey maps raw input to a SortKey. Unknown values fall back to SortFeatured.
func ParseSortKey(raw string) SortKey {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range SortKeys {
		if k == key {
			return k
		}
	}
	return SortFeatured
}

// Availability is a stock-status filter option.
type Availability string

const (
	InStock    Availability = "in-stock"
	OutOfStock Availability = "out-of-stock"
)

// ParseAvailability returns the Availability for raw, and false when raw is not a known option.
func ParseAvailability(raw string) (Availability, bool) {
	switch Availability(strings.ToLower(strings.TrimSpace(raw))) {
	case InStock:
		return InStock, true
	case OutOfStock:
		return OutOfStock, true
	}
	return "", false
}

// FilterKind identifies one group of filter controls.
type FilterKind string

const (
	FilterPrice        FilterKind = "price"
	FilterCategory     FilterKind = "category"
	FilterBrand        FilterKind = "brand"
	FilterRating       FilterKind = "rating"
	FilterAvailability FilterKind = "availability"
)

// ParseFilterKind returns the FilterKind for raw, and false when raw is unknown.
func ParseFilterKind(raw string) (FilterKind, bool) {
	switch k := FilterKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case FilterPrice, FilterCategory, FilterBrand, FilterRating, FilterAvailability:
		return k, true
	}
	return "", false
}

// FilterState is the full set of constraints applied to the catalog.
// Empty Categories, Brands and Availability mean "no filter", not "nothing matches".
type FilterState struct {
	MinPrice     float64        `json:"min_price"`
	MaxPrice     float64        `json:"max_price"`
	Categories   []string       `json:"categories"`
	Brands       []string       `json:"brands"`
	Rating       *int           `json:"rating,omitempty"` // minimum stars; nil disables the filter
	Availability []Availability `json:"availability"`
	SortKey      SortKey        `json:"sort_key"`
}

// DefaultFilterState returns the unfiltered state for a catalog whose price
// slider tops out at priceCeiling.
func DefaultFilterState(priceCeiling float64) FilterState {
	return FilterState{
		MinPrice:     0,
		MaxPrice:     priceCeiling,
		Categories:   []string{},
		Brands:       []string{},
		Availability: []Availability{},
		SortKey:      SortFeatured,
	}
}

// Clone returns a deep copy so callers can't alias the engine's slices.
func (f FilterState) Clone() FilterState {
	out := f
	out.Categories = append([]string{}, f.Categories...)
	out.Brands = append([]string{}, f.Brands...)
	out.Availability = append([]Availability{}, f.Availability...)
	if f.Rating != nil {
		r := *f.Rating
		out.Rating = &r
	}
	return out
}

// FilterPatch carries a partial update to a FilterState. Nil fields are left untouched.
// A non-nil empty slice clears that set. ClearRating removes the rating floor.
type FilterPatch struct {
	MinPrice     *float64       `json:"min_price,omitempty" validate:"omitempty,gte=0"`
	MaxPrice     *float64       `json:"max_price,omitempty" validate:"omitempty,gte=0"`
	Categories   []string       `json:"categories,omitempty" validate:"omitempty,dive,required,max=100"`
	Brands       []string       `json:"brands,omitempty" validate:"omitempty,dive,required,max=100"`
	Rating       *int           `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ClearRating  bool           `json:"clear_rating,omitempty"`
	Availability []Availability `json:"availability,omitempty" validate:"omitempty,dive,oneof=in-stock out-of-stock"`
}

// IsEmpty reports whether the patch changes nothing.
func (p FilterPatch) IsEmpty() bool {
	return p.MinPrice == nil && p.MaxPrice == nil && p.Categories == nil && p.Brands == nil &&
		p.Rating == nil && !p.ClearRating && p.Availability == nil
}
