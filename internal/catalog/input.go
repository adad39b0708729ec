package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"storefront-catalog/internal/domain"
)

// ParsePrice parses a price field. Empty or unparseable input returns fallback.
func ParsePrice(raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// ParsePriceBounds parses the min/max price inputs, defaulting to the
// unfiltered bounds [0, priceCeiling].
func ParsePriceBounds(minRaw, maxRaw string, priceCeiling float64) (float64, float64) {
	return ParsePrice(minRaw, 0), ParsePrice(maxRaw, priceCeiling)
}

// ParseRating parses a minimum star rating. Empty, unparseable or zero input
// disables the filter; values above 5 are capped.
func ParseRating(raw string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return nil
	}
	v = min(v, 5)
	return &v
}

// ParsePageSize parses a page size selection, falling back to def for
// anything that is not a positive integer.
func ParsePageSize(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// ToggleMember adds value to set when checked and removes it otherwise.
// The returned slice never contains duplicates and keeps insertion order.
func ToggleMember[T comparable](set []T, value T, checked bool) []T {
	out := make([]T, 0, len(set)+1)
	found := false
	for _, v := range set {
		if v == value {
			if checked && !found {
				out = append(out, v)
			}
			found = true
			continue
		}
		out = append(out, v)
	}
	if checked && !found {
		out = append(out, value)
	}
	return out
}

// FilterStateFromValues builds a FilterState from query-style input:
// min_price, max_price, category, brand, rating, availability and sort.
// Repeated keys and comma-separated values are both accepted for the set filters.
func FilterStateFromValues(values url.Values, priceCeiling float64) domain.FilterState {
	f := domain.DefaultFilterState(priceCeiling)
	f.MinPrice, f.MaxPrice = ParsePriceBounds(values.Get("min_price"), values.Get("max_price"), priceCeiling)

	for _, c := range splitValues(values["category"]) {
		f.Categories = ToggleMember(f.Categories, c, true)
	}
	for _, b := range splitValues(values["brand"]) {
		f.Brands = ToggleMember(f.Brands, b, true)
	}
	f.Rating = ParseRating(values.Get("rating"))
	for _, raw := range splitValues(values["availability"]) {
		if a, ok := domain.ParseAvailability(raw); ok {
			f.Availability = ToggleMember(f.Availability, a, true)
		}
	}
	f.SortKey = domain.ParseSortKey(values.Get("sort"))
	return f
}

func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
