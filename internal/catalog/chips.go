package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"storefront-catalog/internal/domain"
)

// Chip is one removable "active filter" badge.
type Chip struct {
	Kind  domain.FilterKind `json:"kind"`
	Type  string            `json:"type"`            // e.g. "Category"
	Label string            `json:"label"`           // e.g. "Electronics"
	Value string            `json:"value,omitempty"` // raw option id; empty for price and rating
}

// ActiveFilters lists the chips for f in display order: price, categories,
// brands, rating, availability. The price chip only appears when the range
// differs from [0, priceCeiling].
func ActiveFilters(f domain.FilterState, priceCeiling float64) []Chip {
	chips := []Chip{}

	if f.MinPrice > 0 || f.MaxPrice < priceCeiling {
		chips = append(chips, Chip{
			Kind:  domain.FilterPrice,
			Type:  "Price",
			Label: fmt.Sprintf("$%s - $%s", formatAmount(f.MinPrice), formatAmount(f.MaxPrice)),
		})
	}
	for _, c := range f.Categories {
		chips = append(chips, Chip{Kind: domain.FilterCategory, Type: "Category", Label: capitalize(c), Value: c})
	}
	for _, b := range f.Brands {
		chips = append(chips, Chip{Kind: domain.FilterBrand, Type: "Brand", Label: capitalize(b), Value: b})
	}
	if f.Rating != nil && *f.Rating > 0 {
		chips = append(chips, Chip{Kind: domain.FilterRating, Type: "Rating", Label: ratingLabel(*f.Rating)})
	}
	for _, a := range f.Availability {
		chips = append(chips, Chip{Kind: domain.FilterAvailability, Type: "Availability", Label: availabilityLabel(a), Value: string(a)})
	}
	return chips
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func ratingLabel(stars int) string {
	stars = max(0, min(stars, 5))
	return strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars)
}

func availabilityLabel(a domain.Availability) string {
	words := strings.Split(string(a), "-")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
