package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestProduct_Pricing(t *testing.T) {
	p := Product{Price: 100, DiscountPrice: ptr(50)}
	assert.True(t, p.HasDiscount())
	assert.Equal(t, 50.0, p.EffectivePrice())
	assert.Equal(t, 50, p.DiscountPercent())

	plain := Product{Price: 80}
	assert.False(t, plain.HasDiscount())
	assert.Equal(t, 80.0, plain.EffectivePrice())
	assert.Equal(t, 0.0, plain.DiscountRatio())

	zero := Product{Price: 80, DiscountPrice: ptr(0)}
	assert.False(t, zero.HasDiscount(), "a zero discount price counts as absent")
	assert.Equal(t, 80.0, zero.EffectivePrice())

	odd := Product{Price: 3, DiscountPrice: ptr(2)}
	assert.Equal(t, 33, odd.DiscountPercent())
}

func TestStars(t *testing.T) {
	tests := []struct {
		rating float64
		want   StarRating
	}{
		{0, StarRating{Full: 0, Half: 0, Empty: 5}},
		{3.4, StarRating{Full: 3, Half: 0, Empty: 2}},
		{4.5, StarRating{Full: 4, Half: 1, Empty: 0}},
		{5, StarRating{Full: 5, Half: 0, Empty: 0}},
		{7, StarRating{Full: 5, Half: 0, Empty: 0}},
		{-1, StarRating{Full: 0, Half: 0, Empty: 5}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stars(tt.rating), "rating %v", tt.rating)
	}
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceLow, ParseSortKey("price-low"))
	assert.Equal(t, SortDiscount, ParseSortKey(" Discount "))
	assert.Equal(t, SortFeatured, ParseSortKey("alphabetical"))
	assert.Equal(t, SortFeatured, ParseSortKey(""))
}

func TestParseFilterKindAndAvailability(t *testing.T) {
	k, ok := ParseFilterKind("Brand")
	assert.True(t, ok)
	assert.Equal(t, FilterBrand, k)
	_, ok = ParseFilterKind("colour")
	assert.False(t, ok)

	a, ok := ParseAvailability("out-of-stock")
	assert.True(t, ok)
	assert.Equal(t, OutOfStock, a)
	_, ok = ParseAvailability("backorder")
	assert.False(t, ok)
}

func TestFilterPatch_IsEmpty(t *testing.T) {
	assert.True(t, FilterPatch{}.IsEmpty())
	assert.False(t, FilterPatch{Categories: []string{}}.IsEmpty())
	assert.False(t, FilterPatch{ClearRating: true}.IsEmpty())
}
