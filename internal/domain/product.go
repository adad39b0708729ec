package domain

import "math"

// Product represents a product in the storefront catalog.
// Products are loaded once at startup and never mutated afterwards.
type Product struct {
	ID            int64    `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description,omitempty" yaml:"description"`
	Category      string   `json:"category" yaml:"category"`
	Brand         string   `json:"brand" yaml:"brand"`
	Price         float64  `json:"price" yaml:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty" yaml:"discount_price"` // nil when the product is not discounted
	Rating        float64  `json:"rating" yaml:"rating"`                           // 0-5
	ReviewCount   int      `json:"review_count" yaml:"review_count"`
	Stock         int      `json:"stock" yaml:"stock"`
	Featured      bool     `json:"featured" yaml:"featured"`
	ImageURL      string   `json:"image_url,omitempty" yaml:"image_url"`
}

// HasDiscount reports whether the product carries a usable discount price.
// A zero discount price counts as absent.
func (p Product) HasDiscount() bool {
	return p.DiscountPrice != nil && *p.DiscountPrice > 0
}

// EffectivePrice is the price a shopper pays: the discount price when present,
// otherwise the base price.
func (p Product) EffectivePrice() float64 {
	if p.HasDiscount() {
		return *p.DiscountPrice
	}
	return p.Price
}

// DiscountRatio returns the discount as a percentage of the base price,
// unrounded. Products without a discount (or with a non-positive price) return 0.
func (p Product) DiscountRatio() float64 {
	if !p.HasDiscount() || p.Price <= 0 {
		return 0
	}
	return (p.Price - *p.DiscountPrice) / p.Price * 100
}

// DiscountPercent is DiscountRatio rounded to the nearest whole percent, as shown on badges.
func (p Product) DiscountPercent() int {
	return int(math.Round(p.DiscountRatio()))
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// StarRating splits a 0-5 rating into full, half and empty stars.
// A half star is shown when the fractional part is at least 0.5.
type StarRating struct {
	Full  int `json:"full"`
	Half  int `json:"half"`
	Empty int `json:"empty"`
}

// Stars computes the StarRating for rating, clamped to 0-5.
func Stars(rating float64) StarRating {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	full := int(math.Floor(rating))
	half := 0
	if full < 5 && rating-float64(full) >= 0.5 {
		half = 1
	}
	return StarRating{Full: full, Half: half, Empty: 5 - full - half}
}
