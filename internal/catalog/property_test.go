package catalog

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"storefront-catalog/internal/domain"
)

var (
	propCategories = []string{"electronics", "fashion", "home", "sports"}
	propBrands     = []string{"apple", "nike", "sony", "levis", "philips"}
)

// randomCatalog builds a deterministic catalog of n products from seed.
// Ratings, prices and review counts are drawn from small sets so ties are common.
func randomCatalog(seed int64, n int) []domain.Product {
	r := rand.New(rand.NewSource(seed))
	products := make([]domain.Product, n)
	for i := range products {
		price := float64(10 * (1 + r.Intn(30)))
		p := domain.Product{
			ID:          int64(i + 1),
			Category:    propCategories[r.Intn(len(propCategories))],
			Brand:       propBrands[r.Intn(len(propBrands))],
			Price:       price,
			Rating:      float64(r.Intn(11)) / 2,
			ReviewCount: r.Intn(5) * 10,
			Stock:       r.Intn(3),
			Featured:    r.Intn(3) == 0,
		}
		if r.Intn(2) == 0 {
			p.DiscountPrice = PtrTo(price * float64(1+r.Intn(4)) / 5)
		}
		products[i] = p
	}
	return products
}

func sortKeyFor(p domain.Product, key domain.SortKey) float64 {
	switch key {
	case domain.SortPriceLow, domain.SortPriceHigh:
		return p.EffectivePrice()
	case domain.SortRating:
		return p.Rating
	case domain.SortPopular:
		return float64(p.ReviewCount)
	case domain.SortDiscount:
		return p.DiscountRatio()
	}
	if p.Featured {
		return 1
	}
	return 0
}

func TestEngine_PropertyStableSorts(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("equal sort keys keep catalog order and reruns agree", prop.ForAll(
		func(seed int64, n int, keyIdx int) bool {
			key := domain.SortKeys[keyIdx]
			e := New(randomCatalog(seed, n), Options{}, nil)
			e.SetSort(key)

			first := e.ComputeVisibleProducts()
			if !slices.Equal(ids(first), ids(e.ComputeVisibleProducts())) {
				return false
			}
			if key == domain.SortNewest {
				return slices.IsSortedFunc(first, func(a, b domain.Product) int { return int(b.ID - a.ID) })
			}
			for i := 1; i < len(first); i++ {
				prev, cur := first[i-1], first[i]
				if sortKeyFor(prev, key) == sortKeyFor(cur, key) && prev.ID > cur.ID {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 40),
		gen.IntRange(0, len(domain.SortKeys)-1),
	))

	properties.TestingRun(t)
}

func TestEngine_PropertyCategoryFilterNeverGrows(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a category restriction never increases the count and ClearAll restores it", prop.ForAll(
		func(seed int64, n int, catIdx int) bool {
			e := New(randomCatalog(seed, n), Options{}, nil)
			all := len(e.ComputeVisibleProducts())

			e.ToggleCategory(propCategories[catIdx], true)
			restricted := len(e.ComputeVisibleProducts())

			e.SetFilter(domain.FilterPatch{Rating: PtrTo(3)})
			narrower := len(e.ComputeVisibleProducts())

			e.ClearAll()
			return restricted <= all && narrower <= restricted && len(e.ComputeVisibleProducts()) == all
		},
		gen.Int64(),
		gen.IntRange(0, 40),
		gen.IntRange(0, len(propCategories)-1),
	))

	properties.TestingRun(t)
}

func TestEngine_PropertyPaginationCoverage(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("pages 1..N concatenate to the full result and page N+1 is empty", prop.ForAll(
		func(seed int64, n int, pageSize int) bool {
			visible := New(randomCatalog(seed, n), Options{}, nil).ComputeVisibleProducts()
			totalPages := TotalPages(len(visible), pageSize)

			var joined []domain.Product
			for page := 1; page <= totalPages; page++ {
				joined = append(joined, Paginate(visible, page, pageSize)...)
			}
			return slices.Equal(ids(joined), ids(visible)) &&
				len(Paginate(visible, totalPages+1, pageSize)) == 0
		},
		gen.Int64(),
		gen.IntRange(0, 60),
		gen.IntRange(1, 15),
	))

	properties.TestingRun(t)
}
