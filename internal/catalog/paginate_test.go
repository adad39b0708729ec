package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []int{1, 2, 3}, Paginate(items, 1, 3))
	assert.Equal(t, []int{7}, Paginate(items, 3, 3))
	assert.Equal(t, []int{}, Paginate(items, 4, 3), "one past the last page is empty")
	assert.Equal(t, []int{}, Paginate(items, 0, 3))
	assert.Equal(t, []int{}, Paginate(items, 1, 0))
	assert.Equal(t, []int{}, Paginate([]int{}, 1, 3))
	assert.Equal(t, []int{}, Paginate(items, 1_000_000_000_000_000_000, 12))
	assert.Equal(t, []int{}, Paginate(items, math.MaxInt, 3))
	assert.Equal(t, []int{}, Paginate(items, 2, math.MaxInt))
}

func TestPaginate_ReturnsCopy(t *testing.T) {
	items := []int{1, 2, 3}
	page := Paginate(items, 1, 2)
	page[0] = 99

	assert.Equal(t, []int{1, 2, 3}, items)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
	assert.Equal(t, 0, TotalPages(5, 0))
	assert.Equal(t, 1, TotalPages(5, math.MaxInt))
}

func TestBuildPageLinks(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		totalPages int
		want       PageLinks
	}{
		{"single page renders nothing", 1, 1, PageLinks{Pages: []int{}, Current: 1}},
		{"start of long list", 1, 10, PageLinks{Pages: []int{1, 2, 3, 4, 5}, Current: 1, HasNext: true}},
		{"centred window", 6, 10, PageLinks{Pages: []int{4, 5, 6, 7, 8}, Current: 6, HasPrev: true, HasNext: true}},
		{"window shifts back at the end", 10, 10, PageLinks{Pages: []int{6, 7, 8, 9, 10}, Current: 10, HasPrev: true}},
		{"fewer pages than window", 2, 3, PageLinks{Pages: []int{1, 2, 3}, Current: 2, HasPrev: true, HasNext: true}},
		{"current past the end", 40, 10, PageLinks{Pages: []int{6, 7, 8, 9, 10}, Current: 40, HasPrev: true}},
		{"huge current page", math.MaxInt, 3, PageLinks{Pages: []int{1, 2, 3}, Current: math.MaxInt, HasPrev: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPageLinks(tt.current, tt.totalPages))
		})
	}
}
