package catalog

import "slices"

// maxVisiblePages bounds the number of numbered links in PageLinks.
const maxVisiblePages = 5

// Paginate returns the 1-based page of items of size pageSize, clamped to the
// bounds of items. A page past the end (or a non-positive page or size) yields
// an empty slice rather than an error.
func Paginate[T any](items []T, page, pageSize int) []T {
	// Compare pages, not offsets: (page-1)*pageSize overflows for huge pages.
	if page < 1 || pageSize <= 0 || page > TotalPages(len(items), pageSize) {
		return []T{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	return slices.Clone(items[start:end])
}

// TotalPages is ceil(total / pageSize), or 0 for an empty result.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total-1)/pageSize + 1
}

// PageLinks describes the pagination control for the current page.
type PageLinks struct {
	Pages   []int `json:"pages"`
	Current int   `json:"current"`
	HasPrev bool  `json:"has_prev"`
	HasNext bool  `json:"has_next"`
}

// BuildPageLinks returns a window of at most five page numbers around current.
// Nothing is rendered when there is at most one page.
func BuildPageLinks(current, totalPages int) PageLinks {
	links := PageLinks{Pages: []int{}, Current: current}
	if totalPages <= 1 {
		return links
	}

	start := max(1, min(current, totalPages)-maxVisiblePages/2)
	end := min(totalPages, start+maxVisiblePages-1)
	if end-start+1 < maxVisiblePages {
		start = max(1, end-maxVisiblePages+1)
	}
	for i := start; i <= end; i++ {
		links.Pages = append(links.Pages, i)
	}
	links.HasPrev = current > 1
	links.HasNext = current < totalPages
	return links
}
