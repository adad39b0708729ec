// Package catalog implements the storefront catalog filter engine: it filters,
// sorts and paginates a fixed product list according to a mutable FilterState
// and hands every recomputed view to a Renderer.
package catalog

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront-catalog/internal/domain"
)

const (
	DefaultPageSize     = 12
	DefaultPriceCeiling = 1000
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	PageSize         int
	PriceCeiling     float64
	AvailabilityMode AvailabilityMode
	// RenderDelay postpones each render to simulate a slow backend. Pending
	// renders are never cancelled or debounced; the last one to fire wins.
	RenderDelay time.Duration
	Logger      *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PriceCeiling <= 0 {
		o.PriceCeiling = DefaultPriceCeiling
	}
	if o.AvailabilityMode != AvailabilityUnion {
		o.AvailabilityMode = AvailabilityIntersect
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Renderer receives every recomputed View.
type Renderer interface {
	Render(View)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(View)

func (f RenderFunc) Render(v View) { f(v) }

// Pagination summarises the current page of a View.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// View is everything a renderer needs: the visible page, counts, and the
// filter state behind it.
type View struct {
	Items         []domain.Product   `json:"items"`
	Pagination    Pagination         `json:"pagination"`
	Filters       domain.FilterState `json:"filters"`
	ActiveFilters []Chip             `json:"active_filters"`
	PageLinks     PageLinks          `json:"page_links"`
}

// Snapshot is the serialisable part of an Engine: filters and page state.
type Snapshot struct {
	Filters  domain.FilterState `json:"filters"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// Engine owns one FilterState and PageState over a read-only catalog.
// It is safe for concurrent use.
type Engine struct {
	products []domain.Product
	opts     Options
	renderer Renderer
	logger   *zap.Logger

	mu       sync.Mutex
	filters  domain.FilterState
	page     int
	pageSize int

	pending sync.WaitGroup
}

// New creates an Engine over products with unfiltered state. renderer may be nil.
// The engine never modifies products.
func New(products []domain.Product, opts Options, renderer Renderer) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		products: products,
		opts:     opts,
		renderer: renderer,
		logger:   opts.Logger,
		filters:  domain.DefaultFilterState(opts.PriceCeiling),
		page:     1,
		pageSize: opts.PageSize,
	}
}

// Restore creates an Engine whose state comes from snap. Out-of-domain values
// in snap are coerced to defaults.
func Restore(products []domain.Product, snap Snapshot, opts Options, renderer Renderer) *Engine {
	e := New(products, opts, renderer)
	f := snap.Filters.Clone()
	f.SortKey = domain.ParseSortKey(string(f.SortKey))
	e.filters = f
	if snap.Page >= 1 {
		e.page = snap.Page
	}
	if snap.PageSize > 0 {
		e.pageSize = snap.PageSize
	}
	return e
}

// Snapshot captures the current filter and page state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{Filters: e.filters.Clone(), Page: e.page, PageSize: e.pageSize}
}

// Options returns the effective options of the engine.
func (e *Engine) Options() Options {
	return e.opts
}

// Filters returns a copy of the current FilterState.
func (e *Engine) Filters() domain.FilterState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters.Clone()
}

// ComputeVisibleProducts filters and sorts the whole catalog against the
// current state. It recomputes from scratch on every call and has no side effects.
func (e *Engine) ComputeVisibleProducts() []domain.Product {
	e.mu.Lock()
	f := e.filters.Clone()
	e.mu.Unlock()
	return e.compute(f)
}

func (e *Engine) compute(f domain.FilterState) []domain.Product {
	return sortProducts(applyFilters(e.products, f, e.opts.AvailabilityMode), f.SortKey)
}

// View computes the current page and its metadata. An out-of-range current
// page yields an empty item list.
func (e *Engine) View() View {
	e.mu.Lock()
	f := e.filters.Clone()
	page, size := e.page, e.pageSize
	e.mu.Unlock()

	visible := e.compute(f)
	totalPages := TotalPages(len(visible), size)
	return View{
		Items: Paginate(visible, page, size),
		Pagination: Pagination{
			Page:       page,
			PageSize:   size,
			TotalItems: len(visible),
			TotalPages: totalPages,
		},
		Filters:       f,
		ActiveFilters: ActiveFilters(f, e.opts.PriceCeiling),
		PageLinks:     BuildPageLinks(page, totalPages),
	}
}

// Refresh hands the current View to the renderer, after RenderDelay when set.
func (e *Engine) Refresh() {
	if e.renderer == nil {
		return
	}
	if e.opts.RenderDelay <= 0 {
		e.renderer.Render(e.View())
		return
	}
	e.pending.Add(1)
	time.AfterFunc(e.opts.RenderDelay, func() {
		defer e.pending.Done()
		e.renderer.Render(e.View())
	})
}

// Wait blocks until every delayed render scheduled so far has fired.
func (e *Engine) Wait() {
	e.pending.Wait()
}

// mutate applies fn under the lock, resets the page to 1 and refreshes.
func (e *Engine) mutate(op string, fn func(f *domain.FilterState)) {
	e.mu.Lock()
	fn(&e.filters)
	e.page = 1
	e.mu.Unlock()

	e.logger.Debug("catalog state changed", zap.String("op", op))
	e.Refresh()
}

// SetFilter applies patch and restarts pagination at page 1.
// A patch with minPrice > maxPrice is accepted and simply matches nothing.
func (e *Engine) SetFilter(patch domain.FilterPatch) {
	e.mutate("set_filter", func(f *domain.FilterState) {
		if patch.MinPrice != nil {
			f.MinPrice = *patch.MinPrice
		}
		if patch.MaxPrice != nil {
			f.MaxPrice = *patch.MaxPrice
		}
		if patch.Categories != nil {
			f.Categories = dedupe(patch.Categories)
		}
		if patch.Brands != nil {
			f.Brands = dedupe(patch.Brands)
		}
		if patch.ClearRating {
			f.Rating = nil
		}
		if patch.Rating != nil {
			if *patch.Rating <= 0 {
				f.Rating = nil
			} else {
				r := min(*patch.Rating, 5)
				f.Rating = &r
			}
		}
		if patch.Availability != nil {
			f.Availability = dedupe(patch.Availability)
		}
	})
}

// ToggleCategory checks or unchecks a single category option.
func (e *Engine) ToggleCategory(category string, checked bool) {
	e.mutate("toggle_category", func(f *domain.FilterState) {
		f.Categories = ToggleMember(f.Categories, category, checked)
	})
}

// ToggleBrand checks or unchecks a single brand option.
func (e *Engine) ToggleBrand(brand string, checked bool) {
	e.mutate("toggle_brand", func(f *domain.FilterState) {
		f.Brands = ToggleMember(f.Brands, brand, checked)
	})
}

// ToggleAvailability checks or unchecks a single availability option.
func (e *Engine) ToggleAvailability(a domain.Availability, checked bool) {
	e.mutate("toggle_availability", func(f *domain.FilterState) {
		f.Availability = ToggleMember(f.Availability, a, checked)
	})
}

// ClearFilter resets one kind of filter to its unfiltered default.
// Unknown kinds leave the filters untouched but still restart at page 1.
func (e *Engine) ClearFilter(kind domain.FilterKind) {
	e.mutate("clear_filter", func(f *domain.FilterState) {
		clearKind(f, kind, e.opts.PriceCeiling)
	})
}

// RemoveActiveFilter drops a single chip. Price and rating chips clear their
// whole kind; set filters lose only value.
func (e *Engine) RemoveActiveFilter(kind domain.FilterKind, value string) {
	e.mutate("remove_active_filter", func(f *domain.FilterState) {
		switch kind {
		case domain.FilterCategory:
			f.Categories = ToggleMember(f.Categories, value, false)
		case domain.FilterBrand:
			f.Brands = ToggleMember(f.Brands, value, false)
		case domain.FilterAvailability:
			f.Availability = ToggleMember(f.Availability, domain.Availability(value), false)
		default:
			clearKind(f, kind, e.opts.PriceCeiling)
		}
	})
}

// ClearAll resets every filter and the sort key.
func (e *Engine) ClearAll() {
	e.mutate("clear_all", func(f *domain.FilterState) {
		*f = domain.DefaultFilterState(e.opts.PriceCeiling)
	})
}

// SetSort changes the ordering and restarts at page 1.
func (e *Engine) SetSort(key domain.SortKey) {
	e.mutate("set_sort", func(f *domain.FilterState) {
		f.SortKey = domain.ParseSortKey(string(key))
	})
}

// SetPageSize changes the page size and restarts at page 1.
// Non-positive sizes select the configured default.
func (e *Engine) SetPageSize(size int) {
	if size <= 0 {
		size = e.opts.PageSize
	}
	e.mu.Lock()
	e.pageSize = size
	e.page = 1
	e.mu.Unlock()

	e.logger.Debug("catalog page size changed", zap.Int("page_size", size))
	e.Refresh()
}

// ChangePage moves to page when it exists and differs from the current page.
// It reports whether the page changed.
func (e *Engine) ChangePage(page int) bool {
	e.mu.Lock()
	totalPages := TotalPages(len(e.compute(e.filters)), e.pageSize)
	if page < 1 || page > totalPages || page == e.page {
		e.mu.Unlock()
		return false
	}
	e.page = page
	e.mu.Unlock()

	e.Refresh()
	return true
}

// ProductByID looks up a product in the catalog.
func (e *Engine) ProductByID(id int64) (domain.Product, bool) {
	i := slices.IndexFunc(e.products, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		return domain.Product{}, false
	}
	return e.products[i], true
}

// Facets returns the filter metadata for the whole catalog.
func (e *Engine) Facets() Facets {
	return BuildFacets(e.products)
}

func clearKind(f *domain.FilterState, kind domain.FilterKind, priceCeiling float64) {
	switch kind {
	case domain.FilterPrice:
		f.MinPrice, f.MaxPrice = 0, priceCeiling
	case domain.FilterCategory:
		f.Categories = []string{}
	case domain.FilterBrand:
		f.Brands = []string{}
	case domain.FilterRating:
		f.Rating = nil
	case domain.FilterAvailability:
		f.Availability = []domain.Availability{}
	}
}

func dedupe[T comparable](values []T) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		out = ToggleMember(out, v, true)
	}
	return out
}
