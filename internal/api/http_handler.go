package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/store"
)

const maxPageSize = 100

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	products  []domain.Product
	opts      catalog.Options
	sessions  store.SessionStorer
	wishlists store.WishlistStorer
	validate  *validator.Validate
	logger    *zap.Logger
	newID     func() string
}

// NewHTTPHandler creates a new HTTPHandler over a loaded catalog.
func NewHTTPHandler(products []domain.Product, opts catalog.Options, ss store.SessionStorer, ws store.WishlistStorer, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		products:  products,
		opts:      opts,
		sessions:  ss,
		wishlists: ws,
		validate:  validator.New(),
		logger:    logger,
		newID:     func() string { return uuid.NewString() },
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether the caller may continue.
func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

func (h *HTTPHandler) newEngine(snap *catalog.Snapshot) *catalog.Engine {
	if snap == nil {
		return catalog.New(h.products, h.opts, nil)
	}
	return catalog.Restore(h.products, *snap, h.opts, nil)
}

// --- Stateless catalog queries ---

// ListProducts evaluates one query built from URL parameters:
// min_price, max_price, category, brand, rating, availability, sort, page, page_size.
func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	engine := h.newEngine(&catalog.Snapshot{
		Filters:  catalog.FilterStateFromValues(q, h.engineOptions().PriceCeiling),
		Page:     max(1, parsePositive(q.Get("page"), 1)),
		PageSize: min(maxPageSize, catalog.ParsePageSize(q.Get("page_size"), h.engineOptions().PageSize)),
	})
	h.respondWithJSON(w, http.StatusOK, engine.View())
}

// ProductDetail is a product plus the values a detail view derives from it.
type ProductDetail struct {
	domain.Product
	EffectivePrice  float64           `json:"effective_price"`
	DiscountPercent int               `json:"discount_percent"`
	InStock         bool              `json:"in_stock"`
	Stars           domain.StarRating `json:"stars"`
}

func newProductDetail(p domain.Product) ProductDetail {
	return ProductDetail{
		Product:         p,
		EffectivePrice:  p.EffectivePrice(),
		DiscountPercent: p.DiscountPercent(),
		InStock:         p.InStock(),
		Stars:           domain.Stars(p.Rating),
	}
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		h.respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	product, ok := h.newEngine(nil).ProductByID(productID)
	if !ok {
		h.respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		return
	}
	h.respondWithJSON(w, http.StatusOK, newProductDetail(product))
}

func (h *HTTPHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.newEngine(nil).Facets())
}

// --- Browse sessions ---

// SessionResponse is a session's current view with its id.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	catalog.View
}

// SessionCreateInput optionally seeds a new session.
type SessionCreateInput struct {
	PageSize int                 `json:"page_size" validate:"omitempty,gt=0,lte=100"`
	SortKey  string              `json:"sort_key" validate:"omitempty,max=32"`
	Filters  *domain.FilterPatch `json:"filters"`
}

// SortInput changes the ordering. Unknown keys select "featured".
type SortInput struct {
	SortKey string `json:"sort_key" validate:"required,max=32"`
}

// PageSizeInput changes the page size.
type PageSizeInput struct {
	PageSize int `json:"page_size" validate:"required,gt=0,lte=100"`
}

// PageInput moves to another page.
type PageInput struct {
	Page int `json:"page" validate:"required,gte=1"`
}

func (h *HTTPHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var input SessionCreateInput
	if r.ContentLength != 0 {
		if !h.decodeAndValidate(w, r, &input) {
			return
		}
	}

	engine := h.newEngine(nil)
	if input.Filters != nil {
		if err := h.validate.Struct(input.Filters); err != nil {
			h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
			return
		}
		engine.SetFilter(*input.Filters)
	}
	if input.SortKey != "" {
		engine.SetSort(domain.SortKey(input.SortKey))
	}
	if input.PageSize > 0 {
		engine.SetPageSize(input.PageSize)
	}

	id := h.newID()
	if err := h.sessions.SaveSession(r.Context(), id, engine.Snapshot()); err != nil {
		h.logger.Error("CreateSession store operation failed", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to create browse session")
		return
	}
	h.logger.Info("browse session created", zap.String("session_id", id))
	h.respondWithJSON(w, http.StatusCreated, SessionResponse{SessionID: id, View: engine.View()})
}

// withSession loads the session named in the URL, applies op to its engine,
// saves the new snapshot and responds with the resulting view.
func (h *HTTPHandler) withSession(w http.ResponseWriter, r *http.Request, op func(e *catalog.Engine)) {
	id := chi.URLParam(r, "sessionId")
	if _, err := uuid.Parse(id); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	snap, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			h.respondWithError(w, http.StatusNotFound, store.ErrSessionNotFound.Error())
		} else {
			h.logger.Error("GetSession store operation failed", zap.String("session_id", id), zap.Error(err))
			h.respondWithError(w, http.StatusInternalServerError, "Failed to load browse session")
		}
		return
	}

	engine := h.newEngine(&snap)
	if op != nil {
		op(engine)
		if err := h.sessions.SaveSession(r.Context(), id, engine.Snapshot()); err != nil {
			h.logger.Error("SaveSession store operation failed", zap.String("session_id", id), zap.Error(err))
			h.respondWithError(w, http.StatusInternalServerError, "Failed to save browse session")
			return
		}
	}
	h.respondWithJSON(w, http.StatusOK, SessionResponse{SessionID: id, View: engine.View()})
}

func (h *HTTPHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, nil)
}

func (h *HTTPHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var patch domain.FilterPatch
	if !h.decodeAndValidate(w, r, &patch) {
		return
	}
	if patch.IsEmpty() {
		h.respondWithError(w, http.StatusBadRequest, "Filter update must change at least one filter")
		return
	}
	h.withSession(w, r, func(e *catalog.Engine) { e.SetFilter(patch) })
}

func (h *HTTPHandler) ClearAllFilters(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(e *catalog.Engine) { e.ClearAll() })
}

// ClearFilter clears one kind of filter, or just ?value= from it.
func (h *HTTPHandler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseFilterKind(chi.URLParam(r, "kind"))
	if !ok {
		h.respondWithError(w, http.StatusBadRequest, "Invalid filter kind. Allowed: price, category, brand, rating, availability")
		return
	}
	value := r.URL.Query().Get("value")
	h.withSession(w, r, func(e *catalog.Engine) {
		if value != "" {
			e.RemoveActiveFilter(kind, value)
			return
		}
		e.ClearFilter(kind)
	})
}

func (h *HTTPHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var input SortInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.withSession(w, r, func(e *catalog.Engine) { e.SetSort(domain.SortKey(input.SortKey)) })
}

func (h *HTTPHandler) SetPageSize(w http.ResponseWriter, r *http.Request) {
	var input PageSizeInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.withSession(w, r, func(e *catalog.Engine) { e.SetPageSize(input.PageSize) })
}

// ChangePage ignores pages that don't exist; the response shows the page actually in effect.
func (h *HTTPHandler) ChangePage(w http.ResponseWriter, r *http.Request) {
	var input PageInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.withSession(w, r, func(e *catalog.Engine) { e.ChangePage(input.Page) })
}

func (h *HTTPHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if _, err := uuid.Parse(id); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}
	if err := h.sessions.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			h.respondWithError(w, http.StatusNotFound, store.ErrSessionNotFound.Error())
		} else {
			h.logger.Error("DeleteSession store operation failed", zap.String("session_id", id), zap.Error(err))
			h.respondWithError(w, http.StatusInternalServerError, "Failed to delete browse session")
		}
		return
	}
	h.respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Wishlists ---

// WishlistAddInput defines the expected input for saving a product.
type WishlistAddInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// WishlistResponse lists the saved products of one owner, in the order they were added.
type WishlistResponse struct {
	OwnerID  string           `json:"owner_id"`
	Products []domain.Product `json:"products"`
}

func (h *HTTPHandler) ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := chi.URLParam(r, "ownerId")
	if err := h.validate.Var(owner, "required,max=64,printascii"); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid owner ID")
		return "", false
	}
	return owner, true
}

func (h *HTTPHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}
	ids, err := h.wishlists.ListWishlist(r.Context(), owner)
	if err != nil {
		h.logger.Error("ListWishlist store operation failed", zap.String("owner_id", owner), zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to retrieve wishlist")
		return
	}

	engine := h.newEngine(nil)
	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, found := engine.ProductByID(id); found {
			products = append(products, p)
		}
	}
	h.respondWithJSON(w, http.StatusOK, WishlistResponse{OwnerID: owner, Products: products})
}

func (h *HTTPHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}
	var input WishlistAddInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	if _, found := h.newEngine(nil).ProductByID(input.ProductID); !found {
		h.respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		return
	}

	added, err := h.wishlists.AddToWishlist(r.Context(), owner, input.ProductID)
	if err != nil {
		h.logger.Error("AddToWishlist store operation failed", zap.String("owner_id", owner), zap.Int64("product_id", input.ProductID), zap.Error(err))
		if errors.Is(err, store.ErrProductNotFound) {
			h.respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		} else {
			h.respondWithError(w, http.StatusInternalServerError, "Failed to update wishlist")
		}
		return
	}
	code := http.StatusOK
	if added {
		code = http.StatusCreated
	}
	h.respondWithJSON(w, code, map[string]interface{}{"product_id": input.ProductID, "added": added})
}

func (h *HTTPHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerID(w, r)
	if !ok {
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		h.respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	if err := h.wishlists.RemoveFromWishlist(r.Context(), owner, productID); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Product is not on the wishlist")
		} else {
			h.logger.Error("RemoveFromWishlist store operation failed", zap.String("owner_id", owner), zap.Error(err))
			h.respondWithError(w, http.StatusInternalServerError, "Failed to update wishlist")
		}
		return
	}
	h.respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)        // GET /api/v1/products
		r.Get("/facets", h.GetFacets)     // before {productId} so "facets" isn't parsed as an ID
		r.Get("/{productId}", h.GetProductByID)
	})

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Patch("/filters", h.UpdateFilters)
			r.Delete("/filters", h.ClearAllFilters)
			r.Delete("/filters/{kind}", h.ClearFilter)
			r.Put("/sort", h.SetSort)
			r.Put("/page-size", h.SetPageSize)
			r.Put("/page", h.ChangePage)
		})
	})

	r.Route("/api/v1/wishlists/{ownerId}", func(r chi.Router) {
		r.Get("/", h.GetWishlist)
		r.Post("/", h.AddToWishlist)
		r.Delete("/{productId}", h.RemoveFromWishlist)
	})
}

func (h *HTTPHandler) engineOptions() catalog.Options {
	return h.newEngine(nil).Options()
}

func parsePositive(raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
