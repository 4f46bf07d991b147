package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmandercodes/IoTBayy/internal/cart"
	"github.com/charmandercodes/IoTBayy/internal/catalog"
	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Carts is the cart service surface the endpoints mutate through.
type Carts interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Add(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	Lines(ctx context.Context, sessionID string) ([]cart.Line, decimal.Decimal, error)
}

// cartChangedTrigger tells the frontend to re-render its cart widget.
const cartChangedTrigger = "hx_menu_cart"

type CartHandler struct {
	carts   Carts
	catalog Catalog
	timeout time.Duration
}

func NewCartHandler(carts Carts, catalog Catalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		timeout: timeout,
	}
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	// the product must exist upstream before it may enter the cart
	detail, err := h.catalog.Retrieve(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "unable to load product")
		return
	}

	updated, err := h.carts.Add(ctx, getSessionID(r.Context()), productID, 1)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "unable to update cart")
		return
	}
	detail.InCart = updated.Contains(productID)

	w.Header().Set("HX-Trigger", cartChangedTrigger)
	respondJSON(w, http.StatusOK, map[string]interface{}{"product": detail})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	detail, err := h.catalog.Retrieve(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "unable to load product")
		return
	}

	if _, err := h.carts.SetQuantity(ctx, getSessionID(r.Context()), productID, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "unable to update cart")
		return
	}

	totalPrice := detail.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
	w.Header().Set("HX-Trigger", cartChangedTrigger)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"product":     detail,
		"total_price": totalPrice,
	})
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	updated, err := h.carts.Remove(ctx, getSessionID(r.Context()), productID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "unable to update cart")
		return
	}

	w.Header().Set("HX-Trigger", cartChangedTrigger)
	respondJSON(w, http.StatusOK, map[string]interface{}{"cart": updated})
}

func (h *CartHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lines, total, err := h.carts.Lines(ctx, getSessionID(r.Context()))
	if err != nil {
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "unable to price cart")
		return
	}

	if lines == nil {
		lines = []cart.Line{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": lines,
		"total": total,
	})
}
