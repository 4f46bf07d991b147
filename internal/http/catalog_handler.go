package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmandercodes/IoTBayy/internal/catalog"
	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Catalog is the gateway surface the storefront pages need.
type Catalog interface {
	ListProducts(ctx context.Context) ([]domain.ProductDetail, error)
	Retrieve(ctx context.Context, productID string) (domain.ProductDetail, error)
}

// CartViewer answers whether a product already sits in the visitor's cart.
type CartViewer interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
}

type CatalogHandler struct {
	catalog Catalog
	carts   CartViewer
	timeout time.Duration
}

func NewCatalogHandler(catalog Catalog, carts CartViewer, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		carts:   carts,
		timeout: timeout,
	}
}

// Shop lists the storefront catalog. The optional q parameter narrows it by
// case-sensitive substring match on the product name: "flipper" does not
// find "Flipper".
func (h *CatalogHandler) Shop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "unable to load products")
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		var filtered []domain.ProductDetail
		for _, p := range products {
			if strings.Contains(p.Name, q) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	if products == nil {
		products = []domain.ProductDetail{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// Product renders one product's normalized detail plus its in-cart flag.
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	detail, err := h.catalog.Retrieve(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "unable to load product")
		return
	}

	cart, err := h.carts.Get(ctx, getSessionID(r.Context()))
	if err == nil {
		detail.InCart = cart.Contains(productID)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"product": detail})
}
