package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmandercodes/IoTBayy/internal/catalog"
	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CatalogMock struct {
	products []domain.ProductDetail
	err      error
}

func (m CatalogMock) ListProducts(context.Context) ([]domain.ProductDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m CatalogMock) Retrieve(_ context.Context, productID string) (domain.ProductDetail, error) {
	if m.err != nil {
		return domain.ProductDetail{}, m.err
	}
	for _, p := range m.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.ProductDetail{}, catalog.ErrProductNotFound
}

type CartViewerMock struct {
	cart *domain.Cart
}

func (m CartViewerMock) Get(context.Context, string) (*domain.Cart, error) {
	if m.cart != nil {
		return m.cart, nil
	}
	return &domain.Cart{}, nil
}

func namedProducts(names ...string) []domain.ProductDetail {
	products := make([]domain.ProductDetail, 0, len(names))
	for i, name := range names {
		products = append(products, domain.ProductDetail{
			ID:       "prod_" + name,
			Name:     name,
			Price:    domain.PriceFromMinorUnits(int64(1000 + i)),
			Currency: "usd",
		})
	}
	return products
}

type shopResponse struct {
	Products []domain.ProductDetail `json:"products"`
}

func doShop(t *testing.T, handler *CatalogHandler, target string) (*httptest.ResponseRecorder, shopResponse) {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", target, nil)

	handler.Shop(recorder, request)

	var response shopResponse
	if recorder.Code == http.StatusOK {
		if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return recorder, response
}

func TestShop_ListsAllProducts(t *testing.T) {
	clientMock := CatalogMock{products: namedProducts("Raspberry Pi", "Flipper", "Bangle.js", "Rubber Ducky")}
	handler := NewCatalogHandler(clientMock, CartViewerMock{}, 5*time.Second)

	recorder, response := doShop(t, handler, "/")

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(response.Products) != 4 {
		t.Errorf("Expected 4 products, got %d", len(response.Products))
	}
}

func TestShop_SearchIsCaseSensitive(t *testing.T) {
	clientMock := CatalogMock{products: namedProducts("Raspberry Pi", "Flipper", "Bangle.js", "Rubber Ducky")}
	handler := NewCatalogHandler(clientMock, CartViewerMock{}, 5*time.Second)

	// lowercase query must not match the capitalized product name
	recorder, response := doShop(t, handler, "/?q=flipper")
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(response.Products) != 0 {
		t.Errorf("Expected no products for query 'flipper', got %d", len(response.Products))
	}

	// exact-case query matches exactly one
	recorder, response = doShop(t, handler, "/?q=Flipper")
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(response.Products) != 1 {
		t.Fatalf("Expected 1 product for query 'Flipper', got %d", len(response.Products))
	}
	if response.Products[0].Name != "Flipper" {
		t.Errorf("Expected product 'Flipper', got '%s'", response.Products[0].Name)
	}
}

func TestShop_SearchSubstring(t *testing.T) {
	clientMock := CatalogMock{products: namedProducts("Raspberry Pi", "Flipper", "Bangle.js", "Rubber Ducky")}
	handler := NewCatalogHandler(clientMock, CartViewerMock{}, 5*time.Second)

	_, response := doShop(t, handler, "/?q=Rubber")
	if len(response.Products) != 1 {
		t.Fatalf("Expected 1 product for query 'Rubber', got %d", len(response.Products))
	}
	if response.Products[0].Name != "Rubber Ducky" {
		t.Errorf("Expected 'Rubber Ducky', got '%s'", response.Products[0].Name)
	}
}

func TestShop_UpstreamError(t *testing.T) {
	clientMock := CatalogMock{err: errors.New("connection reset")}
	handler := NewCatalogHandler(clientMock, CartViewerMock{}, 5*time.Second)

	recorder, _ := doShop(t, handler, "/")
	if recorder.Code != http.StatusBadGateway {
		t.Errorf("Expected status code %d, got %d", http.StatusBadGateway, recorder.Code)
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withSession(r *http.Request, sessionID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "session_id", sessionID))
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "user_id", userID))
}

func TestProduct_Found(t *testing.T) {
	clientMock := CatalogMock{products: namedProducts("Raspberry Pi")}
	cartMock := CartViewerMock{cart: &domain.Cart{
		Items: []domain.CartItem{{ProductID: "prod_Raspberry Pi", Quantity: 1}},
	}}
	handler := NewCatalogHandler(clientMock, cartMock, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/product/prod_Raspberry%20Pi", nil)
	request = withURLParam(request, "product_id", "prod_Raspberry Pi")
	request = withSession(request, "sess1")

	handler.Product(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response struct {
		Product domain.ProductDetail `json:"product"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Product.Name != "Raspberry Pi" {
		t.Errorf("Expected 'Raspberry Pi', got '%s'", response.Product.Name)
	}
	if !response.Product.InCart {
		t.Errorf("Expected product to be flagged in cart")
	}
}

func TestProduct_NotFound(t *testing.T) {
	clientMock := CatalogMock{}
	handler := NewCatalogHandler(clientMock, CartViewerMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/product/prod_missing", nil)
	request = withURLParam(request, "product_id", "prod_missing")

	handler.Product(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}
