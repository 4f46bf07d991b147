package cart

import (
	"context"
	"sync"

	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/charmandercodes/IoTBayy/internal/session"
	"github.com/shopspring/decimal"
)

// memStore implements session.Store for testing
type memStore struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
	err   error
	saves int
}

func newMemStore() *memStore {
	return &memStore{carts: map[string]*domain.Cart{}}
}

func (m *memStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, session.ErrNotFound
	}
	return cart, nil
}

func (m *memStore) Save(_ context.Context, sessionID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.carts[sessionID] = cart
	return nil
}

func (m *memStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.carts, sessionID)
	return nil
}

// stubCatalog implements Catalog with fixed minor-unit prices per product
type stubCatalog struct {
	mu     sync.Mutex
	prices map[string]int64
	err    error
}

func (s *stubCatalog) Retrieve(_ context.Context, productID string) (domain.ProductDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.ProductDetail{}, s.err
	}
	amount, ok := s.prices[productID]
	if !ok {
		return domain.ProductDetail{}, session.ErrNotFound
	}
	return domain.ProductDetail{
		ID:       productID,
		Name:     "product " + productID,
		Price:    domain.PriceFromMinorUnits(amount),
		Currency: "usd",
		PriceID:  "price_" + productID,
	}, nil
}

func (s *stubCatalog) setPrice(productID string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[productID] = amount
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
