package checkout

import (
	"context"
	"sync"

	"github.com/charmandercodes/IoTBayy/internal/cart"
	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/charmandercodes/IoTBayy/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
)

// MockProvider implements Provider for testing
type MockProvider struct {
	Session       *stripe.CheckoutSession
	CreateErr     error
	GetErr        error
	LineItems     []*stripe.LineItem
	LineItemsErr  error
	Customer      *stripe.Customer
	CustomerErr   error
	CreatedParams *stripe.CheckoutSessionParams // Captures the params passed to CreateSession
}

func (m *MockProvider) CreateSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	m.CreatedParams = params
	return m.Session, m.CreateErr
}

func (m *MockProvider) GetSession(_ context.Context, _ string) (*stripe.CheckoutSession, error) {
	return m.Session, m.GetErr
}

func (m *MockProvider) ListLineItems(_ context.Context, _ string) ([]*stripe.LineItem, error) {
	return m.LineItems, m.LineItemsErr
}

func (m *MockProvider) GetCustomer(_ context.Context, _ string) (*stripe.Customer, error) {
	return m.Customer, m.CustomerErr
}

// MockCartReader implements CartReader for testing
type MockCartReader struct {
	CartLines []cart.Line
	Total     decimal.Decimal
	Err       error
}

func (m *MockCartReader) Lines(_ context.Context, _ string) ([]cart.Line, decimal.Decimal, error) {
	return m.CartLines, m.Total, m.Err
}

// MockStore implements store.Store in memory for testing
type MockStore struct {
	mu sync.Mutex

	Shipping  map[string]*domain.ShippingInfo
	Checkouts map[string]*domain.CheckoutSession
	Payments  map[string]*domain.UserPayment
	Orders    []domain.PastOrder

	SaveShippingErr error
	CreateCheckErr  error
	CreatePayErr    error
	RecordErr       error
}

func NewMockStore() *MockStore {
	return &MockStore{
		Shipping:  map[string]*domain.ShippingInfo{},
		Checkouts: map[string]*domain.CheckoutSession{},
		Payments:  map[string]*domain.UserPayment{},
	}
}

func (m *MockStore) GetShippingInfoByUser(_ context.Context, userID string) (*domain.ShippingInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.Shipping[userID]
	if !ok {
		return nil, store.ErrShippingNotFound
	}
	return info, nil
}

func (m *MockStore) SaveShippingInfo(_ context.Context, info *domain.ShippingInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveShippingErr != nil {
		return m.SaveShippingErr
	}
	m.Shipping[info.UserID] = info
	return nil
}

func (m *MockStore) CreateCheckoutSession(_ context.Context, cs *domain.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateCheckErr != nil {
		return m.CreateCheckErr
	}
	if _, ok := m.Checkouts[cs.CheckoutID]; ok {
		return store.ErrDuplicateCheckout
	}
	m.Checkouts[cs.CheckoutID] = cs
	return nil
}

func (m *MockStore) GetCheckoutSession(_ context.Context, checkoutID string) (*domain.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.Checkouts[checkoutID]
	if !ok {
		return nil, store.ErrCheckoutNotFound
	}
	return cs, nil
}

func (m *MockStore) CreateUserPayment(_ context.Context, payment *domain.UserPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreatePayErr != nil {
		return m.CreatePayErr
	}
	if _, ok := m.Payments[payment.CheckoutID]; ok {
		return store.ErrDuplicatePayment
	}
	m.Payments[payment.CheckoutID] = payment
	return nil
}

func (m *MockStore) GetUserPayment(_ context.Context, checkoutID string) (*domain.UserPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Payments[checkoutID]
	if !ok {
		return nil, store.ErrPaymentNotFound
	}
	return p, nil
}

func (m *MockStore) RecordPayment(_ context.Context, checkoutID string, orders []domain.PastOrder) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return false, m.RecordErr
	}
	cs, ok := m.Checkouts[checkoutID]
	if !ok {
		return false, store.ErrCheckoutNotFound
	}
	if cs.HasPaid {
		return false, nil
	}
	cs.HasPaid = true
	if p, ok := m.Payments[checkoutID]; ok {
		p.HasPaid = true
	}
	m.Orders = append(m.Orders, orders...)
	return true, nil
}

func (m *MockStore) ListPastOrders(_ context.Context, userID string) ([]domain.PastOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PastOrder
	for _, o := range m.Orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockStore) RunMigrations(*store.Credentials) error { return nil }

func (m *MockStore) Close() error { return nil }

func (m *MockStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Orders)
}
