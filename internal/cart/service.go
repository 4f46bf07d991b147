package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/charmandercodes/IoTBayy/internal/session"
	"github.com/shopspring/decimal"
)

// Catalog supplies live product detail for pricing. Totals are always
// re-priced against it, never snapshotted.
type Catalog interface {
	Retrieve(ctx context.Context, productID string) (domain.ProductDetail, error)
}

var ErrInvalidQuantity = errors.New("quantity must be positive")

type Service struct {
	store   session.Store
	catalog Catalog
}

func NewService(store session.Store, catalog Catalog) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
	}
}

// Get returns the visitor's cart, or a fresh empty cart when the session
// holds none yet.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		now := time.Now()
		return &domain.Cart{
			SessionID: sessionID,
			Items:     nil,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// Add increments the entry for productID by quantity, inserting it when
// absent. The whole cart is written back to the session store immediately.
func (s *Service) Add(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := cart.Find(productID); i >= 0 {
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
	}

	return cart, s.save(ctx, sessionID, cart)
}

// SetQuantity replaces the entry's quantity. A quantity of zero or below
// removes the entry rather than keeping it at zero.
func (s *Service) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return s.Remove(ctx, sessionID, productID)
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := cart.Find(productID); i >= 0 {
		cart.Items[i].Quantity = quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
	}

	return cart, s.save(ctx, sessionID, cart)
}

// Remove deletes the entry if present; removing an absent product is a no-op.
func (s *Service) Remove(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := cart.Find(productID)
	if i < 0 {
		return cart, nil
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	return cart, s.save(ctx, sessionID, cart)
}

// Clear destroys the cart as a unit.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Line is one priced cart entry, ready for display.
type Line struct {
	Product   domain.ProductDetail `json:"product"`
	Quantity  int                  `json:"quantity"`
	LineTotal decimal.Decimal      `json:"line_total"`
}

// Lines resolves every cart entry against the catalog and returns the priced
// lines plus the cart total. Prices are fetched live, so the total follows
// any upstream price change since the cart was last touched.
func (s *Service) Lines(ctx context.Context, sessionID string) ([]Line, decimal.Decimal, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	lines := make([]Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		detail, err := s.catalog.Retrieve(ctx, item.ProductID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("price cart item %s: %w", item.ProductID, err)
		}
		lineTotal := detail.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, Line{
			Product:   detail,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	return lines, total, nil
}

// TotalCost sums unit price times quantity over the cart, using live prices.
func (s *Service) TotalCost(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	_, total, err := s.Lines(ctx, sessionID)
	return total, err
}

func (s *Service) save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
