package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmandercodes/IoTBayy/internal/cart"
	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/charmandercodes/IoTBayy/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
)

// Provider is the slice of the payment provider the checkout flow needs.
type Provider interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error)
	GetCustomer(ctx context.Context, id string) (*stripe.Customer, error)
}

// CartReader resolves the visitor's cart into live-priced lines.
type CartReader interface {
	Lines(ctx context.Context, sessionID string) ([]cart.Line, decimal.Decimal, error)
}

// Redirect is the handle the visitor is sent away with.
type Redirect struct {
	CheckoutID string `json:"checkout_id"`
	URL        string `json:"url"`
}

type Service struct {
	provider   Provider
	carts      CartReader
	repo       store.Store
	successURL string
	cancelURL  string
}

func NewService(provider Provider, carts CartReader, repo store.Store, successURL, cancelURL string) *Service {
	return &Service{
		provider:   provider,
		carts:      carts,
		repo:       repo,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateSession turns the visitor's cart into provider line items, requests
// a hosted checkout session, and persists the local mirror rows. The mirror
// is written before the redirect URL is inspected, so an empty URL still
// leaves an auditable session row behind.
func (s *Service) CreateSession(ctx context.Context, sessionID, userID string, info *domain.ShippingInfo) (*Redirect, error) {
	lines, total, err := s.carts.Lines(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	info.UserID = userID
	info.Email = strings.ToLower(info.Email)
	if err := s.repo.SaveShippingInfo(ctx, info); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(info.Email),
		// The provider substitutes the session id placeholder on redirect.
		SuccessURL: stripe.String(s.successURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cancelURL),
	}
	quantityTotal := 0
	for _, line := range lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(line.Product.PriceID),
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
		quantityTotal += line.Quantity
	}

	sess, err := s.provider.CreateSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	mirror := &domain.CheckoutSession{
		CheckoutID:     sess.ID,
		ShippingInfoID: &info.ID,
		TotalCost:      total,
	}
	if err := s.repo.CreateCheckoutSession(ctx, mirror); err != nil {
		return nil, err
	}

	payment := &domain.UserPayment{
		UserID:     userID,
		CheckoutID: sess.ID,
		ProductID:  lines[0].Product.ID,
		Price:      total,
		Currency:   lines[0].Product.Currency,
		Quantity:   quantityTotal,
	}
	if sess.Customer != nil {
		payment.CustomerID = sess.Customer.ID
	}
	if err := s.repo.CreateUserPayment(ctx, payment); err != nil {
		return nil, err
	}

	if sess.URL == "" {
		return nil, ErrEmptyRedirectURL
	}

	return &Redirect{CheckoutID: sess.ID, URL: sess.URL}, nil
}
