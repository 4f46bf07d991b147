package store

import (
	"context"
	"errors"

	"github.com/charmandercodes/IoTBayy/internal/domain"
)

var (
	ErrShippingNotFound  = errors.New("shipping info not found")
	ErrCheckoutNotFound  = errors.New("checkout session not found")
	ErrPaymentNotFound   = errors.New("user payment not found")
	ErrDuplicatePayment  = errors.New("payment for this checkout already exists")
	ErrDuplicateCheckout = errors.New("checkout session already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Store is the durable side of the commerce flow: shipping records,
// checkout-session mirrors, per-checkout payments and order history.
type Store interface {
	GetShippingInfoByUser(ctx context.Context, userID string) (*domain.ShippingInfo, error)
	SaveShippingInfo(ctx context.Context, info *domain.ShippingInfo) error

	CreateCheckoutSession(ctx context.Context, cs *domain.CheckoutSession) error
	GetCheckoutSession(ctx context.Context, checkoutID string) (*domain.CheckoutSession, error)

	CreateUserPayment(ctx context.Context, payment *domain.UserPayment) error
	GetUserPayment(ctx context.Context, checkoutID string) (*domain.UserPayment, error)

	// RecordPayment marks the checkout session paid and inserts the order
	// rows in one transaction. It reports false without touching anything
	// when the session was already reconciled, which makes duplicate webhook
	// delivery and a racing success-redirect harmless.
	RecordPayment(ctx context.Context, checkoutID string, orders []domain.PastOrder) (bool, error)

	ListPastOrders(ctx context.Context, userID string) ([]domain.PastOrder, error)

	RunMigrations(cred *Credentials) error
	Close() error
}
