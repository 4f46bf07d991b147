package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingInfo is the contact and address record submitted on the checkout
// form. At most one current record exists per user; resubmitting the form
// updates it in place.
type ShippingInfo struct {
	ID             uuid.UUID
	UserID         string
	Email          string
	Phone          string
	FirstName      string
	LastName       string
	AddressLineOne string
	AddressLineTwo string
	City           string
	ZipCode        string
}

// CheckoutSession mirrors a provider-issued hosted checkout session. The
// total is a snapshot taken at creation time; the paid flag flips exactly
// once, when the session is reconciled.
type CheckoutSession struct {
	CheckoutID     string
	ShippingInfoID *uuid.UUID
	TotalCost      decimal.Decimal
	HasPaid        bool
	CreatedAt      time.Time
}

// UserPayment links a user to one provider checkout and is the lookup
// target when a webhook arrives carrying only the provider's checkout id.
type UserPayment struct {
	UserID     string
	CustomerID string
	CheckoutID string
	ProductID  string
	Price      decimal.Decimal
	Currency   string
	Quantity   int
	HasPaid    bool
}

// PastOrder records one purchased line item. Append-only; the pair
// (checkout id, product id) is unique so reprocessing a completed session
// cannot duplicate rows.
type PastOrder struct {
	ID         uuid.UUID
	UserID     string
	CheckoutID string
	ProductID  string
	Name       string
	Price      decimal.Decimal
	Currency   string
	Quantity   int
	Image      string
	CreatedAt  time.Time
}
