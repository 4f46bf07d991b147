package domain

import "github.com/shopspring/decimal"

// ProductDetail is the normalized view of an upstream product plus its first
// listed price. All provider-shape assumptions are resolved at the catalog
// boundary; nothing past it sees raw provider payloads.
type ProductDetail struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	PriceID     string          `json:"-"`
	InCart      bool            `json:"in_cart"`
}

// PriceFromMinorUnits converts an integer minor-unit amount (e.g. cents)
// into a decimal with two fraction digits: 1999 -> 19.99.
func PriceFromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
