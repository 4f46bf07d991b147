package domain

import "time"

// Cart is the session-scoped shopping cart. It has no identity of its own:
// it lives and dies with the visitor's session.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Find returns the index of the item for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Contains(productID string) bool {
	return c.Find(productID) >= 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
