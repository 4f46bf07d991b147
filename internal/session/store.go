package session

import (
	"context"
	"errors"

	"github.com/charmandercodes/IoTBayy/internal/domain"
)

// Store is the per-visitor persistence boundary for the cart. The cart has
// no database identity; deleting the session key destroys it.
type Store interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrNotFound = errors.New("session not found")
