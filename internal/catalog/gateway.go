package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/stripe/stripe-go/v79"
	"golang.org/x/sync/singleflight"
)

// API is the slice of the provider client the gateway needs.
type API interface {
	ListProducts(ctx context.Context) ([]*stripe.Product, error)
	GetProduct(ctx context.Context, id string) (*stripe.Product, error)
	ListPrices(ctx context.Context, productID string) ([]*stripe.Price, error)
}

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNoPrice         = errors.New("product has no listed price")
)

// storefront products are tagged upstream; anything else (internal SKUs,
// archived test products) is invisible to the shop.
const storeCategory = "shop"

type Gateway struct {
	api API
	sfg singleflight.Group // Collapses concurrent full-catalog fetches
}

func NewGateway(api API) *Gateway {
	return &Gateway{api: api}
}

// ListProducts returns every storefront product, normalized. Filtering by
// search term is the caller's concern.
func (g *Gateway) ListProducts(ctx context.Context) ([]domain.ProductDetail, error) {
	// the fetch is shared across collapsed callers, so it must not die with
	// whichever request happened to start it
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := g.sfg.Do("list", func() (interface{}, error) {
		raw, err := g.api.ListProducts(fetchCtx)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}

		var products []domain.ProductDetail
		for _, p := range raw {
			if p.Metadata[metadataCategoryKey] != storeCategory {
				continue
			}
			detail, err := g.normalize(fetchCtx, p)
			if err != nil {
				return nil, err
			}
			products = append(products, detail)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.ProductDetail), nil
}

// Retrieve fetches one product by id. An invalid or upstream-deleted id
// yields ErrProductNotFound.
func (g *Gateway) Retrieve(ctx context.Context, productID string) (domain.ProductDetail, error) {
	p, err := g.api.GetProduct(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return domain.ProductDetail{}, ErrProductNotFound
		}
		return domain.ProductDetail{}, fmt.Errorf("retrieve product %s: %w", productID, err)
	}
	if p.Deleted {
		return domain.ProductDetail{}, ErrProductNotFound
	}

	return g.normalize(ctx, p)
}

const metadataCategoryKey = "category"

// normalize maps a raw provider product plus its first listed price into a
// ProductDetail. Prices arrive as integer minor units and leave as decimals
// with two fraction digits.
func (g *Gateway) normalize(ctx context.Context, p *stripe.Product) (domain.ProductDetail, error) {
	prices, err := g.api.ListPrices(ctx, p.ID)
	if err != nil {
		return domain.ProductDetail{}, fmt.Errorf("list prices for %s: %w", p.ID, err)
	}
	if len(prices) == 0 {
		return domain.ProductDetail{}, fmt.Errorf("%w: %s", ErrNoPrice, p.ID)
	}
	price := prices[0]

	detail := domain.ProductDetail{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       domain.PriceFromMinorUnits(price.UnitAmount),
		Currency:    string(price.Currency),
		PriceID:     price.ID,
	}
	if len(p.Images) > 0 {
		detail.Image = p.Images[0]
	}
	return detail, nil
}

func isNotFound(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode == http.StatusNotFound
	}
	return false
}
