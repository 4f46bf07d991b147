package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/charmandercodes/IoTBayy/internal/store"
	"github.com/stripe/stripe-go/v79"
)

// Reconciler is the single authority for marking a checkout session paid.
// Both terminal triggers of the flow, the visitor's success redirect and the
// provider's webhook, funnel through MarkSessionPaid, and the storage layer
// guarantees the orders are recorded at most once per session.
type Reconciler struct {
	provider Provider
	repo     store.Store
}

func NewReconciler(provider Provider, repo store.Store) *Reconciler {
	return &Reconciler{
		provider: provider,
		repo:     repo,
	}
}

type Result struct {
	// AlreadyProcessed reports that an earlier trigger won the race and
	// nothing was written this time.
	AlreadyProcessed bool
	Orders           []domain.PastOrder
	CustomerID       string
	CustomerName     string
	CustomerEmail    string
}

// MarkSessionPaid fetches the authoritative session and line items from the
// provider and records one PastOrder per line item. Pass an empty userID for
// provider-driven triggers; the owner is then resolved from the UserPayment
// row created at checkout time.
func (r *Reconciler) MarkSessionPaid(ctx context.Context, checkoutID, userID string) (*Result, error) {
	if userID == "" {
		payment, err := r.repo.GetUserPayment(ctx, checkoutID)
		if errors.Is(err, store.ErrPaymentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCheckout, checkoutID)
		}
		if err != nil {
			return nil, err
		}
		userID = payment.UserID
	}

	sess, err := r.provider.GetSession(ctx, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("retrieve session %s: %w", checkoutID, err)
	}
	// the redirect URL is visitor-controlled; only the provider's own word
	// on the session settles whether anything durable gets written
	if !sessionPaid(sess) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotPaid, checkoutID)
	}

	lineItems, err := r.provider.ListLineItems(ctx, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("list line items for %s: %w", checkoutID, err)
	}

	orders := make([]domain.PastOrder, 0, len(lineItems))
	for _, item := range lineItems {
		order := domain.PastOrder{
			UserID:     userID,
			CheckoutID: sess.ID,
			Name:       item.Description,
			Price:      domain.PriceFromMinorUnits(item.AmountTotal),
			Currency:   string(sess.Currency),
			Quantity:   int(item.Quantity),
		}
		if item.Price != nil && item.Price.Product != nil {
			order.ProductID = item.Price.Product.ID
		}
		orders = append(orders, order)
	}

	recorded, err := r.repo.RecordPayment(ctx, checkoutID, orders)
	if errors.Is(err, store.ErrCheckoutNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCheckout, checkoutID)
	}
	if err != nil {
		return nil, err
	}
	if !recorded {
		log.Printf("checkout %s already reconciled, skipping", checkoutID)
	}

	result := &Result{
		AlreadyProcessed: !recorded,
		Orders:           orders,
	}
	if sess.Customer != nil {
		result.CustomerID = sess.Customer.ID
		// the session only embeds the customer id; the summary shown to the
		// visitor wants the full record. Losing it is not worth failing a
		// payment that is already recorded.
		customer, err := r.provider.GetCustomer(ctx, sess.Customer.ID)
		if err != nil {
			log.Printf("retrieve customer %s for checkout %s: %v", sess.Customer.ID, checkoutID, err)
		} else if customer != nil {
			result.CustomerName = customer.Name
			result.CustomerEmail = customer.Email
		}
	}
	return result, nil
}

func sessionPaid(sess *stripe.CheckoutSession) bool {
	switch sess.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid,
		stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return true
	}
	return false
}
