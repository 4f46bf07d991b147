package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/charmandercodes/IoTBayy/internal/checkout"
)

// Reconciler is the single mark-paid-and-record-orders operation; both the
// success redirect and the webhook land on it.
type Reconciler interface {
	MarkSessionPaid(ctx context.Context, checkoutID, userID string) (*checkout.Result, error)
}

// CartClearer destroys the visitor's cart once payment is confirmed.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

type PaymentHandler struct {
	reconciler Reconciler
	carts      CartClearer
	timeout    time.Duration
}

func NewPaymentHandler(reconciler Reconciler, carts CartClearer, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		reconciler: reconciler,
		carts:      carts,
		timeout:    timeout,
	}
}

// Success handles the visitor's return from the hosted payment page. The
// redirect alone is display-grade, not proof of payment; the reconciler
// re-fetches the authoritative session before anything durable is written.
func (h *PaymentHandler) Success(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checkoutID := r.URL.Query().Get("session_id")
	if checkoutID == "" {
		respondJSON(w, http.StatusOK, map[string]interface{}{"status": "payment complete"})
		return
	}

	result, err := h.reconciler.MarkSessionPaid(ctx, checkoutID, getUserID(r.Context()))
	if errors.Is(err, checkout.ErrUnknownCheckout) {
		log.Printf("success redirect for unknown checkout %s", checkoutID)
		respondError(w, http.StatusNotFound, "not_found", "unknown checkout session")
		return
	}
	if errors.Is(err, checkout.ErrSessionNotPaid) {
		log.Printf("success redirect for unpaid checkout %s", checkoutID)
		respondError(w, http.StatusPaymentRequired, "not_paid", "checkout session is not paid")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "unable to confirm payment")
		return
	}

	if err := h.carts.Clear(ctx, getSessionID(r.Context())); err != nil {
		// the order is recorded; a stale cart is recoverable
		log.Printf("clear cart after payment: %v", err)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "payment complete",
		"customer_id":    result.CustomerID,
		"customer_name":  result.CustomerName,
		"customer_email": result.CustomerEmail,
		"orders":         result.Orders,
	})
}

func (h *PaymentHandler) Cancelled(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "payment cancelled"})
}
