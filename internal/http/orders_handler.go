package http

import (
	"context"
	"net/http"
	"time"

	"github.com/charmandercodes/IoTBayy/internal/domain"
)

// OrderLister reads a user's recorded order history.
type OrderLister interface {
	ListPastOrders(ctx context.Context, userID string) ([]domain.PastOrder, error)
}

type OrdersHandler struct {
	orders  OrderLister
	timeout time.Duration
}

func NewOrdersHandler(orders OrderLister, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListPastOrders(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "unable to load orders")
		return
	}

	if orders == nil {
		orders = []domain.PastOrder{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}
