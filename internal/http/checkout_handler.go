package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmandercodes/IoTBayy/internal/cart"
	"github.com/charmandercodes/IoTBayy/internal/checkout"
	"github.com/charmandercodes/IoTBayy/internal/domain"
	"github.com/charmandercodes/IoTBayy/internal/store"
)

// CheckoutService builds hosted checkout sessions from the visitor's cart.
type CheckoutService interface {
	CreateSession(ctx context.Context, sessionID, userID string, info *domain.ShippingInfo) (*checkout.Redirect, error)
}

// ShippingReader fetches a user's saved shipping record for form pre-fill.
type ShippingReader interface {
	GetShippingInfoByUser(ctx context.Context, userID string) (*domain.ShippingInfo, error)
}

type CheckoutHandler struct {
	svc      CheckoutService
	carts    Carts
	shipping ShippingReader
	timeout  time.Duration
}

func NewCheckoutHandler(svc CheckoutService, carts Carts, shipping ShippingReader, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		svc:      svc,
		carts:    carts,
		shipping: shipping,
		timeout:  timeout,
	}
}

type ShippingFormDTO struct {
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	AddressLineOne string `json:"address_line_one"`
	AddressLineTwo string `json:"address_line_two,omitempty"`
	City           string `json:"city"`
	ZipCode        string `json:"zip_code"`
}

func (f *ShippingFormDTO) validate() string {
	switch {
	case f.Email == "":
		return "email is required"
	case f.FirstName == "":
		return "first name is required"
	case f.LastName == "":
		return "last name is required"
	case f.AddressLineOne == "":
		return "address is required"
	case f.City == "":
		return "city is required"
	case f.ZipCode == "":
		return "zip code is required"
	}
	return ""
}

func (f *ShippingFormDTO) toDomain() *domain.ShippingInfo {
	return &domain.ShippingInfo{
		Email:          f.Email,
		Phone:          f.Phone,
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		AddressLineOne: f.AddressLineOne,
		AddressLineTwo: f.AddressLineTwo,
		City:           f.City,
		ZipCode:        f.ZipCode,
	}
}

// Show returns the checkout page data: the priced cart and any previously
// saved shipping record, so the form comes back pre-filled.
func (h *CheckoutHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lines, total, err := h.carts.Lines(ctx, getSessionID(r.Context()))
	if err != nil {
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "unable to price cart")
		return
	}
	if lines == nil {
		lines = []cart.Line{}
	}

	payload := map[string]interface{}{
		"items": lines,
		"total": total,
	}

	info, err := h.shipping.GetShippingInfoByUser(ctx, userID)
	if err == nil {
		payload["shipping_info"] = info
	} else if !errors.Is(err, store.ErrShippingNotFound) {
		respondError(w, http.StatusInternalServerError, "internal_error", "unable to load shipping info")
		return
	}

	respondJSON(w, http.StatusOK, payload)
}

// Submit validates the shipping form and drives the provider's hosted
// checkout. Provider-side failures come back as a generic payment error with
// the submitted form echoed, so the frontend can re-render it intact.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var form ShippingFormDTO
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if msg := form.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_form", msg)
		return
	}

	redirect, err := h.svc.CreateSession(ctx, getSessionID(r.Context()), userID, form.toDomain())
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
		return
	case errors.Is(err, checkout.ErrEmptyRedirectURL):
		respondError(w, http.StatusBadGateway, "empty_redirect", "checkout session has no redirect URL")
		return
	case err != nil:
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error": "Unable to process payment",
			"code":  "payment_failed",
			"form":  form,
		})
		return
	}

	respondJSON(w, http.StatusOK, redirect)
}
