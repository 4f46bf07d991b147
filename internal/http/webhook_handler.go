package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/charmandercodes/IoTBayy/internal/checkout"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// SignatureVerifier checks a webhook payload against its signature header.
// It is a field so tests can substitute the provider's verification.
type SignatureVerifier func(payload []byte, sigHeader, secret string) (stripe.Event, error)

const maxWebhookBody = 64 << 10 // provider caps event payloads well below this

type WebhookHandler struct {
	reconciler Reconciler
	secret     string
	verify     SignatureVerifier
	timeout    time.Duration
}

func NewWebhookHandler(reconciler Reconciler, secret string, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		secret:     secret,
		verify:     webhook.ConstructEvent,
		timeout:    timeout,
	}
}

// Handle processes provider webhook events. Delivery is at-least-once, so
// everything downstream of the signature check must tolerate replays.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "unable to read payload")
		return
	}

	event, err := h.verify(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
		return
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		// other event types are acknowledged and ignored
		w.WriteHeader(http.StatusOK)
		return
	}

	var sess struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil || sess.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed event payload")
		return
	}

	_, err = h.reconciler.MarkSessionPaid(ctx, sess.ID, "")
	if errors.Is(err, checkout.ErrSessionNotPaid) {
		// async payment methods complete the session before the money
		// settles; the later async_payment event will land the orders
		log.Printf("completed event for not-yet-paid checkout %s", sess.ID)
		w.WriteHeader(http.StatusOK)
		return
	}
	if errors.Is(err, checkout.ErrUnknownCheckout) {
		// data-integrity mismatch: log it, acknowledge the delivery so the
		// provider stops retrying an event we can never apply
		log.Printf("webhook for unknown checkout %s", sess.ID)
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		log.Printf("webhook reconciliation for %s failed: %v", sess.ID, err)
		// non-2xx asks the provider to redeliver later
		respondError(w, http.StatusInternalServerError, "internal_error", "unable to process event")
		return
	}

	w.WriteHeader(http.StatusOK)
}
