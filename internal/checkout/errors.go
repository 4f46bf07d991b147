package checkout

import "errors"

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to check out")

	// The provider answered with a session but no hosted-page URL. Following
	// a blank redirect would strand the visitor, so this is its own error.
	ErrEmptyRedirectURL = errors.New("checkout session has no redirect URL")

	// A reconciliation trigger referenced a checkout id with no local
	// record. With at-least-once webhook delivery this is an anomaly to
	// log, not a reason to crash the handler.
	ErrUnknownCheckout = errors.New("no local record for checkout id")

	// The provider reports the session as not paid. The success redirect is
	// visitor-controlled, so nothing durable may be written until the
	// re-fetched session itself says the money arrived.
	ErrSessionNotPaid = errors.New("checkout session is not paid")
)
