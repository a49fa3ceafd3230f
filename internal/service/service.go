package service

import (
	"context"

	"farmstand/internal/model"
	"farmstand/internal/tax"
	"farmstand/internal/validation"
)

// CartValidator re-derives authoritative pricing for a client cart.
type CartValidator interface {
	Validate(ctx context.Context, cart *model.CartSnapshot) (*validation.Result, error)
}

// OrderMirror pushes a completed order to the upstream commerce backend.
type OrderMirror interface {
	CreateOrder(ctx context.Context, order *model.Order, items []model.OrderItem, customer *model.Customer) (int64, error)
}

// PickupSource fetches the current pickup locations from the commerce
// backend for the local mirror.
type PickupSource interface {
	FetchPickupLocations(ctx context.Context) ([]model.PickupLocation, error)
}

// CheckoutService owns the pre-payment flow: quoting, cart validation
// and payment authorization.
type CheckoutService interface {
	// CalculateTaxes quotes taxes for the submitted items and province.
	CalculateTaxes(ctx context.Context, req *model.TaxQuoteRequest) (*tax.Result, error)

	// CalculateShipping quotes the per-order shipping cost.
	CalculateShipping(ctx context.Context, req *model.ShippingQuoteRequest) (*model.ShippingQuoteResponse, error)

	// CreatePaymentIntent validates the cart, creates a payment
	// authorization for the authoritative total and persists the
	// validated snapshot. A cart that diverges from the catalog returns
	// a *DiscrepancyError instead.
	CreatePaymentIntent(ctx context.Context, req *model.PaymentIntentRequest) (*model.PaymentIntentResponse, error)
}

// OrderService owns the local order records.
type OrderService interface {
	// CreatePendingOrder writes the pending order row from the persisted
	// validated snapshot. Idempotent on payment identifier: a repeat call
	// returns the existing order.
	CreatePendingOrder(ctx context.Context, req *model.CreatePendingOrderRequest) (*model.CreatePendingOrderResponse, error)

	// CleanupExpiredIntents sweeps validated snapshots past their expiry
	// and reports how many were removed.
	CleanupExpiredIntents(ctx context.Context) (int64, error)
}

// ReconcileService settles pending orders against terminal payment
// outcomes. Both operations are safe to call more than once and from
// both the client confirmation path and the webhook path.
type ReconcileService interface {
	// ReconcileSucceeded moves the order to processing/paid and mirrors
	// it upstream. Retries the lookup to ride out the race where the
	// payment settles before the pending row is visible.
	ReconcileSucceeded(ctx context.Context, orderNumber, paymentIntentID string) (*model.Order, error)

	// ReconcileFailed moves the order to cancelled/failed, recording the
	// failure reason. The order row is kept for audit.
	ReconcileFailed(ctx context.Context, orderNumber, paymentIntentID, reason string) (*model.Order, error)
}
