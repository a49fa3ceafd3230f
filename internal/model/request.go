package model

// PaymentIntentRequest is the payload for POST /api/payment-intent. The
// cart portion is revalidated server-side; Amount is the client's claimed
// grand total, checked against the authoritative total as a final gate.
type PaymentIntentRequest struct {
	Amount         float64      `json:"amount"`
	IdempotencyKey string       `json:"idempotencyKey"`
	Cart           CartSnapshot `json:"orderData"`
}

// PaymentIntentResponse returns the authorization handle along with the
// validated snapshot so the UI can show the corrected total immediately.
type PaymentIntentResponse struct {
	ClientSecret    string                  `json:"clientSecret"`
	OrderNumber     string                  `json:"orderNumber"`
	PaymentIntentID string                  `json:"paymentIntentId"`
	ValidatedData   *ValidatedOrderSnapshot `json:"validatedData"`
}

// CustomerFormData is the customer contact/address info submitted at
// order creation. It never carries pricing; all monetary fields come
// from the persisted validated snapshot.
type CustomerFormData struct {
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Phone            string `json:"phone"`
	Address1         string `json:"address1"`
	Address2         string `json:"address2"`
	City             string `json:"city"`
	Province         string `json:"province"`
	PostalCode       string `json:"postalCode"`
	PickupLocationID string `json:"pickupLocationId,omitempty"`
}

// CreatePendingOrderRequest is the payload for POST /api/orders/create-pending.
type CreatePendingOrderRequest struct {
	OrderNumber     string           `json:"orderNumber"`
	PaymentIntentID string           `json:"paymentIntentId"`
	OrderData       CustomerFormData `json:"orderData"`
}

// CreatePendingOrderResponse acknowledges an idempotent order creation.
type CreatePendingOrderResponse struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
}

// OrderUpdateRequest is the payload for the update-succeeded and
// update-failed endpoints.
type OrderUpdateRequest struct {
	OrderNumber     string `json:"orderNumber"`
	PaymentIntentID string `json:"paymentIntentId"`
	Reason          string `json:"reason,omitempty"`
}

// OrderUpdateResponse reports the (possibly pre-existing) terminal state.
type OrderUpdateResponse struct {
	OrderNumber   string `json:"orderNumber"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

// ShippingQuoteRequest is the payload for POST /api/shipping/calculate.
type ShippingQuoteRequest struct {
	Items          []CartItem `json:"cart"`
	DeliveryMethod string     `json:"deliveryMethod"`
	Province       string     `json:"province"`
}

// ShippingQuoteResponse carries the resolved per-order shipping cost.
type ShippingQuoteResponse struct {
	ShippingCost float64 `json:"shippingCost"`
}

// TaxQuoteRequest is the payload for POST /api/calculate-taxes.
type TaxQuoteRequest struct {
	Items    []CartItem `json:"items"`
	Province string     `json:"province"`
}
