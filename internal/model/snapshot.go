package model

import "time"

// ValidatedItem is one line item with every catalog-comparable field
// replaced by the authoritative value. Quantity and booking detail are
// kept from the client since the catalog has no opinion on them.
type ValidatedItem struct {
	ProductID       int64          `json:"productId"`
	Name            string         `json:"name"`
	Price           float64        `json:"price"`
	Quantity        int            `json:"quantity"`
	TaxStatus       string         `json:"taxStatus"`
	ShippingClass   string         `json:"shippingClass"`
	ShippingTaxable bool           `json:"shippingTaxable"`
	Type            string         `json:"type"`
	Tax             float64        `json:"tax"`
	Total           float64        `json:"total"`
	Booking         *BookingDetail `json:"booking,omitempty"`
}

// TaxLine is one labeled entry in the tax summary, e.g. GST 5%.
type TaxLine struct {
	Label  string  `json:"label"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// ValidatedOrderSnapshot is the server-recomputed, authoritative pricing
// for one cart. Immutable once produced; downstream steps persist and
// charge from this snapshot, never from client-submitted values.
type ValidatedOrderSnapshot struct {
	Items          []ValidatedItem `json:"items"`
	Subtotal       float64         `json:"subtotal"`
	TaxLines       []TaxLine       `json:"taxLines"`
	TaxTotal       float64         `json:"taxTotal"`
	ShippingTotal  float64         `json:"shippingTotal"`
	Total          float64         `json:"total"`
	Province       string          `json:"province"`
	DeliveryMethod string          `json:"deliveryMethod"`
}

// ValidatedPaymentIntent bridges the gap between intent creation and
// pending-order creation: the snapshot is persisted keyed by the payment
// identifier and read back exactly once when the order row is written.
// Rows past ExpiresAt are removed by the cleanup sweep.
type ValidatedPaymentIntent struct {
	PaymentIntentID string                 `json:"paymentIntentId" db:"payment_intent_id"`
	OrderNumber     string                 `json:"orderNumber" db:"order_number"`
	Snapshot        ValidatedOrderSnapshot `json:"snapshot" db:"snapshot"`
	CreatedAt       time.Time              `json:"createdAt" db:"created_at"`
	ExpiresAt       time.Time              `json:"expiresAt" db:"expires_at"`
}
