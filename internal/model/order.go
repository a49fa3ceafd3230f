package model

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. The pair (Status, PaymentStatus) only moves forward:
// pending/pending -> processing/paid or pending/pending -> cancelled/failed.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCancelled  = "cancelled"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Order is the locally-owned order record. Created once per payment
// identifier, mutated exactly once per terminal payment outcome, never
// deleted.
type Order struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	OrderNumber      string     `json:"orderNumber" db:"order_number"`
	PaymentIntentID  string     `json:"paymentIntentId" db:"payment_intent_id"`
	Status           string     `json:"status" db:"status"`
	PaymentStatus    string     `json:"paymentStatus" db:"payment_status"`
	CustomerID       uuid.UUID  `json:"customerId" db:"customer_id"`
	DeliveryMethod   string     `json:"deliveryMethod" db:"delivery_method"`
	PickupLocationID *uuid.UUID `json:"pickupLocationId,omitempty" db:"pickup_location_id"`
	Subtotal         float64    `json:"subtotal" db:"subtotal"`
	Tax              float64    `json:"tax" db:"tax"`
	Shipping         float64    `json:"shipping" db:"shipping"`
	Total            float64    `json:"total" db:"total"`
	WooOrderID       *int64     `json:"wooOrderId,omitempty" db:"woo_order_id"`
	Notes            string     `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// Terminal reports whether the order has reached a terminal state.
func (o *Order) Terminal() bool {
	return o.Status != OrderStatusPending
}

// OrderItem is one line of an Order, frozen from the validated snapshot
// at creation time.
type OrderItem struct {
	ID            uuid.UUID `json:"-" db:"id"`
	OrderID       uuid.UUID `json:"-" db:"order_id"`
	ProductID     int64     `json:"productId" db:"product_id"`
	Name          string    `json:"name" db:"name"`
	Price         float64   `json:"price" db:"price"`
	Quantity      int       `json:"quantity" db:"quantity"`
	Tax           float64   `json:"tax" db:"tax"`
	Total         float64   `json:"total" db:"total"`
	ShippingClass string    `json:"shippingClass" db:"shipping_class"`
	BookingDate   *string   `json:"bookingDate,omitempty" db:"booking_date"`
	BookingTime   *string   `json:"bookingTime,omitempty" db:"booking_time"`
	PartySize     *int      `json:"partySize,omitempty" db:"party_size"`
}

// Customer holds the contact and billing address captured at checkout.
type Customer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	FirstName  string    `json:"firstName" db:"first_name"`
	LastName   string    `json:"lastName" db:"last_name"`
	Phone      string    `json:"phone" db:"phone"`
	Address1   string    `json:"address1" db:"address_1"`
	Address2   string    `json:"address2" db:"address_2"`
	City       string    `json:"city" db:"city"`
	Province   string    `json:"province" db:"province"`
	PostalCode string    `json:"postalCode" db:"postal_code"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// PickupLocation is a locally cached mirror of a CMS pickup point.
// Upserted opportunistically; never authoritative for pricing.
type PickupLocation struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ExternalID string    `json:"externalId" db:"external_id"`
	Name       string    `json:"name" db:"name"`
	Address1   string    `json:"address1" db:"address_1"`
	City       string    `json:"city" db:"city"`
	Province   string    `json:"province" db:"province"`
	PostalCode string    `json:"postalCode" db:"postal_code"`
	Active     bool      `json:"active" db:"active"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
