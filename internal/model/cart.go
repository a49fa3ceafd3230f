package model

// Delivery methods accepted at checkout.
const (
	DeliveryMethodShipping = "shipping"
	DeliveryMethodPickup   = "pickup"
)

// BookingDetail carries the slot reservation fields for farm-tour items.
// The catalog has no opinion on these; they pass through validation as-is.
type BookingDetail struct {
	Date      string `json:"date"`
	TimeSlot  string `json:"timeSlot"`
	PartySize int    `json:"partySize"`
}

// CartItem is one client-submitted line item. Every field is untrusted
// until revalidated against the catalog.
type CartItem struct {
	ProductID       int64          `json:"productId"`
	Name            string         `json:"name"`
	Price           float64        `json:"price"`
	Quantity        int            `json:"quantity"`
	TaxStatus       string         `json:"taxStatus"`
	ShippingClass   string         `json:"shippingClass"`
	ShippingTaxable bool           `json:"shippingTaxable"`
	Type            string         `json:"type"`
	Booking         *BookingDetail `json:"booking,omitempty"`
}

// CartSnapshot is the full client-submitted cart state, including the
// client's own idea of shipping, tax and grand total. The validator
// recomputes all of those and reports every divergence.
type CartSnapshot struct {
	Items          []CartItem `json:"items"`
	DeliveryMethod string     `json:"deliveryMethod"`
	Province       string     `json:"province"`
	ShippingTotal  float64    `json:"shippingTotal"`
	TaxTotal       float64    `json:"taxTotal"`
	Total          float64    `json:"total"`
}
