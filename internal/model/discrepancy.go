package model

// Discrepancy kinds. Item-scoped kinds carry a product reference; the
// aggregate kinds (shipping, tax, total, delivery_method, billing_state)
// do not.
const (
	DiscrepancyPrice             = "price"
	DiscrepancyTaxStatus         = "tax_status"
	DiscrepancyShippingClass     = "shipping_class"
	DiscrepancyShippingTaxable   = "shipping_taxable"
	DiscrepancyStockStatus       = "stock_status"
	DiscrepancyOutOfStock        = "out_of_stock"
	DiscrepancyInsufficientStock = "insufficient_stock"
	DiscrepancyProductType       = "product_type"
	DiscrepancyShipping          = "shipping"
	DiscrepancyTax               = "tax"
	DiscrepancyTotal             = "total"
	DiscrepancyDeliveryMethod    = "delivery_method"
	DiscrepancyBillingState      = "billing_state"
)

// Discrepancy is one detected mismatch between client-submitted and
// authoritative data. Discrepancies are informational: they are surfaced
// verbatim to the caller and never silently corrected.
type Discrepancy struct {
	Kind        string      `json:"kind"`
	ProductID   int64       `json:"productId,omitempty"`
	ClientValue interface{} `json:"clientValue"`
	ActualValue interface{} `json:"actualValue"`
}
