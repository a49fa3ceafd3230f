package model

// Product types recognised by the storefront.
const (
	ProductTypeSimple  = "simple"
	ProductTypeBooking = "booking"
)

// Stock statuses reported by the catalog.
const (
	StockStatusInStock    = "instock"
	StockStatusOutOfStock = "outofstock"
)

// TaxStatusTaxable marks an item whose price attracts sales tax.
const TaxStatusTaxable = "taxable"

// CatalogProduct is the authoritative product record fetched from the
// commerce backend. It is the source of truth for everything the client
// claims about a product.
type CatalogProduct struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	TaxStatus       string  `json:"taxStatus"`
	ShippingClass   string  `json:"shippingClass"`
	ShippingTaxable bool    `json:"shippingTaxable"`
	StockStatus     string  `json:"stockStatus"`
	ManageStock     bool    `json:"manageStock"`
	StockQuantity   int     `json:"stockQuantity"`
	Type            string  `json:"type"`
}
