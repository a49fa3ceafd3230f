package woo

import (
	"context"
	"fmt"
	"strconv"

	"farmstand/internal/model"
)

// wooProduct mirrors the subset of the WooCommerce product payload the
// validator cares about. Prices come over the wire as strings.
type wooProduct struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	TaxStatus       string `json:"tax_status"`
	ShippingClass   string `json:"shipping_class"`
	ShippingTaxable bool   `json:"shipping_taxable"`
	StockStatus     string `json:"stock_status"`
	ManageStock     bool   `json:"manage_stock"`
	StockQuantity   *int   `json:"stock_quantity"`
	Type            string `json:"type"`
}

// GetProduct fetches the authoritative product record by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (*model.CatalogProduct, error) {
	var p wooProduct
	if err := c.get(ctx, fmt.Sprintf("products/%d", id), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}

	price := 0.0
	if p.Price != "" {
		parsed, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("product %d has unparseable price %q: %w", id, p.Price, err)
		}
		price = parsed
	}

	quantity := 0
	if p.StockQuantity != nil {
		quantity = *p.StockQuantity
	}

	return &model.CatalogProduct{
		ID:              p.ID,
		Name:            p.Name,
		Price:           price,
		TaxStatus:       p.TaxStatus,
		ShippingClass:   p.ShippingClass,
		ShippingTaxable: p.ShippingTaxable,
		StockStatus:     p.StockStatus,
		ManageStock:     p.ManageStock,
		StockQuantity:   quantity,
		Type:            p.Type,
	}, nil
}
