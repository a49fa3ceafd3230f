package woo

import (
	"context"
	"fmt"
	"strconv"

	"farmstand/internal/model"
)

type wooAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type wooOrderLineItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	Total     string `json:"total"`
}

type wooShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

type wooMetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type wooOrderRequest struct {
	Status             string             `json:"status"`
	PaymentMethod      string             `json:"payment_method"`
	PaymentMethodTitle string             `json:"payment_method_title"`
	TransactionID      string             `json:"transaction_id"`
	SetPaid            bool               `json:"set_paid"`
	Billing            wooAddress         `json:"billing"`
	Shipping           wooAddress         `json:"shipping"`
	LineItems          []wooOrderLineItem `json:"line_items"`
	ShippingLines      []wooShippingLine  `json:"shipping_lines,omitempty"`
	MetaData           []wooMetaData      `json:"meta_data,omitempty"`
}

type wooOrderResponse struct {
	ID int64 `json:"id"`
}

// CreateOrder mirrors a locally-owned paid order into WooCommerce and
// returns the remote order id. The local order stays the source of truth;
// callers treat a mirroring failure as an operational follow-up, not a
// reason to fail the reconciliation.
func (c *Client) CreateOrder(ctx context.Context, order *model.Order, items []model.OrderItem, customer *model.Customer) (int64, error) {
	address := wooAddress{
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Address1:  customer.Address1,
		Address2:  customer.Address2,
		City:      customer.City,
		State:     customer.Province,
		Postcode:  customer.PostalCode,
		Country:   "CA",
		Email:     customer.Email,
		Phone:     customer.Phone,
	}

	lineItems := make([]wooOrderLineItem, len(items))
	for i, item := range items {
		subtotal := item.Price * float64(item.Quantity)
		lineItems[i] = wooOrderLineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Subtotal:  money(subtotal),
			Total:     money(item.Total),
		}
	}

	req := wooOrderRequest{
		Status:             "processing",
		PaymentMethod:      "stripe",
		PaymentMethodTitle: "Credit Card (Stripe)",
		TransactionID:      order.PaymentIntentID,
		SetPaid:            true,
		Billing:            address,
		Shipping:           address,
		LineItems:          lineItems,
		MetaData: []wooMetaData{
			{Key: "farmstand_order_number", Value: order.OrderNumber},
			{Key: "farmstand_payment_intent", Value: order.PaymentIntentID},
			{Key: "farmstand_delivery_method", Value: order.DeliveryMethod},
		},
	}

	if order.DeliveryMethod == model.DeliveryMethodShipping && order.Shipping > 0 {
		req.ShippingLines = []wooShippingLine{
			{MethodID: "flat_rate", MethodTitle: "Flat rate", Total: money(order.Shipping)},
		}
	}

	var resp wooOrderResponse
	if err := c.post(ctx, "orders", req, &resp); err != nil {
		return 0, fmt.Errorf("failed to mirror order %s: %w", order.OrderNumber, err)
	}

	c.logger.Info().
		Str("order_number", order.OrderNumber).
		Int64("woo_order_id", resp.ID).
		Msg("order mirrored to woocommerce")

	return resp.ID, nil
}

// money formats an amount the way the WooCommerce API expects it.
func money(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
