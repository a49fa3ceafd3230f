package validation

import (
	"context"
	"fmt"
	"math"

	"farmstand/internal/model"
	"farmstand/internal/tax"

	"github.com/rs/zerolog"
)

// moneyTolerance is the absolute tolerance for monetary comparisons,
// absorbing floating point drift. A difference of exactly 0.01 is not a
// discrepancy.
const moneyTolerance = 0.01

// CatalogFetcher retrieves authoritative product records by id.
type CatalogFetcher interface {
	GetProduct(ctx context.Context, id int64) (*model.CatalogProduct, error)
}

// ShippingResolver derives the per-order shipping cost for a cart.
type ShippingResolver interface {
	Cost(ctx context.Context, items []model.ValidatedItem, deliveryMethod, province string) float64
}

// TaxCalculator computes taxes from the jurisdiction rate table.
type TaxCalculator interface {
	Supported(province string) bool
	Calculate(items []model.ValidatedItem, province string, shipping float64) tax.Result
}

// Result is the validator's output: the authoritative snapshot plus every
// discrepancy found. The snapshot is trustworthy only when Valid().
type Result struct {
	Snapshot      *model.ValidatedOrderSnapshot `json:"validatedData,omitempty"`
	Discrepancies []model.Discrepancy           `json:"discrepancies"`
}

// Valid reports whether the client cart matched the authoritative state
// exactly. Validation succeeds iff zero discrepancies were collected.
func (r *Result) Valid() bool {
	return len(r.Discrepancies) == 0
}

// Validator re-derives authoritative pricing, tax, shipping and stock
// facts for a client cart and diffs them against the client's claims.
// A discrepancy never halts the computation early: every stage runs
// against authoritative values so the report is complete in one round
// trip. Only an unreachable dependency aborts with an error.
type Validator struct {
	catalog  CatalogFetcher
	shipping ShippingResolver
	tax      TaxCalculator
	logger   zerolog.Logger
}

// NewValidator creates an order validator.
func NewValidator(catalog CatalogFetcher, shipping ShippingResolver, taxCalc TaxCalculator, logger zerolog.Logger) *Validator {
	return &Validator{
		catalog:  catalog,
		shipping: shipping,
		tax:      taxCalc,
		logger:   logger.With().Str("component", "order-validator").Logger(),
	}
}

// Validate recomputes the cart's true price/tax/shipping/total and
// returns the snapshot together with the full discrepancy list.
func (v *Validator) Validate(ctx context.Context, cart *model.CartSnapshot) (*Result, error) {
	if cart == nil || len(cart.Items) == 0 {
		return nil, fmt.Errorf("cart must contain at least one item")
	}
	for i, item := range cart.Items {
		if item.ProductID <= 0 {
			return nil, fmt.Errorf("item %d: product ID is required", i)
		}
		if item.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
	}

	products, err := v.fetchProducts(ctx, cart.Items)
	if err != nil {
		// The validator cannot reason about a product it cannot see:
		// this is a system error, not a discrepancy.
		return nil, err
	}

	var discrepancies []model.Discrepancy
	items := make([]model.ValidatedItem, len(cart.Items))

	for i, item := range cart.Items {
		product := products[item.ProductID]
		discrepancies = append(discrepancies, compareItem(&item, product)...)

		// Authoritative values for every catalog-comparable field;
		// quantity and booking detail are client-only.
		items[i] = model.ValidatedItem{
			ProductID:       product.ID,
			Name:            product.Name,
			Price:           product.Price,
			Quantity:        item.Quantity,
			TaxStatus:       product.TaxStatus,
			ShippingClass:   product.ShippingClass,
			ShippingTaxable: product.ShippingTaxable,
			Type:            product.Type,
			Total:           product.Price * float64(item.Quantity),
			Booking:         item.Booking,
		}
	}

	deliveryMethod := cart.DeliveryMethod
	if deliveryMethod != model.DeliveryMethodShipping && deliveryMethod != model.DeliveryMethodPickup {
		discrepancies = append(discrepancies, model.Discrepancy{
			Kind:        model.DiscrepancyDeliveryMethod,
			ClientValue: cart.DeliveryMethod,
			ActualValue: model.DeliveryMethodShipping,
		})
		deliveryMethod = model.DeliveryMethodShipping
	}

	province := cart.Province
	if !v.tax.Supported(province) {
		discrepancies = append(discrepancies, model.Discrepancy{
			Kind:        model.DiscrepancyBillingState,
			ClientValue: cart.Province,
			ActualValue: tax.DefaultProvince,
		})
		province = tax.DefaultProvince
	}

	shippingCost := v.shipping.Cost(ctx, items, deliveryMethod, province)
	if !moneyEqual(shippingCost, cart.ShippingTotal) {
		discrepancies = append(discrepancies, model.Discrepancy{
			Kind:        model.DiscrepancyShipping,
			ClientValue: cart.ShippingTotal,
			ActualValue: shippingCost,
		})
	}

	taxes := v.tax.Calculate(items, province, shippingCost)
	for i := range items {
		items[i].Tax = taxes.ItemTaxes[i].Amount
	}
	if !moneyEqual(taxes.Total, cart.TaxTotal) {
		discrepancies = append(discrepancies, model.Discrepancy{
			Kind:        model.DiscrepancyTax,
			ClientValue: cart.TaxTotal,
			ActualValue: taxes.Total,
		})
	}

	subtotal := 0.0
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	total := subtotal + taxes.Total + shippingCost
	if !moneyEqual(total, cart.Total) {
		discrepancies = append(discrepancies, model.Discrepancy{
			Kind:        model.DiscrepancyTotal,
			ClientValue: cart.Total,
			ActualValue: total,
		})
	}

	if len(discrepancies) > 0 {
		v.logger.Info().
			Int("count", len(discrepancies)).
			Str("province", province).
			Msg("cart validation found discrepancies")
	}

	return &Result{
		Snapshot: &model.ValidatedOrderSnapshot{
			Items:          items,
			Subtotal:       subtotal,
			TaxLines:       taxes.Summary,
			TaxTotal:       taxes.Total,
			ShippingTotal:  shippingCost,
			Total:          total,
			Province:       province,
			DeliveryMethod: deliveryMethod,
		},
		Discrepancies: discrepancies,
	}, nil
}

// fetchProducts retrieves the catalog record for every distinct product
// id concurrently. Any single fetch failure aborts validation.
func (v *Validator) fetchProducts(ctx context.Context, items []model.CartItem) (map[int64]*model.CatalogProduct, error) {
	distinct := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			distinct = append(distinct, item.ProductID)
		}
	}

	type fetchResult struct {
		id      int64
		product *model.CatalogProduct
		err     error
	}

	resultChan := make(chan fetchResult, len(distinct))
	for _, id := range distinct {
		go func(id int64) {
			product, err := v.catalog.GetProduct(ctx, id)
			resultChan <- fetchResult{id: id, product: product, err: err}
		}(id)
	}

	products := make(map[int64]*model.CatalogProduct, len(distinct))
	var firstErr error
	for range distinct {
		result := <-resultChan
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		products[result.id] = result.product
	}

	if firstErr != nil {
		v.logger.Error().Err(firstErr).Msg("catalog fetch failed during validation")
		return nil, fmt.Errorf("failed to fetch catalog products: %w", firstErr)
	}

	return products, nil
}

// compareItem diffs one client item against its catalog record.
func compareItem(item *model.CartItem, product *model.CatalogProduct) []model.Discrepancy {
	var out []model.Discrepancy

	add := func(kind string, client, actual interface{}) {
		out = append(out, model.Discrepancy{
			Kind:        kind,
			ProductID:   product.ID,
			ClientValue: client,
			ActualValue: actual,
		})
	}

	if !moneyEqual(item.Price, product.Price) {
		add(model.DiscrepancyPrice, item.Price, product.Price)
	}
	if item.TaxStatus != product.TaxStatus {
		add(model.DiscrepancyTaxStatus, item.TaxStatus, product.TaxStatus)
	}
	if item.ShippingClass != product.ShippingClass {
		add(model.DiscrepancyShippingClass, item.ShippingClass, product.ShippingClass)
	}
	if item.ShippingTaxable != product.ShippingTaxable {
		add(model.DiscrepancyShippingTaxable, item.ShippingTaxable, product.ShippingTaxable)
	}
	if item.Type != product.Type {
		add(model.DiscrepancyProductType, item.Type, product.Type)
	}

	if product.ManageStock {
		switch {
		case product.StockQuantity <= 0:
			add(model.DiscrepancyOutOfStock, item.Quantity, 0)
		case product.StockQuantity < item.Quantity:
			add(model.DiscrepancyInsufficientStock, item.Quantity, product.StockQuantity)
		}
	} else if product.StockStatus != model.StockStatusInStock {
		add(model.DiscrepancyStockStatus, model.StockStatusInStock, product.StockStatus)
	}

	return out
}

// moneyEqual compares two monetary amounts with the shared absolute
// tolerance. The epsilon keeps an exact 0.01 difference inside the
// tolerance despite binary float representation.
func moneyEqual(a, b float64) bool {
	return math.Abs(a-b) <= moneyTolerance+1e-9
}
