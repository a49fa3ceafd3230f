package tax

import (
	"farmstand/internal/model"

	"github.com/rs/zerolog"
)

// ItemTax is the computed tax amount for one line item.
type ItemTax struct {
	ProductID int64   `json:"productId"`
	Amount    float64 `json:"amount"`
}

// Result is the full tax computation for a cart: per-item amounts, a
// labeled summary by jurisdiction component, and the aggregate total.
type Result struct {
	ItemTaxes []ItemTax       `json:"items"`
	Summary   []model.TaxLine `json:"taxSummary"`
	Total     float64         `json:"totalTax"`
}

// Calculator computes sales taxes from a jurisdiction rate table.
// Deterministic given identical inputs; no hidden state.
type Calculator struct {
	table  RateTable
	logger zerolog.Logger
}

// NewCalculator creates a tax calculator over the given rate table.
func NewCalculator(table RateTable, logger zerolog.Logger) *Calculator {
	return &Calculator{
		table:  table,
		logger: logger.With().Str("component", "tax-calculator").Logger(),
	}
}

// Supported reports whether the province code has a jurisdiction entry.
func (c *Calculator) Supported(province string) bool {
	return c.table.Supported(province)
}

// Calculate computes per-item and aggregate tax for the items in the
// given province. Non-taxable items contribute zero. Shipping is taxed at
// the full jurisdiction rate when it is non-zero and at least one item is
// shipping-taxable.
func (c *Calculator) Calculate(items []model.ValidatedItem, province string, shipping float64) Result {
	rates, ok := c.table[province]
	if !ok {
		rates = c.table[DefaultProvince]
		c.logger.Warn().
			Str("province", province).
			Str("fallback", DefaultProvince).
			Msg("unknown province, using default jurisdiction rates")
	}

	taxableBase := 0.0
	itemTaxes := make([]ItemTax, len(items))
	for i, item := range items {
		amount := 0.0
		if item.TaxStatus == model.TaxStatusTaxable {
			line := item.Price * float64(item.Quantity)
			taxableBase += line
			amount = line * (rates.FederalRate + rates.ProvincialRate)
		}
		itemTaxes[i] = ItemTax{ProductID: item.ProductID, Amount: amount}
	}

	shippingBase := 0.0
	if shipping > 0 {
		for _, item := range items {
			if item.ShippingTaxable {
				shippingBase = shipping
				break
			}
		}
	}

	base := taxableBase + shippingBase

	var summary []model.TaxLine
	if rates.Combined {
		rate := rates.FederalRate + rates.ProvincialRate
		summary = append(summary, model.TaxLine{
			Label:  rates.FederalLabel,
			Rate:   rate,
			Amount: base * rate,
		})
	} else {
		summary = append(summary, model.TaxLine{
			Label:  rates.FederalLabel,
			Rate:   rates.FederalRate,
			Amount: base * rates.FederalRate,
		})
		if rates.ProvincialRate > 0 {
			summary = append(summary, model.TaxLine{
				Label:  rates.ProvincialLabel,
				Rate:   rates.ProvincialRate,
				Amount: base * rates.ProvincialRate,
			})
		}
	}

	total := 0.0
	for _, line := range summary {
		total += line.Amount
	}

	return Result{
		ItemTaxes: itemTaxes,
		Summary:   summary,
		Total:     total,
	}
}
