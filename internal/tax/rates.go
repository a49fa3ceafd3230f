package tax

// JurisdictionRates describes the sales-tax composition of one Canadian
// province or territory. Combined jurisdictions (HST) display a single
// label covering both components; the rest display federal and
// provincial lines separately. Territories have no provincial component.
type JurisdictionRates struct {
	FederalRate     float64 `json:"federalRate"`
	FederalLabel    string  `json:"federalLabel"`
	ProvincialRate  float64 `json:"provincialRate"`
	ProvincialLabel string  `json:"provincialLabel,omitempty"`
	Combined        bool    `json:"combined"`
}

// RateTable maps province codes to their jurisdiction rates.
type RateTable map[string]JurisdictionRates

// DefaultProvince is the fallback jurisdiction for unrecognised codes.
const DefaultProvince = "ON"

// DefaultRateTable returns the built-in jurisdiction table, used when the
// CMS-managed rates file cannot be loaded. Rates as of 2025.
func DefaultRateTable() RateTable {
	return RateTable{
		// HST provinces: one combined label.
		"ON": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.08, Combined: true},
		"NB": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.10, Combined: true},
		"NL": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.10, Combined: true},
		"NS": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.09, Combined: true},
		"PE": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.10, Combined: true},

		// GST + separate provincial tax.
		"QC": {FederalRate: 0.05, FederalLabel: "GST", ProvincialRate: 0.09975, ProvincialLabel: "QST"},
		"BC": {FederalRate: 0.05, FederalLabel: "GST", ProvincialRate: 0.07, ProvincialLabel: "PST"},
		"SK": {FederalRate: 0.05, FederalLabel: "GST", ProvincialRate: 0.06, ProvincialLabel: "PST"},
		"MB": {FederalRate: 0.05, FederalLabel: "GST", ProvincialRate: 0.07, ProvincialLabel: "RST"},

		// GST only.
		"AB": {FederalRate: 0.05, FederalLabel: "GST"},
		"NT": {FederalRate: 0.05, FederalLabel: "GST"},
		"NU": {FederalRate: 0.05, FederalLabel: "GST"},
		"YT": {FederalRate: 0.05, FederalLabel: "GST"},
	}
}

// Supported reports whether the table has rates for the province code.
func (t RateTable) Supported(province string) bool {
	_, ok := t[province]
	return ok
}
