package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// rates mirrors the RateTable shape in internal/tax without importing it,
// so the script can run standalone with `go run`.
type rates struct {
	FederalRate     float64 `json:"federalRate"`
	FederalLabel    string  `json:"federalLabel"`
	ProvincialRate  float64 `json:"provincialRate"`
	ProvincialLabel string  `json:"provincialLabel"`
	Combined        bool    `json:"combined"`
}

// generate_sample_rates writes a sample Canadian tax rates document to
// data/tax/rates.json for local development.
func main() {
	dataDir := "data/tax"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	table := map[string]rates{
		"ON": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.08, Combined: true},
		"NB": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.10, Combined: true},
		"NL": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.10, Combined: true},
		"NS": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.09, Combined: true},
		"PE": {FederalRate: 0.05, FederalLabel: "HST", ProvincialRate: 0.10, Combined: true},
		"QC": {FederalRate: 0.05, FederalLabel: "GST", ProvincialRate: 0.09975, ProvincialLabel: "QST"},
		"BC": {FederalRate: 0.05, FederalLabel: "GST", ProvincialRate: 0.07, ProvincialLabel: "PST"},
		"SK": {FederalRate: 0.05, FederalLabel: "GST", ProvincialRate: 0.06, ProvincialLabel: "PST"},
		"MB": {FederalRate: 0.05, FederalLabel: "GST", ProvincialRate: 0.07, ProvincialLabel: "RST"},
		"AB": {FederalRate: 0.05, FederalLabel: "GST"},
		"NT": {FederalRate: 0.05, FederalLabel: "GST"},
		"NU": {FederalRate: 0.05, FederalLabel: "GST"},
		"YT": {FederalRate: 0.05, FederalLabel: "GST"},
	}

	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal rates: %v", err)
	}

	path := filepath.Join(dataDir, "rates.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}

	fmt.Printf("Wrote %d jurisdictions to %s\n", len(table), path)
}
